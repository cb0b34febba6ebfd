package models

import "time"

// Campaign statuses. A campaign starts in DRAFT, moves to PUBLISHED on its
// first successful push to Google Ads and to PAUSED afterwards. There is no
// transition back to DRAFT.
const (
	CampaignStatusDraft     = "DRAFT"
	CampaignStatusPublished = "PUBLISHED"
	CampaignStatusPaused    = "PAUSED"
)

// Defaults applied when the create request omits the optional fields.
const (
	DefaultCampaignType    = "Demand Gen"
	DefaultBiddingStrategy = "MAXIMIZE_CONVERSIONS"
)

// Campaign is the local record of an advertising campaign. It is the draft
// state edited through the API; GoogleCampaignID is set exactly once, at the
// first successful publish, and never cleared. The ad_group_name/ad_headline/
// ad_description/asset_url fields are the denormalized default creative used
// when the campaign is pushed to Google Ads.
type Campaign struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Objective        string    `json:"objective"`
	CampaignType     string    `json:"campaign_type"`
	DailyBudget      int64     `json:"daily_budget"`
	TargetCPA        *float64  `json:"target_cpa"`
	BiddingStrategy  string    `json:"bidding_strategy"`
	StartDate        Date      `json:"start_date"`
	EndDate          Date      `json:"end_date"`
	Status           string    `json:"status"`
	GoogleCampaignID *string   `json:"google_campaign_id"`
	AdGroupName      *string   `json:"ad_group_name"`
	AdHeadline       *string   `json:"ad_headline"`
	AdDescription    *string   `json:"ad_description"`
	AssetURL         *string   `json:"asset_url"`
	CreatedAt        time.Time `json:"created_at"`

	// AdGroups is populated on the campaign detail view only.
	AdGroups []AdGroup `json:"ad_groups,omitempty"`
	// AdGroupsCount is populated on the campaign list view only.
	AdGroupsCount *int `json:"ad_groups_count,omitempty"`
}

// Published reports whether the campaign has been pushed to Google Ads.
func (c *Campaign) Published() bool {
	return c.Status == CampaignStatusPublished
}
