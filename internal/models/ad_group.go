package models

import "time"

// Ad group statuses. ENABLED and PAUSED toggle freely through the API.
// REMOVED exists in the status domain but no transition currently sets it;
// deletion is a hard delete.
const (
	AdGroupStatusEnabled = "ENABLED"
	AdGroupStatusPaused  = "PAUSED"
	AdGroupStatusRemoved = "REMOVED"
)

// AdGroup is a targeting/bidding/creative unit nested under a Campaign.
// Up to three headlines and two descriptions feed the responsive search ad
// created at publish time. Targeting and bid fields are optional
// pass-throughs with no defaults.
type AdGroup struct {
	ID              string    `json:"id"`
	CampaignID      string    `json:"campaign_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	TargetAudience  *string   `json:"target_audience"`
	Keywords        *string   `json:"keywords"`
	CPCBid          *float64  `json:"cpc_bid"`
	CPMBid          *float64  `json:"cpm_bid"`
	Headline1       *string   `json:"headline1"`
	Headline2       *string   `json:"headline2"`
	Headline3       *string   `json:"headline3"`
	Description1    *string   `json:"description1"`
	Description2    *string   `json:"description2"`
	FinalURL        *string   `json:"final_url"`
	DisplayURL      *string   `json:"display_url"`
	GoogleAdGroupID *string   `json:"google_ad_group_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
