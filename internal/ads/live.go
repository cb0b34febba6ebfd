package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/pmalloy/campaignsync/internal/config"
	"github.com/pmalloy/campaignsync/internal/models"
	"github.com/pmalloy/campaignsync/internal/observability"
)

const (
	defaultBaseURL = "https://googleads.googleapis.com/v17"
	tokenURL       = "https://oauth2.googleapis.com/token"

	// micros per standard currency unit
	microsPerUnit = 1_000_000

	// fixed default bid for the ad group created at publish time
	defaultCPCBidMicros = 1_000_000

	defaultAdGroupName = "Default Ad Group"
	defaultFinalURL    = "http://www.example.com"
)

// Filler creative text used to satisfy the platform's minimum asset counts
// when the campaign supplies fewer headlines/descriptions.
var (
	fillerHeadlines    = []string{"New Campaign Offer", "Shop Now", "Best Deals"}
	fillerDescriptions = []string{"Check out our latest offers.", "Limited time only."}
)

// LiveClient talks to the Google Ads REST API.
type LiveClient struct {
	baseURL         string
	customerID      string
	loginCustomerID string
	developerToken  string
	httpClient      *http.Client
	logger          *zap.Logger
	metrics         observability.MetricsRegistry
	now             func() time.Time
}

var _ Client = (*LiveClient)(nil)

// NewLiveClient builds a live gateway using an OAuth2 refresh-token
// transport derived from the configured credentials.
func NewLiveClient(creds config.GoogleAds, logger *zap.Logger, metrics observability.MetricsRegistry) *LiveClient {
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	ts := conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: creds.RefreshToken})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 30 * time.Second

	return &LiveClient{
		baseURL:         defaultBaseURL,
		customerID:      creds.CustomerID,
		loginCustomerID: creds.LoginCustomerID,
		developerToken:  creds.DeveloperToken,
		httpClient:      httpClient,
		logger:          logger,
		metrics:         metrics,
		now:             time.Now,
	}
}

// SetBaseURL overrides the API base URL (for testing).
func (c *LiveClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetHTTPClient overrides the HTTP client (for testing).
func (c *LiveClient) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// PublishCampaign creates the remote object graph for a local campaign:
// budget, then campaign, then one ad group, then one responsive search ad.
// Each step's resource name feeds the next, so the order is fixed. On a
// mid-sequence failure the already-created resources are left in place and
// logged; there is no compensating delete.
func (c *LiveClient) PublishCampaign(ctx context.Context, campaign *models.Campaign) (string, error) {
	budgetRes, err := c.createBudget(ctx, campaign.DailyBudget)
	if err != nil {
		return "", err
	}

	campaignRes, err := c.createCampaign(ctx, campaign, budgetRes)
	if err != nil {
		c.logger.Error("publish aborted after budget creation, orphaned resource remains",
			zap.String("campaign_id", campaign.ID),
			zap.String("budget_resource", budgetRes))
		return "", err
	}
	// Resource name format: customers/{customer_id}/campaigns/{campaign_id}
	googleCampaignID := path.Base(campaignRes)

	adGroupRes, err := c.createAdGroup(ctx, campaign, googleCampaignID)
	if err != nil {
		c.logger.Error("publish aborted after campaign creation, orphaned resources remain",
			zap.String("campaign_id", campaign.ID),
			zap.String("campaign_resource", campaignRes))
		return "", err
	}

	if err := c.createAd(ctx, campaign, adGroupRes); err != nil {
		c.logger.Error("publish aborted after ad group creation, orphaned resources remain",
			zap.String("campaign_id", campaign.ID),
			zap.String("ad_group_resource", adGroupRes))
		return "", err
	}

	c.logger.Info("campaign published to Google Ads",
		zap.String("campaign_id", campaign.ID),
		zap.String("google_campaign_id", googleCampaignID))
	return googleCampaignID, nil
}

// PauseCampaign sets only the remote campaign's status to PAUSED, using a
// field mask so unrelated fields are untouched.
func (c *LiveClient) PauseCampaign(ctx context.Context, googleCampaignID string) error {
	op := map[string]interface{}{
		"update": map[string]interface{}{
			"resourceName": fmt.Sprintf("customers/%s/campaigns/%s", c.customerID, googleCampaignID),
			"status":       "PAUSED",
		},
		"updateMask": "status",
	}
	if _, err := c.mutate(ctx, "pause_campaign", "campaigns:mutate", op); err != nil {
		return err
	}
	c.logger.Info("campaign paused on Google Ads", zap.String("google_campaign_id", googleCampaignID))
	return nil
}

func (c *LiveClient) createBudget(ctx context.Context, dailyBudget int64) (string, error) {
	op := map[string]interface{}{
		"create": map[string]interface{}{
			"name":           "Budget " + c.now().Format("20060102150405"),
			"amountMicros":   strconv.FormatInt(dailyBudget*microsPerUnit, 10),
			"deliveryMethod": "STANDARD",
		},
	}
	return c.mutate(ctx, "create_budget", "campaignBudgets:mutate", op)
}

func (c *LiveClient) createCampaign(ctx context.Context, campaign *models.Campaign, budgetRes string) (string, error) {
	// Remote campaigns start PAUSED; the advertiser enables them in the
	// Google Ads UI.
	op := map[string]interface{}{
		"create": map[string]interface{}{
			"name":                    campaign.Name + " - " + c.now().Format("2006-01-02 15:04:05"),
			"status":                  "PAUSED",
			"advertisingChannelType":  "SEARCH",
			"campaignBudget":          budgetRes,
			"startDate":               campaign.StartDate.Compact(),
			"endDate":                 campaign.EndDate.Compact(),
			"networkSettings": map[string]interface{}{
				"targetGoogleSearch":   true,
				"targetContentNetwork": true,
			},
		},
	}
	return c.mutate(ctx, "create_campaign", "campaigns:mutate", op)
}

func (c *LiveClient) createAdGroup(ctx context.Context, campaign *models.Campaign, googleCampaignID string) (string, error) {
	name := defaultAdGroupName
	if campaign.AdGroupName != nil && *campaign.AdGroupName != "" {
		name = *campaign.AdGroupName
	}
	op := map[string]interface{}{
		"create": map[string]interface{}{
			"name":         name,
			"campaign":     fmt.Sprintf("customers/%s/campaigns/%s", c.customerID, googleCampaignID),
			"status":       "ENABLED",
			"type":         "SEARCH_STANDARD",
			"cpcBidMicros": strconv.Itoa(defaultCPCBidMicros),
		},
	}
	return c.mutate(ctx, "create_ad_group", "adGroups:mutate", op)
}

func (c *LiveClient) createAd(ctx context.Context, campaign *models.Campaign, adGroupRes string) error {
	headlines := fillerHeadlines
	if campaign.AdHeadline != nil && *campaign.AdHeadline != "" {
		headlines = append([]string{*campaign.AdHeadline}, fillerHeadlines[1:]...)
	}
	descriptions := fillerDescriptions
	if campaign.AdDescription != nil && *campaign.AdDescription != "" {
		descriptions = append([]string{*campaign.AdDescription}, fillerDescriptions[1:]...)
	}
	finalURL := defaultFinalURL
	if campaign.AssetURL != nil && *campaign.AssetURL != "" {
		finalURL = *campaign.AssetURL
	}

	op := map[string]interface{}{
		"create": map[string]interface{}{
			"adGroup": adGroupRes,
			"status":  "PAUSED",
			"ad": map[string]interface{}{
				"responsiveSearchAd": map[string]interface{}{
					"headlines":    textAssets(headlines),
					"descriptions": textAssets(descriptions),
				},
				"finalUrls": []string{finalURL},
			},
		},
	}
	_, err := c.mutate(ctx, "create_ad", "adGroupAds:mutate", op)
	return err
}

func textAssets(texts []string) []map[string]string {
	assets := make([]map[string]string, 0, len(texts))
	for _, t := range texts {
		assets = append(assets, map[string]string{"text": t})
	}
	return assets
}

type mutateResponse struct {
	Results []struct {
		ResourceName string `json:"resourceName"`
	} `json:"results"`
}

// mutate posts a single-operation mutate request and returns the resulting
// resource name.
func (c *LiveClient) mutate(ctx context.Context, operation, endpoint string, op map[string]interface{}) (string, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordGatewayLatency(operation, time.Since(start))
		c.metrics.IncrementGatewayRequests(operation, outcome)
	}()

	body, err := json.Marshal(map[string]interface{}{
		"operations": []map[string]interface{}{op},
	})
	if err != nil {
		outcome = "failure"
		return "", fmt.Errorf("marshal %s request: %w", operation, err)
	}

	url := fmt.Sprintf("%s/customers/%s/%s", c.baseURL, c.customerID, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		outcome = "failure"
		return "", fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.developerToken)
	req.Header.Set("login-customer-id", c.loginCustomerID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "failure"
		return "", fmt.Errorf("%s request: %w", operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "failure"
		return "", fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		outcome = "failure"
		return "", parseAPIError(resp.StatusCode, respBody)
	}

	var out mutateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		outcome = "failure"
		return "", fmt.Errorf("decode %s response: %w", operation, err)
	}
	if len(out.Results) == 0 {
		outcome = "failure"
		return "", fmt.Errorf("%s: empty mutate result", operation)
	}
	return out.Results[0].ResourceName, nil
}

// googleAdsError mirrors the REST error envelope, including the
// GoogleAdsFailure detail with per-field locations.
type googleAdsError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Errors []struct {
				Message  string `json:"message"`
				Location struct {
					FieldPathElements []struct {
						FieldName string `json:"fieldName"`
					} `json:"fieldPathElements"`
				} `json:"location"`
			} `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

func parseAPIError(statusCode int, body []byte) *APIError {
	var ge googleAdsError
	if err := json.Unmarshal(body, &ge); err != nil || ge.Error.Message == "" {
		return &APIError{
			Code:    http.StatusText(statusCode),
			Message: string(body),
		}
	}

	apiErr := &APIError{
		Code:    ge.Error.Status,
		Message: ge.Error.Message,
	}
	if apiErr.Code == "" {
		apiErr.Code = http.StatusText(statusCode)
	}
	for _, detail := range ge.Error.Details {
		for _, e := range detail.Errors {
			fe := FieldError{Message: e.Message}
			if len(e.Location.FieldPathElements) > 0 {
				fe.Field = e.Location.FieldPathElements[len(e.Location.FieldPathElements)-1].FieldName
			}
			apiErr.Fields = append(apiErr.Fields, fe)
		}
	}
	return apiErr
}
