package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/ads"
	"github.com/pmalloy/campaignsync/internal/config"
	"github.com/pmalloy/campaignsync/internal/db"
	"github.com/pmalloy/campaignsync/internal/models"
	"github.com/pmalloy/campaignsync/internal/observability"
)

type ListCampaignsInput struct{}

type ListCampaignsOutput struct {
	Campaigns []models.Campaign `json:"campaigns"`
}

type GetCampaignInput struct {
	ID string `json:"id"`
}

type GetCampaignOutput struct {
	Campaign *models.Campaign `json:"campaign"`
}

type CreateCampaignInput struct {
	Name          string   `json:"name"`
	Objective     string   `json:"objective"`
	DailyBudget   int64    `json:"daily_budget"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	TargetCPA     *float64 `json:"target_cpa,omitempty"`
	AdGroupName   *string  `json:"ad_group_name,omitempty"`
	AdHeadline    *string  `json:"ad_headline,omitempty"`
	AdDescription *string  `json:"ad_description,omitempty"`
	AssetURL      *string  `json:"asset_url,omitempty"`
}

type CreateCampaignOutput struct {
	Campaign *models.Campaign `json:"campaign"`
}

type PublishCampaignInput struct {
	ID string `json:"id"`
}

type PublishCampaignOutput struct {
	GoogleCampaignID string `json:"google_campaign_id"`
	Status           string `json:"status"`
	Message          string `json:"message"`
}

// CampaignServer holds dependencies for the campaign tools.
type CampaignServer struct {
	store   models.Store
	gateway ads.Client
	logger  *zap.Logger
}

// ListCampaigns returns every stored campaign, newest first.
func (s *CampaignServer) ListCampaigns(ctx context.Context, req *mcp.CallToolRequest, input ListCampaignsInput) (*mcp.CallToolResult, ListCampaignsOutput, error) {
	campaigns, err := s.store.ListCampaigns(ctx)
	if err != nil {
		return nil, ListCampaignsOutput{}, fmt.Errorf("list campaigns: %w", err)
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	return nil, ListCampaignsOutput{Campaigns: campaigns}, nil
}

// GetCampaign returns one campaign with its ad groups embedded.
func (s *CampaignServer) GetCampaign(ctx context.Context, req *mcp.CallToolRequest, input GetCampaignInput) (*mcp.CallToolResult, GetCampaignOutput, error) {
	c, err := s.store.GetCampaign(ctx, input.ID)
	if err != nil {
		return nil, GetCampaignOutput{}, fmt.Errorf("get campaign: %w", err)
	}
	groups, err := s.store.ListAdGroups(ctx, input.ID)
	if err != nil {
		return nil, GetCampaignOutput{}, fmt.Errorf("list ad groups: %w", err)
	}
	c.AdGroups = groups
	return nil, GetCampaignOutput{Campaign: c}, nil
}

// CreateCampaign persists a new DRAFT campaign.
func (s *CampaignServer) CreateCampaign(ctx context.Context, req *mcp.CallToolRequest, input CreateCampaignInput) (*mcp.CallToolResult, CreateCampaignOutput, error) {
	startDate, err := models.ParseDate(input.StartDate)
	if err != nil {
		return nil, CreateCampaignOutput{}, fmt.Errorf("invalid start_date, use YYYY-MM-DD: %w", err)
	}
	endDate, err := models.ParseDate(input.EndDate)
	if err != nil {
		return nil, CreateCampaignOutput{}, fmt.Errorf("invalid end_date, use YYYY-MM-DD: %w", err)
	}

	c := &models.Campaign{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Objective:       input.Objective,
		CampaignType:    models.DefaultCampaignType,
		DailyBudget:     input.DailyBudget,
		TargetCPA:       input.TargetCPA,
		BiddingStrategy: models.DefaultBiddingStrategy,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          models.CampaignStatusDraft,
		AdGroupName:     input.AdGroupName,
		AdHeadline:      input.AdHeadline,
		AdDescription:   input.AdDescription,
		AssetURL:        input.AssetURL,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.InsertCampaign(ctx, c); err != nil {
		return nil, CreateCampaignOutput{}, fmt.Errorf("insert campaign: %w", err)
	}
	s.logger.Info("campaign created", zap.String("campaign_id", c.ID), zap.String("name", c.Name))
	return nil, CreateCampaignOutput{Campaign: c}, nil
}

// PublishCampaign pushes a campaign to Google Ads through the gateway.
func (s *CampaignServer) PublishCampaign(ctx context.Context, req *mcp.CallToolRequest, input PublishCampaignInput) (*mcp.CallToolResult, PublishCampaignOutput, error) {
	c, err := s.store.GetCampaign(ctx, input.ID)
	if err != nil {
		return nil, PublishCampaignOutput{}, fmt.Errorf("get campaign: %w", err)
	}

	if c.Published() {
		var googleID string
		if c.GoogleCampaignID != nil {
			googleID = *c.GoogleCampaignID
		}
		return nil, PublishCampaignOutput{
			GoogleCampaignID: googleID,
			Status:           c.Status,
			Message:          "Campaign already published",
		}, nil
	}

	googleID, err := s.gateway.PublishCampaign(ctx, c)
	if err != nil {
		return nil, PublishCampaignOutput{}, fmt.Errorf("publish campaign: %w", err)
	}

	c.GoogleCampaignID = &googleID
	c.Status = models.CampaignStatusPublished
	if err := s.store.UpdateCampaign(ctx, c); err != nil {
		return nil, PublishCampaignOutput{}, fmt.Errorf("persist published campaign: %w", err)
	}
	s.logger.Info("campaign published", zap.String("campaign_id", c.ID), zap.String("google_campaign_id", googleID))

	return nil, PublishCampaignOutput{
		GoogleCampaignID: googleID,
		Status:           c.Status,
		Message:          fmt.Sprintf("Successfully published campaign '%s'", c.Name),
	}, nil
}

func main() {
	// Use stderr to avoid corrupting the stdio MCP transport.
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("campaignsync-mcp").With(zap.String("service", "campaignsync-mcp"))

	appCfg := config.Load()

	pg, err := db.InitPostgres(appCfg.PostgresDSN, appCfg.DBMaxOpenConns, appCfg.DBMaxIdleConns, appCfg.DBConnMaxLifetime, appCfg.DBConnMaxIdleTime)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	logger.Info("Connected to PostgreSQL")

	gateway := ads.New(appCfg.GoogleAds, logger, observability.NewNoOpRegistry())

	campaignServer := &CampaignServer{
		store:   pg,
		gateway: gateway,
		logger:  logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "campaignsync",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_campaigns",
		Description: "List all campaigns, newest first",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, campaignServer.ListCampaigns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_campaign",
		Description: "Fetch one campaign with its ad groups",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Campaign ID",
				},
			},
			"required": []string{"id"},
		},
	}, campaignServer.GetCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_campaign",
		Description: "Create a new campaign in DRAFT status",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Campaign name",
				},
				"objective": map[string]interface{}{
					"type":        "string",
					"description": "Campaign objective",
				},
				"daily_budget": map[string]interface{}{
					"type":        "integer",
					"description": "Daily budget in standard currency units",
				},
				"start_date": map[string]interface{}{
					"type":        "string",
					"description": "Start date, YYYY-MM-DD",
				},
				"end_date": map[string]interface{}{
					"type":        "string",
					"description": "End date, YYYY-MM-DD",
				},
				"target_cpa": map[string]interface{}{
					"type":        "number",
					"description": "Target cost per acquisition (optional)",
				},
				"ad_group_name": map[string]interface{}{
					"type":        "string",
					"description": "Default ad group name used at publish time (optional)",
				},
				"ad_headline": map[string]interface{}{
					"type":        "string",
					"description": "Headline for the default responsive search ad (optional)",
				},
				"ad_description": map[string]interface{}{
					"type":        "string",
					"description": "Description for the default responsive search ad (optional)",
				},
				"asset_url": map[string]interface{}{
					"type":        "string",
					"description": "Final URL for the default ad (optional)",
				},
			},
			"required": []string{"name", "objective", "daily_budget", "start_date", "end_date"},
		},
	}, campaignServer.CreateCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish_campaign",
		Description: "Publish a campaign to Google Ads (no-op if already published)",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Campaign ID",
				},
			},
			"required": []string{"id"},
		},
	}, campaignServer.PublishCampaign)

	logger.Info("MCP Server running via stdio")

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
