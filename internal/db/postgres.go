package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pmalloy/campaignsync/internal/models"
)

// Postgres wraps a postgres DB connection and implements models.Store.
type Postgres struct {
	DB *sql.DB
}

var _ models.Store = (*Postgres)(nil)

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS campaigns (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    objective TEXT NOT NULL,
    campaign_type TEXT NOT NULL DEFAULT 'Demand Gen',
    daily_budget BIGINT NOT NULL,
    target_cpa DOUBLE PRECISION,
    bidding_strategy TEXT NOT NULL DEFAULT 'MAXIMIZE_CONVERSIONS',
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    status TEXT NOT NULL DEFAULT 'DRAFT',
    google_campaign_id TEXT,
    ad_group_name TEXT,
    ad_headline TEXT,
    ad_description TEXT,
    asset_url TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ad_groups (
    id UUID PRIMARY KEY,
    campaign_id UUID NOT NULL REFERENCES campaigns(id),
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'ENABLED',
    target_audience TEXT,
    keywords TEXT,
    cpc_bid DOUBLE PRECISION,
    cpm_bid DOUBLE PRECISION,
    headline1 TEXT,
    headline2 TEXT,
    headline3 TEXT,
    description1 TEXT,
    description2 TEXT,
    final_url TEXT,
    display_url TEXT,
    google_ad_group_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ad_groups_campaign_id ON ad_groups (campaign_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns (created_at DESC);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const campaignColumns = `id, name, objective, campaign_type, daily_budget, target_cpa, bidding_strategy, start_date, end_date, status, google_campaign_id, ad_group_name, ad_headline, ad_description, asset_url, created_at`

// InsertCampaign inserts a new campaign record.
func (p *Postgres) InsertCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		c.ID, c.Name, c.Objective, c.CampaignType, c.DailyBudget, c.TargetCPA, c.BiddingStrategy,
		c.StartDate, c.EndDate, c.Status, c.GoogleCampaignID,
		c.AdGroupName, c.AdHeadline, c.AdDescription, c.AssetURL, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// ListCampaigns retrieves all campaigns, newest creation first.
func (p *Postgres) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cs []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cs, nil
}

// GetCampaign retrieves a campaign by ID.
func (p *Postgres) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	row := p.DB.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCampaign persists mutable campaign fields (status and external id).
func (p *Postgres) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	res, err := p.DB.ExecContext(ctx, `UPDATE campaigns SET name=$2, objective=$3, campaign_type=$4, daily_budget=$5, target_cpa=$6, bidding_strategy=$7, start_date=$8, end_date=$9, status=$10, google_campaign_id=$11, ad_group_name=$12, ad_headline=$13, ad_description=$14, asset_url=$15 WHERE id=$1`,
		c.ID, c.Name, c.Objective, c.CampaignType, c.DailyBudget, c.TargetCPA, c.BiddingStrategy,
		c.StartDate, c.EndDate, c.Status, c.GoogleCampaignID,
		c.AdGroupName, c.AdHeadline, c.AdDescription, c.AssetURL)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return checkAffected(res)
}

// DeleteCampaign removes a campaign and its ad groups in one transaction.
func (p *Postgres) DeleteCampaign(ctx context.Context, id string) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete campaign: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ad_groups WHERE campaign_id = $1`, id); err != nil {
		return fmt.Errorf("delete ad groups: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete campaign: %w", err)
	}
	return nil
}

// CountAdGroups returns the number of ad groups under a campaign.
func (p *Postgres) CountAdGroups(ctx context.Context, campaignID string) (int, error) {
	var n int
	if err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM ad_groups WHERE campaign_id = $1`, campaignID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ad groups: %w", err)
	}
	return n, nil
}

const adGroupColumns = `id, campaign_id, name, status, target_audience, keywords, cpc_bid, cpm_bid, headline1, headline2, headline3, description1, description2, final_url, display_url, google_ad_group_id, created_at, updated_at`

// ListAdGroups retrieves a campaign's ad groups, newest creation first.
func (p *Postgres) ListAdGroups(ctx context.Context, campaignID string) ([]models.AdGroup, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT `+adGroupColumns+` FROM ad_groups WHERE campaign_id = $1 ORDER BY created_at DESC`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query ad groups: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var gs []models.AdGroup
	for rows.Next() {
		g, err := scanAdGroup(rows)
		if err != nil {
			return nil, err
		}
		gs = append(gs, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return gs, nil
}

// InsertAdGroup inserts a new ad group record. The campaign foreign key
// enforces that the owning campaign exists.
func (p *Postgres) InsertAdGroup(ctx context.Context, g *models.AdGroup) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO ad_groups (`+adGroupColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		g.ID, g.CampaignID, g.Name, g.Status, g.TargetAudience, g.Keywords, g.CPCBid, g.CPMBid,
		g.Headline1, g.Headline2, g.Headline3, g.Description1, g.Description2,
		g.FinalURL, g.DisplayURL, g.GoogleAdGroupID, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		// A foreign key violation means the owning campaign is gone.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return models.ErrNotFound
		}
		return fmt.Errorf("insert ad group: %w", err)
	}
	return nil
}

// GetAdGroup retrieves an ad group by ID.
func (p *Postgres) GetAdGroup(ctx context.Context, id string) (*models.AdGroup, error) {
	row := p.DB.QueryRowContext(ctx, `SELECT `+adGroupColumns+` FROM ad_groups WHERE id = $1`, id)
	g, err := scanAdGroup(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateAdGroup persists an ad group and refreshes updated_at.
func (p *Postgres) UpdateAdGroup(ctx context.Context, g *models.AdGroup) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := p.DB.ExecContext(ctx, `UPDATE ad_groups SET name=$2, status=$3, target_audience=$4, keywords=$5, cpc_bid=$6, cpm_bid=$7, headline1=$8, headline2=$9, headline3=$10, description1=$11, description2=$12, final_url=$13, display_url=$14, google_ad_group_id=$15, updated_at=$16 WHERE id=$1`,
		g.ID, g.Name, g.Status, g.TargetAudience, g.Keywords, g.CPCBid, g.CPMBid,
		g.Headline1, g.Headline2, g.Headline3, g.Description1, g.Description2,
		g.FinalURL, g.DisplayURL, g.GoogleAdGroupID, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update ad group: %w", err)
	}
	return checkAffected(res)
}

// DeleteAdGroup removes a single ad group.
func (p *Postgres) DeleteAdGroup(ctx context.Context, id string) error {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM ad_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ad group: %w", err)
	}
	return checkAffected(res)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row scanner) (*models.Campaign, error) {
	var c models.Campaign
	var targetCPA sql.NullFloat64
	var googleID, adGroupName, adHeadline, adDescription, assetURL sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Objective, &c.CampaignType, &c.DailyBudget, &targetCPA, &c.BiddingStrategy,
		&c.StartDate, &c.EndDate, &c.Status, &googleID,
		&adGroupName, &adHeadline, &adDescription, &assetURL, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	if targetCPA.Valid {
		c.TargetCPA = &targetCPA.Float64
	}
	c.GoogleCampaignID = strPtr(googleID)
	c.AdGroupName = strPtr(adGroupName)
	c.AdHeadline = strPtr(adHeadline)
	c.AdDescription = strPtr(adDescription)
	c.AssetURL = strPtr(assetURL)
	return &c, nil
}

func scanAdGroup(row scanner) (*models.AdGroup, error) {
	var g models.AdGroup
	var cpcBid, cpmBid sql.NullFloat64
	var audience, keywords, h1, h2, h3, d1, d2, finalURL, displayURL, googleID sql.NullString
	if err := row.Scan(&g.ID, &g.CampaignID, &g.Name, &g.Status, &audience, &keywords, &cpcBid, &cpmBid,
		&h1, &h2, &h3, &d1, &d2, &finalURL, &displayURL, &googleID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan ad group: %w", err)
	}
	if cpcBid.Valid {
		g.CPCBid = &cpcBid.Float64
	}
	if cpmBid.Valid {
		g.CPMBid = &cpmBid.Float64
	}
	g.TargetAudience = strPtr(audience)
	g.Keywords = strPtr(keywords)
	g.Headline1 = strPtr(h1)
	g.Headline2 = strPtr(h2)
	g.Headline3 = strPtr(h3)
	g.Description1 = strPtr(d1)
	g.Description2 = strPtr(d2)
	g.FinalURL = strPtr(finalURL)
	g.DisplayURL = strPtr(displayURL)
	g.GoogleAdGroupID = strPtr(googleID)
	return &g, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
