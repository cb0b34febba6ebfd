// Package analytics records campaign lifecycle events in ClickHouse so the
// history of every campaign (creation, publication, pauses, deletions) can be
// queried after the fact.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/pmalloy/campaignsync/internal/observability"
)

// Lifecycle event types written to the events table.
const (
	EventCampaignCreated   = "campaign_created"
	EventCampaignUpdated   = "campaign_updated"
	EventCampaignPublished = "campaign_published"
	EventCampaignPaused    = "campaign_paused"
	EventCampaignDeleted   = "campaign_deleted"
	EventAdGroupCreated    = "ad_group_created"
	EventAdGroupUpdated    = "ad_group_updated"
	EventAdGroupDeleted    = "ad_group_deleted"
)

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// Service defines the interface for lifecycle event recording.
// Implementations should handle cases where underlying storage is unavailable
// by returning ErrUnavailable.
type Service interface {
	// RecordEvent records a single lifecycle event. adGroupID, googleCampaignID
	// and status may be empty when they do not apply to the event type.
	RecordEvent(ctx context.Context, eventType, campaignID, adGroupID, googleCampaignID, status, detail string) error
	// EventsByCampaign returns all recorded events for a campaign ordered by
	// timestamp.
	EventsByCampaign(ctx context.Context, campaignID string) ([]EventRecord, error)
	// Close releases the underlying connection.
	Close()
}

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

var _ Service = (*Analytics)(nil)

// EventRecord mirrors a row in the campaign_events table.
type EventRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	EventType        string    `json:"event_type"`
	CampaignID       string    `json:"campaign_id"`
	AdGroupID        *string   `json:"ad_group_id"`
	GoogleCampaignID *string   `json:"google_campaign_id"`
	Status           *string   `json:"status"`
	Detail           *string   `json:"detail"`
}

// InitClickHouse connects to ClickHouse and ensures the campaign_events table
// exists.
func InitClickHouse(dsn string, metrics observability.MetricsRegistry) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(25)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS campaign_events (
       timestamp          DateTime,
       event_type         String,
       campaign_id        String,
       ad_group_id        Nullable(String),
       google_campaign_id Nullable(String),
       status             Nullable(String),
       detail             Nullable(String)
   ) ENGINE=MergeTree() ORDER BY (campaign_id, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db, Metrics: metrics}, nil
}

// RecordEvent inserts a single event row into the campaign_events table.
func (a *Analytics) RecordEvent(ctx context.Context, eventType, campaignID, adGroupID, googleCampaignID, status, detail string) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}

	var ag, gc, st, dt sql.NullString
	if adGroupID != "" {
		ag.String = adGroupID
		ag.Valid = true
	}
	if googleCampaignID != "" {
		gc.String = googleCampaignID
		gc.Valid = true
	}
	if status != "" {
		st.String = status
		st.Valid = true
	}
	if detail != "" {
		dt.String = detail
		dt.Valid = true
	}

	stmt := `INSERT INTO campaign_events (timestamp, event_type, campaign_id, ad_group_id, google_campaign_id, status, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, time.Now(), eventType, campaignID, ag, gc, st, dt); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("event_type", eventType))
		return fmt.Errorf("insert %s event: %w", eventType, err)
	}
	a.Metrics.IncrementLifecycleEvents(eventType)
	return nil
}

// EventsByCampaign returns all events for a campaign ordered by timestamp.
func (a *Analytics) EventsByCampaign(ctx context.Context, campaignID string) ([]EventRecord, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	query := `SELECT timestamp, event_type, campaign_id, ad_group_id, google_campaign_id, status, detail FROM campaign_events WHERE campaign_id=? ORDER BY timestamp`
	rows, err := a.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var events []EventRecord
	for rows.Next() {
		var ev EventRecord
		if err := rows.Scan(&ev.Timestamp, &ev.EventType, &ev.CampaignID, &ev.AdGroupID, &ev.GoogleCampaignID, &ev.Status, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
