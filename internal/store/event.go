package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RequestEvent is one outbound model call.
type RequestEvent struct {
	ID           int64
	CreatedAt    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	StopReason   string
	ErrorMessage string
}

// ProviderStats aggregates the event log per provider/model pair.
type ProviderStats struct {
	Provider     string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int64
	OutputTokens int64
	MeanLatency  time.Duration
}

// EventRepo is the append/inspect surface over the request event log.
type EventRepo interface {
	// Append records one model call. Logging must never fail the call
	// it describes; callers treat errors here as warnings.
	Append(ctx context.Context, ev RequestEvent) error

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]RequestEvent, error)

	// Stats aggregates the full log per provider/model.
	Stats(ctx context.Context) ([]ProviderStats, error)

	// Reset deletes every recorded event.
	Reset(ctx context.Context) error
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) Append(ctx context.Context, ev RequestEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_request_events
			(provider, model, purpose, input_tokens, output_tokens,
			 latency_ms, success, stop_reason, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Provider, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens,
		ev.LatencyMs, boolToInt(ev.Success), ev.StopReason, ev.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append request event: %w", err)
	}
	return nil
}

func (r *eventRepo) Recent(ctx context.Context, limit int) ([]RequestEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, stop_reason, error_message
		FROM llm_request_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		var ev RequestEvent
		var success int
		if err := rows.Scan(
			&ev.ID, &ev.CreatedAt, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &success,
			&ev.StopReason, &ev.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan request event: %w", err)
		}
		ev.Success = success != 0
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) Stats(ctx context.Context) ([]ProviderStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT provider, model, COUNT(*),
		       SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(AVG(latency_ms), 0)
		FROM llm_request_events
		GROUP BY provider, model
		ORDER BY provider, model`)
	if err != nil {
		return nil, fmt.Errorf("query event stats: %w", err)
	}
	defer rows.Close()

	var stats []ProviderStats
	for rows.Next() {
		var s ProviderStats
		var meanMs float64
		if err := rows.Scan(
			&s.Provider, &s.Model, &s.Calls, &s.Failures,
			&s.InputTokens, &s.OutputTokens, &meanMs,
		); err != nil {
			return nil, fmt.Errorf("scan event stats: %w", err)
		}
		s.MeanLatency = time.Duration(meanMs * float64(time.Millisecond))
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event stats: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM llm_request_events`); err != nil {
		return fmt.Errorf("reset request events: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
