package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"lectio/internal/store"
)

// LoggingProvider records every model call in the event log. Sits inside
// the retry decorator so each attempt produces its own event.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
}

// WithLogging wraps a provider with event logging. The provider name is
// recorded alongside the model so log rows stay meaningful when friendly
// model names resolve differently over time.
func WithLogging(p Provider, provider string, events store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: provider, events: events}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	ev := store.RequestEvent{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.StopReason = resp.StopReason
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		ev.StopReason = StopError
	}

	// The event log must never fail the call it describes.
	if logErr := l.events.Append(ctx, ev); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: record model call event: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
