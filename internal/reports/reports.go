// Package reports drives the durable lifecycle of research report
// generation: create a processing record, invoke the provider once, and move
// the record to exactly one terminal state.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"growthkit/internal/core"
	"growthkit/internal/logger"
	"growthkit/internal/prompts"
)

// TextGenerator is the single provider call the manager depends on.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, systemPrompt string, opts prompts.Options) (string, error)
}

// ReportStore is the durable record store the manager writes to.
type ReportStore interface {
	Create(ctx context.Context, report core.Report) error
	Complete(ctx context.Context, id, content, summary string, seconds float64) error
	Fail(ctx context.Context, id, message string) error
}

// Manager orchestrates one research generation attempt per Run call.
type Manager struct {
	generator TextGenerator
	store     ReportStore
	now       func() time.Time
	newID     func() string
}

// NewManager creates a report lifecycle manager.
func NewManager(generator TextGenerator, store ReportStore) *Manager {
	return &Manager{
		generator: generator,
		store:     store,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Run executes the full report lifecycle for validated research parameters:
// create the record in processing, call the provider, then finalize to
// completed or failed. Every created record reaches a terminal state through
// one of the two branches; a crash mid-call can still orphan a processing
// record, which is an accepted operational caveat (no recovery sweep).
//
// On provider failure the returned report carries StatusFailed and the error
// is returned as well, so the caller can surface it while the failure stays
// durably inspectable.
func (m *Manager) Run(ctx context.Context, params core.ResearchParams) (*core.Report, error) {
	bundle := prompts.Research(params)

	report := core.Report{
		ID:            m.newID(),
		Title:         deriveTitle(params),
		ResearchType:  params.Type,
		Status:        core.StatusProcessing,
		InputMetadata: params.Metadata(),
		CreatedAt:     m.now().UTC(),
	}

	if err := m.store.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report record: %w", err)
	}

	text, err := m.generator.Generate(ctx, bundle.Prompt, bundle.SystemPrompt, bundle.Options)
	if err != nil {
		// The failed state is written under a fresh context: a cancelled
		// request must not leave the record stuck in processing.
		message := fmt.Sprintf("report generation failed: %v", err)
		if failErr := m.store.Fail(context.Background(), report.ID, message); failErr != nil {
			logger.Error("failed to mark report as failed", failErr, "report_id", report.ID)
		}
		report.Status = core.StatusFailed
		report.Content = message
		return &report, err
	}

	summary := ExtractSummary(text)
	seconds := m.now().UTC().Sub(report.CreatedAt).Seconds()

	if err := m.store.Complete(context.Background(), report.ID, text, summary, seconds); err != nil {
		// Best effort: a record that cannot be completed should still leave
		// processing rather than stay stuck there.
		message := fmt.Sprintf("failed to finalize report: %v", err)
		if failErr := m.store.Fail(context.Background(), report.ID, message); failErr != nil {
			logger.Error("failed to mark report as failed", failErr, "report_id", report.ID)
		}
		return nil, fmt.Errorf("failed to finalize report %s: %w", report.ID, err)
	}

	report.Status = core.StatusCompleted
	report.Content = text
	report.Summary = summary
	report.ProcessingSeconds = seconds
	return &report, nil
}

// deriveTitle combines the research type with the primary subject.
func deriveTitle(params core.ResearchParams) string {
	switch params.Type {
	case core.ResearchWebsite:
		return "Website Research: " + params.Subject()
	case core.ResearchSocial:
		return "Social Media Research: " + params.Subject()
	case core.ResearchNiche:
		return "Niche Research: " + params.Subject()
	}
	return "Research: " + params.Subject()
}

// ExtractSummary returns the text between the executive summary marker and
// the next top-level section heading, trimmed of surrounding whitespace. A
// body without the marker yields an empty summary rather than an error; if
// the provider drifts from the prescribed formatting the report degrades to
// having no summary.
func ExtractSummary(body string) string {
	start := strings.Index(body, prompts.ExecutiveSummaryMarker)
	if start < 0 {
		return ""
	}
	section := body[start+len(prompts.ExecutiveSummaryMarker):]

	if next := strings.Index(section, "\n"+prompts.SectionPrefix); next >= 0 {
		section = section[:next]
	}
	return strings.TrimSpace(section)
}
