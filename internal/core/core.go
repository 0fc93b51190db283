package core

import "time"

// Action selects which prompt template and validation rules apply to a
// generation request.
type Action string

const (
	ActionPost          Action = "post"           // Long-form blog post copy
	ActionTitle         Action = "title"          // Title suggestions for a topic
	ActionExcerpt       Action = "excerpt"        // Short excerpt for existing content
	ActionAdCampaign    Action = "ad_campaign"    // Ad copy variations for a platform
	ActionEmail         Action = "email"          // Single marketing email
	ActionEmailSequence Action = "email_sequence" // Multi-step email sequence
	ActionSubjectLines  Action = "subject_lines"  // Subject line variants
	ActionResearch      Action = "research"       // Market research report (durable)
)

// Actions lists every supported action in a stable order.
func Actions() []Action {
	return []Action{
		ActionPost, ActionTitle, ActionExcerpt, ActionAdCampaign,
		ActionEmail, ActionEmailSequence, ActionSubjectLines, ActionResearch,
	}
}

// ResearchType discriminates the research flavors.
type ResearchType string

const (
	ResearchWebsite ResearchType = "website"
	ResearchSocial  ResearchType = "social"
	ResearchNiche   ResearchType = "niche"
)

// ReportStatus is the lifecycle state of a research report.
type ReportStatus string

const (
	StatusProcessing ReportStatus = "processing"
	StatusCompleted  ReportStatus = "completed"
	StatusFailed     ReportStatus = "failed"
)

// Terminal reports whether no further status transition is valid.
func (s ReportStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Report is the durable record of one research-generation attempt.
// A report is created with StatusProcessing and an empty Content, and is
// updated exactly once to a terminal status.
type Report struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	ResearchType      ResearchType      `json:"research_type"`
	Status            ReportStatus      `json:"status"`
	Content           string            `json:"content"`
	Summary           string            `json:"summary"`
	InputMetadata     map[string]string `json:"input_metadata"`
	CreatedAt         time.Time         `json:"created_at"`
	ProcessingSeconds float64           `json:"processing_time_seconds"`
}

// PostParams are the validated parameters for ActionPost.
type PostParams struct {
	Topic    string   `json:"topic" validate:"required"`
	Audience string   `json:"audience"`
	Tone     string   `json:"tone"`
	Length   string   `json:"length" validate:"omitempty,oneof=short medium long"`
	Keywords []string `json:"keywords"`
}

// TitleParams are the validated parameters for ActionTitle.
type TitleParams struct {
	Topic string `json:"topic" validate:"required"`
	Tone  string `json:"tone"`
	Count int    `json:"count" validate:"omitempty,min=1,max=10"`
}

// ExcerptParams are the validated parameters for ActionExcerpt.
type ExcerptParams struct {
	Content  string `json:"content" validate:"required"`
	MaxWords int    `json:"max_words" validate:"omitempty,min=10,max=200"`
}

// AdCampaignParams are the validated parameters for ActionAdCampaign.
type AdCampaignParams struct {
	Product      string `json:"product" validate:"required"`
	Audience     string `json:"audience" validate:"required"`
	Platform     string `json:"platform" validate:"required,oneof=facebook instagram google linkedin twitter"`
	Tone         string `json:"tone"`
	VariantCount int    `json:"variant_count" validate:"omitempty,min=1,max=10"`
}

// EmailParams are the validated parameters for ActionEmail.
type EmailParams struct {
	Purpose      string `json:"purpose" validate:"required"`
	Audience     string `json:"audience" validate:"required"`
	Tone         string `json:"tone"`
	CallToAction string `json:"call_to_action"`
}

// EmailSequenceParams are the validated parameters for ActionEmailSequence.
type EmailSequenceParams struct {
	Goal     string `json:"goal" validate:"required"`
	Audience string `json:"audience" validate:"required"`
	Steps    int    `json:"steps" validate:"omitempty,min=2,max=7"`
	Tone     string `json:"tone"`
}

// SubjectLineParams are the validated parameters for ActionSubjectLines.
type SubjectLineParams struct {
	EmailSummary string `json:"email_summary" validate:"required"`
	Count        int    `json:"count" validate:"omitempty,min=1,max=10"`
}

// ResearchParams are the validated parameters for ActionResearch. Required
// fields depend on Type: website research needs URL and PageContent, social
// research needs Platform and BusinessDescription, niche research needs Niche
// and TargetAudience.
type ResearchParams struct {
	Type ResearchType `json:"type" validate:"required,oneof=website social niche"`

	// Website research
	URL         string `json:"url" validate:"required_if=Type website,omitempty,url"`
	PageContent string `json:"page_content" validate:"required_if=Type website"`

	// Social research
	Platform            string `json:"platform" validate:"required_if=Type social"`
	BusinessDescription string `json:"business_description" validate:"required_if=Type social"`

	// Niche research
	Niche          string `json:"niche" validate:"required_if=Type niche"`
	TargetAudience string `json:"target_audience" validate:"required_if=Type niche"`

	// Optional for all research types
	Geography     string   `json:"geography"`
	ResearchGoals []string `json:"research_goals"`
}

// Subject returns the primary subject of the research, used for report titles.
func (p ResearchParams) Subject() string {
	switch p.Type {
	case ResearchWebsite:
		return p.URL
	case ResearchSocial:
		return p.Platform
	case ResearchNiche:
		return p.Niche
	}
	return ""
}

// Metadata flattens the parameters into the audit echo stored on the report.
func (p ResearchParams) Metadata() map[string]string {
	m := map[string]string{
		"type":      string(p.Type),
		"geography": p.Geography,
	}
	switch p.Type {
	case ResearchWebsite:
		m["url"] = p.URL
	case ResearchSocial:
		m["platform"] = p.Platform
		m["business_description"] = p.BusinessDescription
	case ResearchNiche:
		m["niche"] = p.Niche
		m["target_audience"] = p.TargetAudience
	}
	return m
}
