// Package prompts maps validated request parameters to provider-ready
// prompts. Every compose function is deterministic and side-effect free:
// identical parameters always produce identical strings.
package prompts

import (
	"fmt"
	"strings"

	"growthkit/internal/core"
	"growthkit/internal/request"
)

// Structural markers emitted by the research templates. Report summary
// extraction locates these exact strings in the generated text, so they are a
// versioned contract shared with internal/reports, not incidental prose.
const (
	// ExecutiveSummaryMarker is the heading that opens the summary section of
	// every research report.
	ExecutiveSummaryMarker = "# 📊 Executive Summary"

	// SectionPrefix marks the start of any top-level report section.
	SectionPrefix = "# "
)

// Options are the generation parameters passed through to the provider
// unchanged.
type Options struct {
	MaxOutputTokens int32
	Temperature     float32
}

// Bundle is a composed prompt plus its generation parameters.
type Bundle struct {
	Prompt       string
	SystemPrompt string
	Options      Options
}

const (
	copywriterSystemPrompt = "You are a senior marketing copywriter. You write clear, persuasive, on-brand copy and you return only the requested deliverable with no meta-commentary."
	researcherSystemPrompt = "You are a market research analyst. You produce structured, evidence-minded reports in markdown, following the requested section layout exactly."
)

// Compose returns the prompt bundle for a validated request.
func Compose(v *request.Validated) Bundle {
	switch v.Action {
	case core.ActionPost:
		return Post(*v.Post)
	case core.ActionTitle:
		return Title(*v.Title)
	case core.ActionExcerpt:
		return Excerpt(*v.Excerpt)
	case core.ActionAdCampaign:
		return AdCampaign(*v.AdCampaign)
	case core.ActionEmail:
		return Email(*v.Email)
	case core.ActionEmailSequence:
		return EmailSequence(*v.EmailSequence)
	case core.ActionSubjectLines:
		return SubjectLines(*v.SubjectLines)
	case core.ActionResearch:
		return Research(*v.Research)
	}
	// Unreachable for validated input; the validator rejects unknown actions.
	return Bundle{}
}

// Post composes the blog post prompt.
func Post(p core.PostParams) Bundle {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Write a %s blog post about: %s\n\n", p.Length, p.Topic))
	if p.Audience != "" {
		b.WriteString(fmt.Sprintf("**Audience:** %s\n", p.Audience))
	}
	b.WriteString(fmt.Sprintf("**Tone:** %s\n", p.Tone))
	if len(p.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("**Keywords to work in naturally:** %s\n", strings.Join(p.Keywords, ", ")))
	}

	b.WriteString(`
**Instructions:**
1. Open with a hook that makes the reader want to continue
2. Use short paragraphs and descriptive subheadings
3. Back claims with concrete examples, not generalities
4. Close with a clear takeaway or call to action

**Output Format:**
Return the post in markdown, starting with a # title line.`)

	return Bundle{
		Prompt:       b.String(),
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 4096, Temperature: 0.7},
	}
}

// Title composes the title suggestions prompt.
func Title(p core.TitleParams) Bundle {
	prompt := fmt.Sprintf(`Generate %d title options for a blog post about: %s

**Tone:** %s

**Instructions:**
1. Each title should be 6-12 words
2. Be specific, not clickbait
3. Vary the angle across options (how-to, question, data-led, contrarian)

**Output Format:**
Return a numbered list of titles, nothing else.`, p.Count, p.Topic, p.Tone)

	return Bundle{
		Prompt:       prompt,
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 1024, Temperature: 0.9},
	}
}

// Excerpt composes the excerpt prompt.
func Excerpt(p core.ExcerptParams) Bundle {
	prompt := fmt.Sprintf(`Write a compelling excerpt of at most %d words for the following content.

**Content:**
%s

**Instructions:**
1. Capture the single most interesting idea
2. Write for a reader deciding whether to click through
3. No spoilers of the conclusion, no ellipses padding

**Output Format:**
Return only the excerpt text.`, p.MaxWords, truncate(p.Content, 4000))

	return Bundle{
		Prompt:       prompt,
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 512, Temperature: 0.5},
	}
}

// AdCampaign composes the ad variations prompt.
func AdCampaign(p core.AdCampaignParams) Bundle {
	prompt := fmt.Sprintf(`Write %d ad copy variations for %s.

**Product:** %s
**Audience:** %s
**Tone:** %s

**Instructions:**
1. Follow %s character and style conventions
2. Each variation needs a distinct angle (benefit-led, social proof, urgency, curiosity)
3. Include a headline and body text per variation
4. End each variation with a call to action

**Output Format:**
## Variation N
**Headline:** ...
**Body:** ...
**CTA:** ...`, p.VariantCount, p.Platform, p.Product, p.Audience, p.Tone, p.Platform)

	return Bundle{
		Prompt:       prompt,
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 2048, Temperature: 0.8},
	}
}

// Email composes the single marketing email prompt.
func Email(p core.EmailParams) Bundle {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Write a marketing email.\n\n**Purpose:** %s\n**Audience:** %s\n**Tone:** %s\n", p.Purpose, p.Audience, p.Tone))
	if p.CallToAction != "" {
		b.WriteString(fmt.Sprintf("**Call to action:** %s\n", p.CallToAction))
	}
	b.WriteString(`
**Instructions:**
1. Subject line under 60 characters
2. Preview text under 100 characters
3. Body of 100-200 words, one idea per paragraph
4. One primary call to action, stated once in the body and once at the end

**Output Format:**
**Subject:** ...
**Preview:** ...
**Body:**
...`)

	return Bundle{
		Prompt:       b.String(),
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 1024, Temperature: 0.7},
	}
}

// EmailSequence composes the multi-step email sequence prompt.
func EmailSequence(p core.EmailSequenceParams) Bundle {
	prompt := fmt.Sprintf(`Design a %d-email sequence.

**Goal:** %s
**Audience:** %s
**Tone:** %s

**Instructions:**
1. Each email builds on the previous one toward the goal
2. Name the intent of each email (welcome, value, objection handling, close)
3. Include subject line and 80-150 word body per email
4. Specify the send-day offset for each email (e.g. Day 0, Day 2)

**Output Format:**
## Email N — [intent] (Day X)
**Subject:** ...
**Body:**
...`, p.Steps, p.Goal, p.Audience, p.Tone)

	return Bundle{
		Prompt:       prompt,
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 4096, Temperature: 0.7},
	}
}

// SubjectLines composes the subject line variants prompt.
func SubjectLines(p core.SubjectLineParams) Bundle {
	prompt := fmt.Sprintf(`Generate %d subject line variants for an email with this content:

%s

**Instructions:**
1. Keep each under 60 characters
2. Vary the mechanism across variants (curiosity, benefit, urgency, personal)
3. No spam-trigger words (FREE!!!, act now, guaranteed)

**Output Format:**
Return a numbered list of subject lines, nothing else.`, p.Count, truncate(p.EmailSummary, 1500))

	return Bundle{
		Prompt:       prompt,
		SystemPrompt: copywriterSystemPrompt,
		Options:      Options{MaxOutputTokens: 512, Temperature: 0.9},
	}
}

// Research composes the research report prompt for the given research type.
// The output structure it prescribes — an Executive Summary section followed
// by further top-level sections — is what report summary extraction parses.
func Research(p core.ResearchParams) Bundle {
	var b strings.Builder

	switch p.Type {
	case core.ResearchWebsite:
		b.WriteString(fmt.Sprintf("Analyze the following website and produce a marketing research report.\n\n**URL:** %s\n\n**Page content:**\n%s\n", p.URL, truncate(p.PageContent, 8000)))
	case core.ResearchSocial:
		b.WriteString(fmt.Sprintf("Produce a social media research report for a business on %s.\n\n**Business:** %s\n", p.Platform, p.BusinessDescription))
	case core.ResearchNiche:
		b.WriteString(fmt.Sprintf("Produce a market research report on the following niche.\n\n**Niche:** %s\n**Target audience:** %s\n", p.Niche, p.TargetAudience))
	}

	b.WriteString(fmt.Sprintf("\n**Geography:** %s\n", p.Geography))
	b.WriteString("\n**Research goals:**\n")
	for _, goal := range p.ResearchGoals {
		b.WriteString(fmt.Sprintf("- %s\n", goal))
	}

	b.WriteString(fmt.Sprintf(`
**Output Format:**
Use exactly this markdown section structure:

%s
[3-5 sentence summary of the most important findings]

%s🎯 Key Findings
[Findings addressing each research goal, with specifics]

%s⚔️ Competitive Landscape
[Main competitors or comparable players and how they position]

%s💡 Opportunities
[Concrete, prioritized opportunities]

%s🚀 Recommended Next Steps
[3-5 actionable recommendations]`,
		ExecutiveSummaryMarker, SectionPrefix, SectionPrefix, SectionPrefix, SectionPrefix))

	return Bundle{
		Prompt:       b.String(),
		SystemPrompt: researcherSystemPrompt,
		Options:      Options{MaxOutputTokens: 8192, Temperature: 0.6},
	}
}

// truncate caps content at maxChars, breaking at a word boundary when it can.
func truncate(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	truncated := content[:maxChars]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
