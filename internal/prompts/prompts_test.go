package prompts

import (
	"fmt"
	"strings"
	"testing"

	"growthkit/internal/core"
	"growthkit/internal/request"
)

func TestPostPromptInterpolation(t *testing.T) {
	b := Post(core.PostParams{
		Topic:    "email deliverability",
		Audience: "SaaS founders",
		Tone:     "conversational",
		Length:   "long",
		Keywords: []string{"SPF", "DKIM"},
	})

	for _, want := range []string{"email deliverability", "SaaS founders", "conversational", "long", "SPF, DKIM"} {
		if !strings.Contains(b.Prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
	if b.SystemPrompt == "" {
		t.Error("expected a system prompt")
	}
	if b.Options.MaxOutputTokens == 0 {
		t.Error("expected max output tokens to be set")
	}
}

func TestPromptDeterminism(t *testing.T) {
	params := core.ResearchParams{
		Type:           core.ResearchNiche,
		Niche:          "sustainable fashion",
		TargetAudience: "millennial women",
		Geography:      "Global",
		ResearchGoals:  []string{"market size and growth"},
	}

	first := Research(params)
	second := Research(params)

	if first.Prompt != second.Prompt {
		t.Error("research prompt is not deterministic")
	}
	if first.SystemPrompt != second.SystemPrompt || first.Options != second.Options {
		t.Error("research bundle is not deterministic")
	}
}

func TestResearchPromptEmitsStructuralMarkers(t *testing.T) {
	cases := []core.ResearchParams{
		{Type: core.ResearchWebsite, URL: "https://example.com", PageContent: "We sell artisanal tea.", Geography: "Global"},
		{Type: core.ResearchSocial, Platform: "instagram", BusinessDescription: "ceramics studio", Geography: "Global"},
		{Type: core.ResearchNiche, Niche: "sustainable fashion", TargetAudience: "millennial women", Geography: "Global"},
	}

	for _, params := range cases {
		t.Run(string(params.Type), func(t *testing.T) {
			b := Research(params)
			if !strings.Contains(b.Prompt, ExecutiveSummaryMarker) {
				t.Errorf("%s prompt missing executive summary marker", params.Type)
			}
			if !strings.Contains(b.Prompt, params.Geography) {
				t.Errorf("%s prompt missing geography", params.Type)
			}
		})
	}
}

func TestResearchNichePromptContainsSubjectAndAudience(t *testing.T) {
	b := Research(core.ResearchParams{
		Type:           core.ResearchNiche,
		Niche:          "sustainable fashion",
		TargetAudience: "millennial women",
		Geography:      "Global",
		ResearchGoals:  []string{"market size and growth"},
	})

	if !strings.Contains(b.Prompt, "sustainable fashion") {
		t.Error("prompt missing niche")
	}
	if !strings.Contains(b.Prompt, "millennial women") {
		t.Error("prompt missing target audience")
	}
	if !strings.Contains(b.Prompt, "market size and growth") {
		t.Error("prompt missing research goal")
	}
}

func TestComposeCoversEveryAction(t *testing.T) {
	bodies := map[core.Action]string{
		core.ActionPost:          `{"action":"post","topic":"t"}`,
		core.ActionTitle:         `{"action":"title","topic":"t"}`,
		core.ActionExcerpt:       `{"action":"excerpt","content":"c"}`,
		core.ActionAdCampaign:    `{"action":"ad_campaign","product":"p","audience":"a","platform":"google"}`,
		core.ActionEmail:         `{"action":"email","purpose":"p","audience":"a"}`,
		core.ActionEmailSequence: `{"action":"email_sequence","goal":"g","audience":"a"}`,
		core.ActionSubjectLines:  `{"action":"subject_lines","email_summary":"s"}`,
		core.ActionResearch:      `{"action":"research","type":"niche","niche":"n","target_audience":"a"}`,
	}

	for _, action := range core.Actions() {
		body, ok := bodies[action]
		if !ok {
			t.Fatalf("no test body for action %s", action)
		}
		v, err := request.Decode([]byte(body))
		if err != nil {
			t.Fatalf("decode %s: %v", action, err)
		}
		b := Compose(v)
		if b.Prompt == "" {
			t.Errorf("action %s composed an empty prompt", action)
		}
		if b.SystemPrompt == "" {
			t.Errorf("action %s has no system prompt", action)
		}
		if b.Options.MaxOutputTokens <= 0 {
			t.Errorf("action %s has no token budget", action)
		}
	}
}

func TestAdCampaignVariantCount(t *testing.T) {
	b := AdCampaign(core.AdCampaignParams{
		Product:      "CRM suite",
		Audience:     "founders",
		Platform:     "linkedin",
		Tone:         "bold",
		VariantCount: 4,
	})
	if !strings.Contains(b.Prompt, "4 ad copy variations") {
		t.Error("expected variant count in prompt")
	}
	if !strings.Contains(b.Prompt, "linkedin") {
		t.Error("expected platform in prompt")
	}
}

func TestTruncateBreaksAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := truncate(long, 52)
	if len(got) > 56 {
		t.Errorf("truncated content too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}
	if strings.Contains(strings.TrimSuffix(got, "..."), "wor ") {
		t.Error("expected truncation at a word boundary")
	}
}

func TestSubjectLinesCount(t *testing.T) {
	b := SubjectLines(core.SubjectLineParams{EmailSummary: "spring sale announcement", Count: 7})
	if !strings.Contains(b.Prompt, fmt.Sprintf("Generate %d subject line", 7)) {
		t.Error("expected count in prompt")
	}
}
