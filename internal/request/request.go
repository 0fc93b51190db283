// Package request decodes and validates inbound generation payloads into the
// typed parameter objects consumed by prompt composition. Malformed requests
// are rejected here, before any rate-limit or provider cost is incurred.
package request

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"growthkit/internal/apperr"
	"growthkit/internal/core"
)

// Defaults applied for optional fields so prompt composition never fails on
// absence.
const (
	DefaultTone          = "professional"
	DefaultLength        = "medium"
	DefaultTitleCount    = 5
	DefaultVariantCount  = 3
	DefaultSequenceSteps = 3
	DefaultSubjectCount  = 5
	DefaultExcerptWords  = 50
	DefaultGeography     = "Global"
)

// DefaultResearchGoals is the focus-area list used when a research request
// does not name its own goals.
var DefaultResearchGoals = []string{
	"market size and growth",
	"competitor landscape",
	"audience pain points",
	"positioning opportunities",
}

// Validated is the outcome of decoding a generation payload: the action
// discriminator plus exactly one populated params struct.
type Validated struct {
	Action core.Action

	Post          *core.PostParams
	Title         *core.TitleParams
	Excerpt       *core.ExcerptParams
	AdCampaign    *core.AdCampaignParams
	Email         *core.EmailParams
	EmailSequence *core.EmailSequenceParams
	SubjectLines  *core.SubjectLineParams
	Research      *core.ResearchParams
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names by their json tag so error messages match the wire
	// format the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type envelope struct {
	Action string `json:"action"`
}

// Decode parses body, validates it against the rules for its action, applies
// defaults for omitted optional fields, and returns the typed result. All
// offending fields are reported together via *apperr.ValidationError.
func Decode(body []byte) (*Validated, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.NewValidationError("body", "must be a JSON object")
	}
	if env.Action == "" {
		return nil, apperr.NewValidationError("action", "is required")
	}

	out := &Validated{Action: core.Action(env.Action)}

	var target any
	switch out.Action {
	case core.ActionPost:
		out.Post = &core.PostParams{}
		target = out.Post
	case core.ActionTitle:
		out.Title = &core.TitleParams{}
		target = out.Title
	case core.ActionExcerpt:
		out.Excerpt = &core.ExcerptParams{}
		target = out.Excerpt
	case core.ActionAdCampaign:
		out.AdCampaign = &core.AdCampaignParams{}
		target = out.AdCampaign
	case core.ActionEmail:
		out.Email = &core.EmailParams{}
		target = out.Email
	case core.ActionEmailSequence:
		out.EmailSequence = &core.EmailSequenceParams{}
		target = out.EmailSequence
	case core.ActionSubjectLines:
		out.SubjectLines = &core.SubjectLineParams{}
		target = out.SubjectLines
	case core.ActionResearch:
		out.Research = &core.ResearchParams{}
		target = out.Research
	default:
		return nil, apperr.NewValidationError("action",
			fmt.Sprintf("unknown action %q", env.Action))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return nil, apperr.NewValidationError("body", "contains fields of the wrong type")
	}

	if err := validate.Struct(target); err != nil {
		return nil, toValidationError(err)
	}

	applyDefaults(out)
	return out, nil
}

// toValidationError converts validator.ValidationErrors into the per-field
// map surfaced to clients.
func toValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.NewValidationError("body", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return &apperr.ValidationError{Fields: fields}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func applyDefaults(v *Validated) {
	switch v.Action {
	case core.ActionPost:
		if v.Post.Tone == "" {
			v.Post.Tone = DefaultTone
		}
		if v.Post.Length == "" {
			v.Post.Length = DefaultLength
		}
	case core.ActionTitle:
		if v.Title.Tone == "" {
			v.Title.Tone = DefaultTone
		}
		if v.Title.Count == 0 {
			v.Title.Count = DefaultTitleCount
		}
	case core.ActionExcerpt:
		if v.Excerpt.MaxWords == 0 {
			v.Excerpt.MaxWords = DefaultExcerptWords
		}
	case core.ActionAdCampaign:
		if v.AdCampaign.Tone == "" {
			v.AdCampaign.Tone = DefaultTone
		}
		if v.AdCampaign.VariantCount == 0 {
			v.AdCampaign.VariantCount = DefaultVariantCount
		}
	case core.ActionEmail:
		if v.Email.Tone == "" {
			v.Email.Tone = DefaultTone
		}
	case core.ActionEmailSequence:
		if v.EmailSequence.Tone == "" {
			v.EmailSequence.Tone = DefaultTone
		}
		if v.EmailSequence.Steps == 0 {
			v.EmailSequence.Steps = DefaultSequenceSteps
		}
	case core.ActionSubjectLines:
		if v.SubjectLines.Count == 0 {
			v.SubjectLines.Count = DefaultSubjectCount
		}
	case core.ActionResearch:
		if v.Research.Geography == "" {
			v.Research.Geography = DefaultGeography
		}
		if len(v.Research.ResearchGoals) == 0 {
			v.Research.ResearchGoals = append([]string(nil), DefaultResearchGoals...)
		}
	}
}
