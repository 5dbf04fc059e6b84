package expansion

import (
	"context"
	"encoding/json"
	"strings"

	_ "embed"

	"github.com/outreachkit/prospector/internal/ai/gemini"
	"github.com/outreachkit/prospector/internal/prospect"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

// knownSuffixes are descriptive organization suffixes the fallback strips and
// re-attaches to widen recall without an AI call.
var knownSuffixes = []string{
	"Medical Center",
	"Regional Medical Center",
	"Hospital",
	"Health System",
	"Healthcare",
	"Health",
	"Clinic",
}

const maxVariants = 6

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Expander produces plausible alternate names for an organization. The AI
// path is best effort: any failure falls back to the deterministic suffix
// rules, and the original name is always the first variant.
type Expander struct {
	generator contentGenerator
	logger    *zap.Logger
}

// New creates an Expander. A nil generator disables the AI path entirely.
func New(generator contentGenerator, logger *zap.Logger) *Expander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{generator: generator, logger: logger}
}

// Expand returns an ordered, deduplicated set of name variants. It never
// fails; at minimum the original name is returned.
func (e *Expander) Expand(ctx context.Context, company *prospect.Company) []string {
	name := strings.TrimSpace(company.Name)
	if name == "" {
		return nil
	}

	variants := []string{name}

	if e.generator != nil {
		aiVariants, err := e.fromModel(ctx, company)
		if err != nil {
			e.logger.Warn("name expansion via model failed, using suffix rules",
				zap.String("company", name),
				zap.Error(err),
			)
		} else {
			variants = append(variants, aiVariants...)
		}
	}

	if len(variants) == 1 {
		variants = append(variants, suffixVariants(name)...)
	}

	return dedupeOrdered(variants, maxVariants)
}

func (e *Expander) fromModel(ctx context.Context, company *prospect.Company) ([]string, error) {
	location := strings.TrimSpace(strings.Join([]string{company.City, company.State}, " "))
	if location == "" {
		location = "unknown"
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{COMPANY_NAME}}", company.Name)
	prompt = strings.ReplaceAll(prompt, "{{COMPANY_LOCATION}}", location)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Variants []string `json:"variants"`
	}
	if err := json.Unmarshal([]byte(gemini.ExtractJSONObject(raw)), &parsed); err != nil {
		return nil, err
	}

	return parsed.Variants, nil
}

// suffixVariants strips each known suffix once and re-attaches every suffix
// to the stripped base, so "Mercy Medical Center" also yields "Mercy",
// "Mercy Hospital" and "Mercy Health System".
func suffixVariants(name string) []string {
	base := name
	lower := strings.ToLower(name)
	for _, suffix := range knownSuffixes {
		trimmed := strings.TrimSuffix(lower, strings.ToLower(suffix))
		if trimmed != lower {
			base = strings.TrimSpace(name[:len(trimmed)])
			break
		}
	}

	if base == "" || base == name {
		base = name
	}

	variants := make([]string, 0, len(knownSuffixes)+1)
	if base != name {
		variants = append(variants, base)
	}
	for _, suffix := range knownSuffixes {
		candidate := base + " " + suffix
		if candidate != name {
			variants = append(variants, candidate)
		}
	}

	return variants
}

func dedupeOrdered(variants []string, limit int) []string {
	seen := make(map[string]struct{}, len(variants))
	result := make([]string, 0, len(variants))
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, v)
		if len(result) == limit {
			break
		}
	}
	return result
}
