package usecase

import (
	"strings"

	"github.com/personamatcher/backend/internal/domain"
)

// styleRule is one row of the decision table: when any trigger word appears
// in the description, the rule contributes a rationale line and keywords.
type styleRule struct {
	triggers  []string
	rationale string
	keywords  []string
}

// matches reports whether any trigger appears in the lowercased description.
func (r *styleRule) matches(description string) bool {
	for _, trigger := range r.triggers {
		if strings.Contains(description, trigger) {
			return true
		}
	}
	return false
}

// personalityRules map style adjectives to a recommended bag style. Exactly
// one fires: rules are evaluated top-to-bottom and the last row is the
// unconditional default, so the keyword list is never empty.
var personalityRules = []styleRule{
	{
		triggers:  []string{"artistic"},
		rationale: "Recommended Style: A hand-painted crossbody or unique tote with floral or abstract patterns.",
		keywords:  []string{"hand painted", "artistic", "floral", "abstract"},
	},
	{
		triggers:  []string{"professional"},
		rationale: "Recommended Style: A structured tote or sleek satchel in neutral colors.",
		keywords:  []string{"structured", "tote", "leather", "neutral"},
	},
	{
		triggers:  []string{"casual"},
		rationale: "Recommended Style: A sling or backpack with playful, practical design.",
		keywords:  []string{"casual", "sling", "crossbody", "practical"},
	},
	{
		triggers:  []string{"elegant", "formal"},
		rationale: "Recommended Style: A mini crossbody or clutch with metallic or jeweled accents.",
		keywords:  []string{"elegant", "clutch", "mini", "metallic"},
	},
	{
		triggers:  nil, // default bucket
		rationale: "Recommended Style: A classic crossbody or satchel with subtle patterns.",
		keywords:  []string{"classic", "crossbody", "satchel"},
	},
}

// occasionRules fire at most once.
var occasionRules = []styleRule{
	{
		triggers:  []string{"office"},
		rationale: "Occasion Match: Pairs well with workwear—choose a sleek, large-capacity tote.",
		keywords:  []string{"tote", "work", "office"},
	},
	{
		triggers:  []string{"party", "evening"},
		rationale: "Occasion Match: Pairs with cocktail attire—consider metallic mini bags.",
		keywords:  []string{"evening", "metallic", "mini", "shiny"},
	},
	{
		triggers:  []string{"travel"},
		rationale: "Occasion Match: Practical bags for travel—opt for multi-compartment slings.",
		keywords:  []string{"travel", "sling", "crossbody", "compartment"},
	},
}

// outfitRules fire at most once.
var outfitRules = []styleRule{
	{
		triggers:  []string{"floral"},
		rationale: "Outfit Match: Compliments floral patterns with nature-inspired artwork.",
		keywords:  []string{"floral", "garden", "nature"},
	},
	{
		triggers:  []string{"denim"},
		rationale: "Outfit Match: Earthy tones or bold contrast bags go well with denim.",
		keywords:  []string{"denim", "earthy", "tan", "contrast"},
	},
	{
		triggers:  []string{"monochrome", "solid"},
		rationale: "Outfit Match: Use colorful patterns to stand out against plain outfits.",
		keywords:  []string{"colorful", "bold", "contrast"},
	},
}

// colorRules contribute keywords only, no rationale line.
var colorRules = []styleRule{
	{triggers: []string{"red"}, keywords: []string{"red", "vibrant"}},
	{triggers: []string{"blue"}, keywords: []string{"blue", "cool tone"}},
	{triggers: []string{"gold"}, keywords: []string{"gold", "luxury"}},
}

// bagTypes are appended for every mention, not first-wins.
var bagTypes = []string{"tote", "sling", "clutch", "backpack", "satchel", "crossbody"}

// StyleEngine derives search keywords and rationale text from a free-text
// style description. It is a fixed decision table: pure, case-insensitive,
// and it cannot fail.
type StyleEngine struct{}

// NewStyleEngine creates a new style engine
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{}
}

// Recommend maps a style description to a StyleProfile. The keyword list
// preserves first-seen order with duplicates removed, and the rationale ends
// with a "Search Keywords: ..." line listing the final keywords.
func (e *StyleEngine) Recommend(description string) *domain.StyleProfile {
	description = strings.ToLower(description)

	var lines []string
	var keywords []string

	// Personality: the trailing default row guarantees a match.
	for i := range personalityRules {
		rule := &personalityRules[i]
		if rule.triggers == nil || rule.matches(description) {
			lines = append(lines, rule.rationale)
			keywords = append(keywords, rule.keywords...)
			break
		}
	}

	// Occasion and outfit: zero or one rule fires per category.
	for _, table := range [][]styleRule{occasionRules, outfitRules} {
		for i := range table {
			rule := &table[i]
			if rule.matches(description) {
				lines = append(lines, rule.rationale)
				keywords = append(keywords, rule.keywords...)
				break
			}
		}
	}

	// Color preference: keywords only.
	for i := range colorRules {
		rule := &colorRules[i]
		if rule.matches(description) {
			keywords = append(keywords, rule.keywords...)
			break
		}
	}

	// Explicit bag-type mentions all append.
	for _, bagType := range bagTypes {
		if strings.Contains(description, bagType) {
			keywords = append(keywords, bagType)
		}
	}

	unique := dedupeKeepFirst(keywords)
	lines = append(lines, "Search Keywords: "+strings.Join(unique, ", "))

	return &domain.StyleProfile{
		Keywords:  unique,
		Rationale: strings.Join(lines, "\n"),
	}
}

// dedupeKeepFirst removes duplicates preserving first occurrence order
func dedupeKeepFirst(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	result := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if !seen[keyword] {
			seen[keyword] = true
			result = append(result, keyword)
		}
	}
	return result
}
