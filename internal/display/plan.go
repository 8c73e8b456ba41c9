package display

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Plans with a hard monthly cap on chat. Only these show the chat row.
var chatLimitedPlans = map[string]bool{
	"free":                 true,
	"copilot-free":         true,
	"free-limited-copilot": true,
}

var planLabels = map[string]string{
	"free":                 "Free",
	"copilot-free":         "Free",
	"free-limited-copilot": "Free",
	"individual":           "Pro",
	"pro":                  "Pro",
	"individual-pro":       "Pro+",
	"pro-plus":             "Pro+",
	"business":             "Business",
	"enterprise":           "Enterprise",
}

// NormalizePlan lowercases a plan id and maps underscores to hyphens.
func NormalizePlan(id string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), "_", "-")
}

// ChatVisible reports whether the plan meters chat.
func ChatVisible(planID string) bool {
	return chatLimitedPlans[NormalizePlan(planID)]
}

// PlanLabel turns a plan id into a display name.
func PlanLabel(planID string) string {
	norm := NormalizePlan(planID)
	if norm == "" {
		return "Copilot"
	}
	if label, ok := planLabels[norm]; ok {
		return label
	}
	words := strings.FieldsFunc(norm, func(r rune) bool { return r == '-' || unicode.IsSpace(r) })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
