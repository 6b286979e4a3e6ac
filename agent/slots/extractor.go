// Package slots turns utterance text into slot values for a given intent.
package slots

import (
	"strings"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

const tokenCutset = " ,.!?;:\"'()"

var productKeywords = map[string]struct{}{
	"tumbler": {},
	"flask":   {},
	"mug":     {},
	"cup":     {},
	"bottle":  {},
	"merch":   {},
	"thermos": {},
}

var productAliases = map[string]string{
	"tumblers":  "tumbler",
	"tumblrs":   "tumbler",
	"cups":      "cup",
	"mugs":      "mug",
	"bottles":   "bottle",
	"thermoses": "thermos",
}

// locationAliases maps short forms to canonical outlet names. Order matters:
// the first alias found in the message wins.
var locationAliases = []struct {
	alias    string
	location string
}{
	{"ss2", "SS 2"},
	{"pj", "Petaling Jaya"},
	{"petaling", "Petaling Jaya"},
	{"kl", "Kuala Lumpur"},
	{"kuala lumpur", "Kuala Lumpur"},
	{"damansara", "Damansara"},
}

// calcMarkers are leading command prefixes stripped from the operation slot.
var calcMarkers = []string{"/calc", "calc"}

// Extractor derives slot updates from the utterance. It never fails: a
// malformed or non-matching utterance yields an empty map.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(utterance string, intent contractx.Intent) map[string]string {
	updates := make(map[string]string)

	switch intent {
	case contractx.IntentCalculate:
		if op := extractOperation(utterance); op != "" {
			updates["operation"] = op
		}
	case contractx.IntentProductInfo:
		if product := extractProductType(utterance); product != "" {
			updates["product_type"] = product
		}
	case contractx.IntentOutletInfo:
		if location := extractLocation(utterance); location != "" {
			updates["location"] = location
		}
	}

	return updates
}

// extractOperation returns the utterance with any leading calc command
// marker removed, so "calc 5 * 7" and "/calc 5 * 7" both yield "5 * 7".
func extractOperation(utterance string) string {
	trimmed := strings.TrimSpace(utterance)
	lowered := strings.ToLower(trimmed)
	for _, marker := range calcMarkers {
		if !strings.HasPrefix(lowered, marker) {
			continue
		}
		rest := trimmed[len(marker):]
		if rest == "" || rest[0] == ' ' {
			return strings.TrimSpace(rest)
		}
	}
	return trimmed
}

func extractProductType(utterance string) string {
	for _, raw := range strings.Fields(strings.ToLower(utterance)) {
		token := strings.Trim(raw, tokenCutset)
		if token == "" {
			continue
		}
		if _, ok := productKeywords[token]; ok {
			return token
		}
		if canonical, ok := productAliases[token]; ok {
			return canonical
		}
		stripped := strings.TrimRight(token, "s")
		if _, ok := productKeywords[stripped]; ok {
			return stripped
		}
	}
	return ""
}

func extractLocation(utterance string) string {
	message := strings.ToLower(utterance)
	for _, entry := range locationAliases {
		if strings.Contains(message, entry.alias) {
			return entry.location
		}
	}
	return ""
}
