package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const productResultLimit = 3

// CatalogueItem is one drinkware entry from the ingested product metadata.
type CatalogueItem struct {
	Name        string   `json:"name"`
	Size        string   `json:"size"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ProductMatch is a ranked retrieval result.
type ProductMatch struct {
	Name  string `json:"name"`
	Size  string `json:"size"`
	Score int    `json:"score"`
}

// Summarizer writes a short natural-language summary of retrieved items.
// *openrouter.Client satisfies this; a nil summarizer disables the feature.
type Summarizer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ProductsTool retrieves drinkware recommendations from a JSON catalogue.
type ProductsTool struct {
	metadataPath string
	summarizer   Summarizer

	loadOnce  sync.Once
	catalogue []CatalogueItem
	loadErr   error
}

func NewProductsTool(metadataPath string, summarizer Summarizer) *ProductsTool {
	return &ProductsTool{metadataPath: metadataPath, summarizer: summarizer}
}

func (p *ProductsTool) Name() string { return "products" }

func (p *ProductsTool) Run(ctx context.Context, req Request) (Response, error) {
	catalogue, err := p.loadCatalogue()
	if err != nil || len(catalogue) == 0 {
		return Response{
			Content: "Product catalogue is not ready yet. Please try again later.",
			Data:    map[string]any{"catalogue_loaded": false},
		}, nil
	}

	query := strings.TrimSpace(req.Slot("product_type"))
	if query == "" {
		query = strings.TrimSpace(req.Query)
	}

	matches := searchCatalogue(query, catalogue)
	if len(matches) == 0 {
		return Response{
			Content: "I couldn't find a matching drinkware item. Could you be more specific?",
			Data:    map[string]any{"results": []ProductMatch{}},
		}, nil
	}

	if len(matches) > productResultLimit {
		matches = matches[:productResultLimit]
	}

	return Response{
		Content: p.summarize(ctx, query, matches),
		Data:    map[string]any{"results": matches},
		Success: true,
	}, nil
}

func (p *ProductsTool) loadCatalogue() ([]CatalogueItem, error) {
	p.loadOnce.Do(func() {
		raw, err := os.ReadFile(p.metadataPath)
		if err != nil {
			p.loadErr = fmt.Errorf("read product catalogue: %w", err)
			return
		}
		if err := json.Unmarshal(raw, &p.catalogue); err != nil {
			p.loadErr = fmt.Errorf("decode product catalogue: %w", err)
		}
	})
	return p.catalogue, p.loadErr
}

// searchCatalogue ranks items by the number of query tokens (longer than two
// characters) found in their name, description, or tags.
func searchCatalogue(query string, catalogue []CatalogueItem) []ProductMatch {
	tokens := make([]string, 0, 4)
	for _, token := range strings.Fields(strings.ToLower(query)) {
		token = strings.Trim(token, tokenPunctuation)
		if len(token) > 2 {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	matches := make([]ProductMatch, 0, len(catalogue))
	for _, item := range catalogue {
		haystack := strings.ToLower(item.Name + " " + item.Description + " " + strings.Join(item.Tags, " "))
		score := 0
		for _, token := range tokens {
			if strings.Contains(haystack, token) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, ProductMatch{Name: item.Name, Size: item.Size, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

const tokenPunctuation = " ,.!?;:\"'()"

func (p *ProductsTool) summarize(ctx context.Context, query string, matches []ProductMatch) string {
	fallback := formatProductSummary(matches)
	if p.summarizer == nil {
		return fallback
	}

	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- %s (%s)", m.Name, sizeOrNA(m.Size)))
	}
	prompt := fmt.Sprintf("Customer asked about: %s\nMatching drinkware:\n%s", query, strings.Join(lines, "\n"))

	summary, err := p.summarizer.Complete(ctx,
		"You are a concise retail assistant. Summarize the matching drinkware for the customer in one or two sentences.",
		prompt,
	)
	if err != nil || summary == "" {
		log.Debug().Err(err).Msg("product summary fell back to deterministic text")
		return fallback
	}
	return summary
}

func formatProductSummary(matches []ProductMatch) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, sizeOrNA(m.Size)))
	}
	return "Top drinkware picks: " + strings.Join(parts, "; ") + "."
}

func sizeOrNA(size string) string {
	if strings.TrimSpace(size) == "" {
		return "N/A"
	}
	return size
}
