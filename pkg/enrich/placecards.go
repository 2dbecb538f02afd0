package enrich

import (
	"encoding/json"
	"strings"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/pkg/classify"
	"ai-assistant-be/pkg/gemini"
)

// MaxCardsPerEnrichment caps how many place cards one enrichment event may
// attach, whether the model emitted them or the fallback synthesized them.
const MaxCardsPerEnrichment = 3

const fallbackCardTitle = "מיקום במפה"

// SynthesizeCards builds place cards from grounding citations when the model
// did not emit a sentinel block itself. Citations are deduplicated by URI,
// classified by title keywords, and capped at MaxCardsPerEnrichment.
func SynthesizeCards(citations []gemini.Citation, categories *classify.RuleSet) []entity.PlaceCard {
	seen := make(map[string]bool, len(citations))
	var cards []entity.PlaceCard

	for _, c := range citations {
		if c.Uri == "" || seen[c.Uri] {
			continue
		}
		seen[c.Uri] = true

		title := c.Title
		if title == "" {
			title = fallbackCardTitle
		}

		cards = append(cards, entity.PlaceCard{
			Type:        categories.Classify(title),
			Title:       title,
			Uri:         c.Uri,
			Description: constant.MsgDefaultCardDesc,
			Details:     []string{"ניווט", "ביקורות"},
		})
		if len(cards) == MaxCardsPerEnrichment {
			break
		}
	}

	return cards
}

// AppendCards embeds the cards into the reply text between the sentinel
// tokens, preserving the delimiter contract downstream renderers rely on.
func AppendCards(text string, cards []entity.PlaceCard) string {
	if len(cards) == 0 {
		return text
	}
	payload, err := json.Marshal(cards)
	if err != nil {
		return text
	}
	return text + "\n" + constant.PlacesDataOpen + string(payload) + constant.PlacesDataClose
}

// HasCardBlock reports whether the text already contains a sentinel block.
func HasCardBlock(text string) bool {
	return strings.Contains(text, constant.PlacesDataOpen)
}

// ExtractCards locates the sentinel-delimited substring and parses the cards
// out of it. The surrounding prose is returned with the block removed.
func ExtractCards(text string) (prose string, cards []entity.PlaceCard, ok bool) {
	start := strings.Index(text, constant.PlacesDataOpen)
	if start < 0 {
		return text, nil, false
	}
	rest := text[start+len(constant.PlacesDataOpen):]
	end := strings.Index(rest, constant.PlacesDataClose)
	if end < 0 {
		return text, nil, false
	}

	if err := json.Unmarshal([]byte(rest[:end]), &cards); err != nil {
		return text, nil, false
	}

	prose = strings.TrimSpace(text[:start] + rest[end+len(constant.PlacesDataClose):])
	return prose, cards, true
}
