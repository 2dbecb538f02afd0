package classify

import "ai-assistant-be/internal/constant"

// ImageIntent detects prompts asking for image generation. Only consulted
// when the message carries no attachments.
func ImageIntent() *RuleSet {
	return NewRuleSet("",
		Rule{Category: "image", Keywords: []string{
			"צייר", "צור תמונה", "תמונה של",
			"draw", "generate image",
		}},
	)
}

// MapsIntent detects geographic / travel / transit requests that should be
// served by the maps tool on the lighter model instead of generic search.
func MapsIntent() *RuleSet {
	return NewRuleSet("",
		Rule{Category: "maps", Keywords: []string{
			"איפה", "מסעדה", "טיול", "נווט", "מפה", "מיקום", "קרוב ל",
			"מלון", "בית מלון", "אוטובוס", "קו", "תחנה", "לו\"ז", "מתי מגיע",
			"רכבת", "תחבורה", "טיסה", "טיסות",
			"where", "map", "trip", "route", "navigate", "location",
			"restaurant", "store", "shop", "hotel", "bus", "station",
			"schedule", "stop", "flight", "plan", "days",
		}},
	)
}

// PlaceCategories classifies a grounding citation title into a card category.
// Rule order matters: the first match wins, so the more specific hotel and
// restaurant rules sit ahead of the broad transport and attraction ones.
// Unmatched titles become "other".
func PlaceCategories() *RuleSet {
	return NewRuleSet(constant.PlaceTypeOther,
		Rule{Category: constant.PlaceTypeHotel, Keywords: []string{
			"מלון", "hotel",
		}},
		Rule{Category: constant.PlaceTypeRestaurant, Keywords: []string{
			"מסעדה", "restaurant", "פיצה", "קפה",
		}},
		Rule{Category: constant.PlaceTypeFlight, Keywords: []string{
			"נמל תעופה", "airport", "טיסה",
		}},
		Rule{Category: constant.PlaceTypeTransport, Keywords: []string{
			"קו", "תחנה", "bus", "רכבת",
		}},
		Rule{Category: constant.PlaceTypeNature, Keywords: []string{
			"פארק", "שמורה", "גן", "הר",
		}},
		Rule{Category: constant.PlaceTypeShopping, Keywords: []string{
			"קניון", "שוק", "חנות",
		}},
		Rule{Category: constant.PlaceTypeAttraction, Keywords: []string{
			"מוזיאון", "לונה פארק", "אטרקציה",
		}},
	)
}
