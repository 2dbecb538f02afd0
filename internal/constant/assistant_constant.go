package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"
)

const (
	// Sentinel tokens wrapping the embedded place-card JSON array inside a
	// model message. Renderers must locate this delimited substring rather
	// than assume the whole message is JSON.
	PlacesDataOpen  = ":::PLACES_DATA:::"
	PlacesDataClose = ":::END_PLACES_DATA:::"
)

// Place card categories. The system instruction and the grounding fallback
// classifier both draw from this set; anything unmatched becomes "other".
const (
	PlaceTypeFlight     = "flight"
	PlaceTypeHotel      = "hotel"
	PlaceTypeRestaurant = "restaurant"
	PlaceTypeNature     = "nature"
	PlaceTypeAttraction = "attraction"
	PlaceTypeShopping   = "shopping"
	PlaceTypeTransport  = "transport"
	PlaceTypeOther      = "other"
)

const (
	// ChatModelDefault handles general questions with search grounding.
	ChatModelDefault = "gemini-3-pro-preview"
	// ChatModelMaps is the lighter variant used for maps-grounded requests.
	// Multi-day itinerary planning works better on the tool-specialized
	// fast model than on the heavier default.
	ChatModelMaps = "gemini-2.5-flash"
	// ImageModel generates inline image data from a text prompt.
	ImageModel = "gemini-2.5-flash-image"
)

// Fixed user-facing strings. The pipeline converts every transport failure
// into one of these; it never surfaces a raw error to the chat.
const (
	MsgImageFailed      = "שגיאה ביצירת תמונה."
	MsgImageEmpty       = "מצטער, לא הצלחתי ליצור את התמונה."
	MsgEmptyReply       = "מצטער, לא הצלחתי לעבד את התשובה."
	MsgConnectionFailed = "שגיאה בחיבור ל-Gemini. אנא נסה שוב."
	MsgDefaultCardDesc  = "לחץ לפרטים נוספים ומסלול הגעה"
)

const DefaultSessionTitle = "שיחה חדשה"

// SessionTitleMaxRunes caps the title derived from the first user message.
const SessionTitleMaxRunes = 30

const AssistantSystemInstructionV1 = `You are Aivan, a smart travel and lifestyle assistant.

CRITICAL RULES FOR TRIP PLANNING & CARDS:
1. If the user asks for a **Trip Plan** (e.g., "5 days in London"):
   - Start with a short enthusiastic text summary of the plan.
   - Then, generate a **Rich JSON Block** containing the key components of the trip.
   - The JSON must include:
     1. The **Flight** to the destination.
     2. A recommended **Hotel**.
     3. Key **Attractions** for each day (or main highlights).
     4. A recommended **Restaurant**.

2. JSON Structure (Must be inside ` + "`:::PLACES_DATA:::`" + ` and ` + "`:::END_PLACES_DATA:::`" + `):
   ` + "`" + `[ { "type": "CATEGORY", "title": "Name or Day X: Activity", "uri": "Map Link", "description": "Short explanation", "details": ["Detail 1"] } ]` + "`" + `

3. CATEGORIES & TYPES (Strict Mapping):
   - **flight**: For flights.
   - **hotel**: For accommodation.
   - **restaurant**: For food/dining.
   - **nature**: For parks, hiking, outdoor views.
   - **attraction**: For museums, theme parks, landmarks.
   - **shopping**: For malls, markets.
   - **transport**: For buses/trains.

4. CONTENT GUIDELINES:
   - In the 'title', if it's a trip plan, you can write "יום 1: מגדל אייפל" (Day 1: Eiffel Tower).
   - In the 'description' field, write a short persuasive explanation.
   - Always try to find real locations using the maps tool.

General:
   - Language: Hebrew.
   - Keep the text outside the JSON concise.
`
