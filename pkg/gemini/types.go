package gemini

// Wire types for the generativelanguage REST API. Only the fields this
// service reads are modelled; the citation metadata in particular is
// optional-everything, so every pointer must be presence-checked.

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64, no data-URI prefix
}

type Content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*Part `json:"parts"`
}

type Tool struct {
	GoogleSearch *GoogleSearch `json:"googleSearch,omitempty"`
	GoogleMaps   *GoogleMaps   `json:"googleMaps,omitempty"`
}

type GoogleSearch struct{}

type GoogleMaps struct{}

type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type GenerationConfig struct {
	ImageConfig *ImageConfig `json:"imageConfig,omitempty"`
}

type generateRequest struct {
	Contents          []*Content        `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []*candidate `json:"candidates"`
	Error      *apiError    `json:"error,omitempty"`
}

type candidate struct {
	Content           *Content           `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []*groundingChunk `json:"groundingChunks,omitempty"`
}

type groundingChunk struct {
	Web *webSource `json:"web,omitempty"`
}

type webSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Citation is one grounding reference extracted from a tool-assisted reply.
type Citation struct {
	Title string
	Uri   string
}
