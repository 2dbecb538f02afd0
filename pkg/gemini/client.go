package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the generativelanguage REST API directly.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

func NewClientWithConfig(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ChatRequest is one turn of a tool-assisted conversation.
type ChatRequest struct {
	Model             string
	SystemInstruction string
	Tools             []Tool
	History           []*Content
	Parts             []*Part
}

// ChatResult carries the reply text plus any grounding citations the tool
// call produced. Citations may be empty even for grounded requests.
type ChatResult struct {
	Text      string
	Citations []Citation
}

// Chat sends the history plus the new turn and returns the model reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	contents := make([]*Content, 0, len(req.History)+1)
	contents = append(contents, req.History...)
	contents = append(contents, &Content{
		Role:  "user",
		Parts: req.Parts,
	})

	payload := generateRequest{
		Contents: contents,
		Tools:    req.Tools,
	}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &Content{
			Parts: []*Part{{Text: req.SystemInstruction}},
		}
	}

	res, err := c.generate(ctx, req.Model, &payload)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{}
	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, part := range res.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		result.Text = sb.String()

		if gm := res.Candidates[0].GroundingMetadata; gm != nil {
			for _, chunk := range gm.GroundingChunks {
				if chunk.Web != nil && chunk.Web.URI != "" {
					result.Citations = append(result.Citations, Citation{
						Title: chunk.Web.Title,
						Uri:   chunk.Web.URI,
					})
				}
			}
		}
	}

	return result, nil
}

// GenerateImage asks the image model for an inline image and returns it as a
// data URI. An empty string with nil error means the model produced no image.
func (c *Client) GenerateImage(ctx context.Context, model, prompt, aspectRatio string) (string, error) {
	payload := generateRequest{
		Contents: []*Content{
			{Parts: []*Part{{Text: prompt}}},
		},
		GenerationConfig: &GenerationConfig{
			ImageConfig: &ImageConfig{AspectRatio: aspectRatio},
		},
	}

	res, err := c.generate(ctx, model, &payload)
	if err != nil {
		return "", err
	}

	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return "data:image/png;base64," + part.InlineData.Data, nil
			}
		}
	}
	return "", nil
}

func (c *Client) generate(ctx context.Context, model string, payload *generateRequest) (*generateResponse, error) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var parsed generateResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	return &parsed, nil
}
