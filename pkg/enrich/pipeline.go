package enrich

import (
	"context"
	"strings"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/classify"
	"ai-assistant-be/pkg/gemini"
)

const loggerModule = "ENRICH_PIPELINE"

// ModelClient is the slice of the Gemini client the pipeline needs.
type ModelClient interface {
	Chat(ctx context.Context, req gemini.ChatRequest) (*gemini.ChatResult, error)
	GenerateImage(ctx context.Context, model, prompt, aspectRatio string) (string, error)
}

// Pipeline turns one user turn into the assistant reply. It routes image
// requests to the image model, picks the grounding tool and chat model per
// message, and backfills the place-card block from grounding citations when
// the model omits it. Transport failures come back as fixed reply strings,
// never as errors; only context cancellation propagates.
type Pipeline struct {
	client      ModelClient
	log         logger.ILogger
	imageIntent *classify.RuleSet
	mapsIntent  *classify.RuleSet
	categories  *classify.RuleSet
}

func NewPipeline(client ModelClient, log logger.ILogger) *Pipeline {
	return &Pipeline{
		client:      client,
		log:         log,
		imageIntent: classify.ImageIntent(),
		mapsIntent:  classify.MapsIntent(),
		categories:  classify.PlaceCategories(),
	}
}

// Generate produces the model reply for one user turn. History excludes the
// new message; attachments ride along as inline data parts.
func (p *Pipeline) Generate(ctx context.Context, history []entity.Message, text string, attachments []entity.Attachment) (string, error) {
	if len(attachments) == 0 && p.imageIntent.Matches(text) {
		return p.generateImage(ctx, text)
	}
	return p.generateText(ctx, history, text, attachments)
}

func (p *Pipeline) generateImage(ctx context.Context, prompt string) (string, error) {
	dataURI, err := p.client.GenerateImage(ctx, constant.ImageModel, prompt, "1:1")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.Error(loggerModule, "image generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.MsgImageFailed, nil
	}
	if dataURI == "" {
		return constant.MsgImageEmpty, nil
	}
	return dataURI, nil
}

func (p *Pipeline) generateText(ctx context.Context, history []entity.Message, text string, attachments []entity.Attachment) (string, error) {
	model := constant.ChatModelDefault
	tools := []gemini.Tool{{GoogleSearch: &gemini.GoogleSearch{}}}
	if p.mapsIntent.Matches(text) {
		model = constant.ChatModelMaps
		tools = []gemini.Tool{{GoogleMaps: &gemini.GoogleMaps{}}}
	}

	parts := make([]*gemini.Part, 0, len(attachments)+1)
	if text != "" {
		parts = append(parts, &gemini.Part{Text: text})
	}
	for _, a := range attachments {
		parts = append(parts, &gemini.Part{InlineData: &gemini.InlineData{
			MimeType: a.MimeType,
			Data:     stripDataURI(a.Data),
		}})
	}

	result, err := p.client.Chat(ctx, gemini.ChatRequest{
		Model:             model,
		SystemInstruction: constant.AssistantSystemInstructionV1,
		Tools:             tools,
		History:           toContents(history),
		Parts:             parts,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.Error(loggerModule, "chat request failed", map[string]interface{}{
			"model": model,
			"error": err.Error(),
		})
		return constant.MsgConnectionFailed, nil
	}

	reply := result.Text
	if reply == "" {
		return constant.MsgEmptyReply, nil
	}
	if HasCardBlock(reply) {
		return reply, nil
	}
	return AppendCards(reply, SynthesizeCards(result.Citations, p.categories)), nil
}

func toContents(history []entity.Message) []*gemini.Content {
	contents := make([]*gemini.Content, 0, len(history))
	for _, m := range history {
		contents = append(contents, &gemini.Content{
			Role:  m.Role,
			Parts: []*gemini.Part{{Text: m.Text}},
		})
	}
	return contents
}

// stripDataURI drops a "data:<mime>;base64," prefix when present; the API
// wants bare base64.
func stripDataURI(data string) string {
	if idx := strings.Index(data, "base64,"); idx >= 0 && strings.HasPrefix(data, "data:") {
		return data[idx+len("base64,"):]
	}
	return data
}
