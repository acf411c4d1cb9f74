package detection

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"nutriscan/internal/services"
)

const geminiPrompt = `You identify packaged food products in photos.
Reply with a single JSON object and nothing else:
{"label": "<brand and product name as printed on the package>", "confidence": <0..1>}
Use an empty label and confidence 0 when no packaged food product is visible.`

// contentGenerator is the subset of genai.GenerativeModel the backend calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiConfig selects the Vertex AI project and model.
type GeminiConfig struct {
	Project         string
	Location        string
	Model           string
	CredentialsFile string
}

// Gemini asks a Vertex AI Gemini model to name the product.
type Gemini struct {
	model  contentGenerator
	client *genai.Client
}

// NewGemini creates the Vertex AI client. Close releases it.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.Project) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "detection", "gemini", "detection.gemini_project is required", nil)
	}
	opts := []option.ClientOption{}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := genai.NewClient(ctx, cfg.Project, cfg.Location, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "detection", "gemini", "create vertex ai client", err)
	}
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	return &Gemini{model: model, client: client}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) Classify(ctx context.Context, image []byte, minConfidence float64) ([]Detection, error) {
	blob := genai.Blob{MIMEType: http.DetectContentType(image), Data: image}
	resp, err := g.model.GenerateContent(ctx, genai.Text(geminiPrompt), blob)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "detection", "gemini generate", "", err)
	}
	text, err := firstText(resp)
	if err != nil {
		return nil, err
	}
	var answer Detection
	if err := decodeModelJSON(text, &answer); err != nil {
		return nil, services.Wrap(services.ErrDecode, "detection", "gemini parse", "", err)
	}
	answer.Label = strings.TrimSpace(answer.Label)
	if answer.Label == "" || answer.Confidence < minConfidence {
		return nil, nil
	}
	return []Detection{answer}, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", services.Wrap(services.ErrRemote, "detection", "gemini generate", "no candidates returned", nil)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", services.Wrap(services.ErrRemote, "detection", "gemini generate", "empty candidate", nil)
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", services.Wrap(services.ErrRemote, "detection", "gemini generate",
			fmt.Sprintf("no text in response (finish_reason=%v)", candidate.FinishReason), nil)
	}
	return sb.String(), nil
}
