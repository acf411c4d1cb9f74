package detection

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"

	"nutriscan/internal/config"
	"nutriscan/internal/services"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}},
	}}}
}

func TestGeminiClassify(t *testing.T) {
	fake := &fakeGenerator{resp: textResponse(`{"label":"Maggi 2-Minute Noodles","confidence":0.83}`)}
	g := &Gemini{model: fake}

	got, err := g.Classify(context.Background(), []byte("\xff\xd8\xff\xe0jpeg"), MinConfidence)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Maggi 2-Minute Noodles" {
		t.Fatalf("unexpected detections %+v", got)
	}
	blob, ok := fake.parts[1].(genai.Blob)
	if !ok || blob.MIMEType != "image/jpeg" {
		t.Fatalf("expected jpeg blob part, got %#v", fake.parts[1])
	}
}

func TestGeminiLowConfidenceIsEmpty(t *testing.T) {
	g := &Gemini{model: &fakeGenerator{resp: textResponse(`{"label":"", "confidence":0}`)}}
	got, err := g.Classify(context.Background(), []byte("img"), MinConfidence)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no detections, got %+v err=%v", got, err)
	}
}

func TestGeminiErrors(t *testing.T) {
	g := &Gemini{model: &fakeGenerator{err: errors.New("quota")}}
	if _, err := g.Classify(context.Background(), []byte("img"), MinConfidence); !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	g = &Gemini{model: &fakeGenerator{resp: &genai.GenerateContentResponse{}}}
	if _, err := g.Classify(context.Background(), []byte("img"), MinConfidence); !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected remote error for empty response, got %v", err)
	}
	g = &Gemini{model: &fakeGenerator{resp: textResponse("I see noodles")}}
	if _, err := g.Classify(context.Background(), []byte("img"), MinConfidence); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	c, err := New(context.Background(), &cfg)
	if err != nil || c.Name() != "none" {
		t.Fatalf("expected disabled backend, got %v err=%v", c, err)
	}

	cfg.Detection.Backend = config.DetectorHTTP
	cfg.Detection.URL = "http://127.0.0.1:9"
	c, err = New(context.Background(), &cfg)
	if err != nil || c.Name() != "http" {
		t.Fatalf("expected http backend, got %v err=%v", c, err)
	}

	cfg.Detection.Backend = "tensorflow"
	if _, err := New(context.Background(), &cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	cfg.Detection.Backend = config.DetectorGemini
	cfg.Detection.GeminiProject = ""
	if _, err := New(context.Background(), &cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing project, got %v", err)
	}
}
