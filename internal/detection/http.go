package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nutriscan/internal/services"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClassifier posts images to an inference sidecar.
//
//	POST {base}/predict  multipart: image=<bytes>, conf=<threshold>
//	200 {"detections":[{"label":"maggi","confidence":0.91}]}
type HTTPClassifier struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPOption customizes the HTTP backend.
type HTTPOption func(*HTTPClassifier)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClassifier) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewHTTPClassifier targets baseURL. timeout <= 0 uses 30 seconds.
func NewHTTPClassifier(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPClassifier {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	c := &HTTPClassifier{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClassifier) Name() string { return "http" }

type predictResponse struct {
	Detections []Detection `json:"detections"`
	Error      string      `json:"error"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, image []byte, minConfidence float64) ([]Detection, error) {
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "detection", "http classify", "detection url not configured", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(minConfidence, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "detection", "http classify", "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "detection", "http classify", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrRemote, "detection", "http classify",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var decoded predictResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, services.Wrap(services.ErrDecode, "detection", "http classify", "parse response", err)
	}
	if decoded.Error != "" {
		return nil, services.Wrap(services.ErrRemote, "detection", "http classify", decoded.Error, nil)
	}
	return decoded.Detections, nil
}

// Ping checks that the sidecar answers at all. Any HTTP response counts.
func (c *HTTPClassifier) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return services.Wrap(services.ErrConfiguration, "detection", "ping", "detection url not configured", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrRemote, "detection", "ping", "", err)
	}
	_ = resp.Body.Close()
	return nil
}
