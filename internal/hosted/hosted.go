// Package hosted talks to a plant classification model served over HTTP.
// The image is posted as multipart form data in the "image" field and the
// service answers with a ranked list of labels and confidences.
package hosted

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/lehigh-university-libraries/plantcare/internal/models"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

const maxResponseBytes = 1 << 20

// Hosted is a classifier for an HTTP classification endpoint
type Hosted struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New returns a hosted classifier posting to endpoint. apiKey is sent as a
// bearer token when set.
func New(endpoint, apiKey string) *Hosted {
	return &Hosted{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

// Name returns the provider name
func (h *Hosted) Name() string { return "hosted" }

// Classify posts the image and parses the ranked predictions
func (h *Hosted) Classify(ctx context.Context, img providers.Image, config providers.Config) ([]models.Prediction, error) {
	if h.endpoint == "" {
		return nil, fmt.Errorf("CLASSIFIER_URL environment variable not set")
	}

	body, contentType, err := buildMultipart(img, config)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, truncate(string(data), 256))
	}

	return providers.ParsePredictions(string(data))
}

func buildMultipart(img providers.Image, config providers.Config) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = "upload"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if img.MIMEType != "" {
		header.Set("Content-Type", img.MIMEType)
	}

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write image part: %w", err)
	}

	if config.TopK > 0 {
		if err := w.WriteField("top_k", strconv.Itoa(config.TopK)); err != nil {
			return nil, "", fmt.Errorf("failed to write top_k field: %w", err)
		}
	}
	if config.Model != "" {
		if err := w.WriteField("model", config.Model); err != nil {
			return nil, "", fmt.Errorf("failed to write model field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
