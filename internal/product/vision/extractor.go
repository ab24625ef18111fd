// Package vision asks a multimodal language model to describe a product photo.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/catalog/internal/product/metrics"
	"github.com/abgdnv/catalog/internal/product/model"
)

const prompt = "Analiza la imagen, dame la respuesta en un json que tenga los datos referencia, nombre, marca, " +
	"descripcion, precio, numeroDisponible y departamento. Usa una referencia con la marca y algo corto. " +
	"Precio y numero disponible son enteros, en caso de no poder saberlo pon 1"

const maxReplyBytes = 4 << 20

var (
	ErrNotConfigured = errors.New("language model is not configured")
	ErrEmptyImage    = errors.New("image is empty")
	ErrUpstream      = errors.New("language model request failed")
)

type Config struct {
	URL    string
	APIKey string
	Model  string
}

// Extractor turns a product image into product fields through an
// OpenAI-compatible chat completion endpoint.
type Extractor struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewExtractor(cfg Config, httpClient *http.Client, logger *slog.Logger) *Extractor {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Extractor{cfg: cfg, httpClient: httpClient, logger: logger.With("component", "vision")}
}

// Enabled reports whether a model endpoint is configured.
func (e *Extractor) Enabled() bool {
	return e.cfg.URL != ""
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Stream         bool          `json:"stream"`
	EnableCatching bool          `json:"enable_catching"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends the image to the model and decodes the product it describes.
func (e *Extractor) Extract(ctx context.Context, contentType string, image []byte) (p model.Product, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		metrics.VisionRequests.WithLabelValues(outcome).Inc()
	}()

	if !e.Enabled() {
		return model.Product{}, ErrNotConfigured
	}
	if len(image) == 0 {
		return model.Product{}, ErrEmptyImage
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	reqBody := chatRequest{
		Model: e.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "image_url", ImageURL: &imageURL{
					URL:    "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image),
					Detail: "auto",
				}},
				{Type: "text", Text: prompt},
			},
		}},
		EnableCatching: true,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return model.Product{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return model.Product{}, fmt.Errorf("%w: reading reply: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Product{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return model.Product{}, fmt.Errorf("%w: decoding reply: %v", ErrUpstream, err)
	}
	if len(chat.Choices) == 0 {
		return model.Product{}, fmt.Errorf("%w: reply has no choices", ErrUpstream)
	}
	text := chat.Choices[0].Message.Content
	e.logger.DebugContext(ctx, "Model reply received", "reply", text)

	fragment, err := ExtractJSONFragment(text)
	if err != nil {
		return model.Product{}, err
	}
	return DecodeProduct(fragment)
}
