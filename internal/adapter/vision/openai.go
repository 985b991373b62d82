package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

const odometerPrompt = "Read the odometer number from this bike photo. Return only the number."

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIReader asks a chat completions endpoint to read the odometer.
type OpenAIReader struct {
	httpClient *resty.Client
	model      string
	maxTokens  int
	logger     ports.LoggerPort
}

func NewOpenAIReader(opts Options, logger ports.LoggerPort) *OpenAIReader {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenAIReader{
		httpClient: client,
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		logger:     logger,
	}
}

func (r *OpenAIReader) Detect(ctx context.Context, jpeg []byte) (string, error) {
	request := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: odometerPrompt},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
					}},
				},
			},
		},
		MaxTokens: r.maxTokens,
	}

	var response chatResponse
	var failure apiError
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		r.logger.Error("Vision API call failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", fmt.Errorf("failed to call vision API: %w", err)
	}

	if resp.IsError() {
		r.logger.Error("Vision API returned error", map[string]interface{}{
			"status_code": resp.StatusCode(),
			"message":     failure.Error.Message,
		})
		return "", fmt.Errorf("vision API error: %s (status: %d)", failure.Error.Message, resp.StatusCode())
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("vision API returned no choices")
	}

	r.logger.Debug("Vision API answered", map[string]interface{}{
		"duration_ms": resp.Time().Milliseconds(),
	})

	return response.Choices[0].Message.Content, nil
}
