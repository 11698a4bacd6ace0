package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	systemPrompt = "You are a scheduling assistant. Reply with strict JSON only: " +
		"an object {\"candidates\": [...]} where each candidate has title, start, end " +
		"(RFC3339), and optionally timezone, attendees, location, description. " +
		"Use the given timezone unless the instruction names another."

	userPromptTemplate = "Instruction:\n%s\n\nNow = %s\nTimezone = %s\nReturn ONLY valid JSON."
)

// ErrUnavailable marks transport or authentication failures talking to the
// LLM provider, as opposed to malformed output from a reachable one.
var ErrUnavailable = fmt.Errorf("llm provider is unavailable")

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
// OpenRouter works through the same wire format with a different host.
type OpenAIConfig struct {
	Host        string
	APIKey      string
	Model       string
	Temperature float64
}

// OpenAIGenerator calls an OpenAI-compatible chat completions API and
// parses the model's reply into candidate payloads.
type OpenAIGenerator struct {
	cfg    OpenAIConfig
	client *http.Client
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) SuggestEvents(ctx context.Context, instruction string, now time.Time, timezone string) ([]json.RawMessage, error) {
	reqBody := chatRequest{
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, instruction, now.Format(time.RFC3339), timezone)},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Host+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Errorf("chat completions request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Errorf("chat completions returned status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, &MalformedOutputError{Raw: string(body), Err: err}
	}
	if len(chat.Choices) == 0 {
		log.Warn("llm returned no choices")
		return nil, nil
	}

	items, err := ParsePayload(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	log.Debugf("received %d candidates from llm", len(items))
	return items, nil
}
