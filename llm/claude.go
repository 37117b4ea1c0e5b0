package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TumiLabsJN/rumiai-go/logging"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
	maxResponseTokens = 4096
)

// ClaudeClient implements Capability against the Anthropic Messages API.
type ClaudeClient struct {
	apiKey string
	model  string
	client *http.Client
	logger logging.Logger
}

// NewClaudeClient builds a client for the given model.
func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return &ClaudeClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
		logger: logging.WithFields(logging.Fields{
			"component": "claude_client",
			"model":     model,
		}),
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendPrompt sends one prompt with its JSON context payload. Transport
// errors and non-200 statuses come back as failed results, never panics.
func (c *ClaudeClient) SendPrompt(ctx context.Context, prompt string, payload any, timeout time.Duration) PromptResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	contextJSON, err := json.Marshal(payload)
	if err != nil {
		return PromptResult{Error: fmt.Sprintf("marshal context: %v", err)}
	}

	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: maxResponseTokens,
		Messages: []claudeMessage{{
			Role:    "user",
			Content: prompt + "\n\nContext:\n" + string(contextJSON),
		}},
	})
	if err != nil {
		return PromptResult{Error: fmt.Sprintf("marshal request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewReader(body))
	if err != nil {
		return PromptResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return PromptResult{Error: "timeout"}
		}
		return PromptResult{Error: fmt.Sprintf("transport: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return PromptResult{Error: fmt.Sprintf("read response: %v", err)}
	}

	var parsed claudeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return PromptResult{Error: fmt.Sprintf("decode response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("api status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s", parsed.Error.Type, parsed.Error.Message)
		}
		c.logger.Warn("claude call failed", logging.Fields{"status": resp.StatusCode})
		return PromptResult{Error: msg}
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	c.logger.Debug("claude call complete", logging.Fields{
		"elapsed":       time.Since(started).Seconds(),
		"output_tokens": parsed.Usage.OutputTokens,
	})

	return PromptResult{
		Success:      true,
		ResponseText: text,
		Usage: &Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		},
	}
}
