package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/agent-api/core"
	"github.com/agent-api/core/agent"
	"github.com/agent-api/core/agent/bootstrap"
	"github.com/agent-api/ollama"
	"github.com/go-logr/logr"
)

// OllamaCapability implements Capability against a local Ollama instance,
// for offline runs and development without API credentials.
type OllamaCapability struct {
	agent *agent.Agent
}

// NewOllamaCapability wires an agent against a local Ollama server.
func NewOllamaCapability(ctx context.Context, logger *slog.Logger, modelID string) (*OllamaCapability, error) {
	logrLogger := logr.FromSlogHandler(logger.Handler())

	opts := &ollama.ProviderOpts{
		Logger:  &logrLogger,
		BaseURL: "http://localhost",
		Port:    11434,
	}
	provider := ollama.NewProvider(opts)

	model := &core.Model{ID: modelID}
	provider.UseModel(ctx, model)

	a, err := agent.NewAgent(
		bootstrap.WithProvider(provider),
		bootstrap.WithLogger(&logrLogger),
		bootstrap.WithSystemPrompt("You are a short-form video analysis assistant. Always answer with a single JSON object."),
	)
	if err != nil {
		return nil, err
	}

	return &OllamaCapability{agent: a}, nil
}

// SendPrompt runs one prompt through the local agent.
func (o *OllamaCapability) SendPrompt(ctx context.Context, prompt string, payload any, timeout time.Duration) PromptResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	contextJSON, err := json.Marshal(payload)
	if err != nil {
		return PromptResult{Error: fmt.Sprintf("marshal context: %v", err)}
	}

	response, err := o.agent.Run(ctx, agent.WithInput(prompt+"\n\nContext:\n"+string(contextJSON)))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return PromptResult{Error: "timeout"}
		}
		return PromptResult{Error: fmt.Sprintf("agent run: %v", err)}
	}
	if len(response.Messages) == 0 {
		return PromptResult{Error: "no response messages received from model"}
	}

	return PromptResult{
		Success:      true,
		ResponseText: response.Messages[len(response.Messages)-1].Content,
	}
}
