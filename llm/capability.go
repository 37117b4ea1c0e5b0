// Package llm sequences the seven structured analyses against an external
// LLM capability. The capability owns transport-level retries; the
// orchestrator owns ordering, spacing, timeouts and per-call isolation.
package llm

import (
	"context"
	"time"
)

// Usage reports token accounting when the capability provides it.
type Usage struct {
	InputTokens  int     `json:"input_tokens,omitempty"`
	OutputTokens int     `json:"output_tokens,omitempty"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
}

// PromptResult is the capability's verdict on one prompt.
type PromptResult struct {
	Success      bool   `json:"success"`
	ResponseText string `json:"response_text"`
	Usage        *Usage `json:"usage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Capability is the single operation the core needs from an LLM transport.
// Implementations must honor the context deadline; the core never retries.
type Capability interface {
	SendPrompt(ctx context.Context, prompt string, payload any, timeout time.Duration) PromptResult
}
