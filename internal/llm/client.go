package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/metrics"
)

// LLMClient produces a single text completion for a prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyResponse = errors.New("model returned no text")

const (
	maxTokens   = 1024
	callTimeout = 90 * time.Second
)

// systemPrompt is sent with every completion. The stewardship helpers all
// parse a JSON object out of the reply.
const systemPrompt = "You assist data stewards who maintain a payor master data registry. " +
	"Answer with a single JSON object and no surrounding prose unless the prompt asks otherwise."

// observed bounds each call with a timeout and records its outcome.
type observed struct {
	provider string
	next     LLMClient
	log      *logger.Logger
}

func (o *observed) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	started := time.Now()
	text, err := o.next.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	metrics.ObserveLLM(o.provider, started, err)
	if err != nil {
		o.log.Warn("completion failed", "provider", o.provider, "elapsed", time.Since(started), "error", err)
		return "", err
	}
	o.log.Debug("completion finished", "provider", o.provider, "elapsed", time.Since(started), "chars", len(text))
	return text, nil
}
