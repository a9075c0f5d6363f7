// File path: internal/improver/improver.go
package improver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/legacyforge/migrator/internal/common"
)

// ErrEmptyCompletion is returned when the model responds with no usable text.
var ErrEmptyCompletion = errors.New("improver: empty completion")

// Provider refines a generated source unit. Refinement is advisory: callers
// keep the unrefined source whenever Refine fails.
type Provider interface {
	Name() string
	Refine(ctx context.Context, className, source string) (string, error)
}

// NewFromEnv selects the provider: OpenAI when OPENAI_API_KEY is set, the
// pass-through provider otherwise.
func NewFromEnv(model string, timeout time.Duration) Provider {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		common.Logger().Info("improver: no API key configured, refinement disabled")
		return noopProvider{}
	}
	return &openAIProvider{
		client:  openai.NewClient(option.WithAPIKey(key)),
		model:   model,
		timeout: timeout,
	}
}

type noopProvider struct{}

func (noopProvider) Name() string { return "noop" }

func (noopProvider) Refine(_ context.Context, _, source string) (string, error) {
	return source, nil
}

type openAIProvider struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func (p *openAIProvider) Name() string { return "openai" }

const refineSystemPrompt = "You are a senior Java engineer reviewing code " +
	"machine-translated from COBOL. Improve naming, structure, and javadoc " +
	"without changing behavior. Reply with the complete Java source file only."

// Refine asks the model for an improved rendition of source. The reply is
// stripped of markdown code fences before it is returned.
func (p *openAIProvider) Refine(ctx context.Context, className, source string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(refineSystemPrompt),
			openai.UserMessage(fmt.Sprintf("Class %s:\n\n%s", className, source)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion for %s: %w", className, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	refined := stripCodeFences(resp.Choices[0].Message.Content)
	if strings.TrimSpace(refined) == "" {
		return "", ErrEmptyCompletion
	}
	return refined, nil
}

// stripCodeFences unwraps a ```java ... ``` block when the whole reply is one.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
