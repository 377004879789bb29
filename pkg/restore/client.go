package restore

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ritzau/lua-restore/pkg/logging"
)

// Client restores one file's content. Implementations may fail; the
// restorer decides what to do with a failure.
type Client interface {
	Restore(ctx context.Context, path, content string, depModules []string) (string, error)
}

// OpenRouterClient restores decompiled Lua through an OpenAI-compatible
// chat completion API. OpenRouter speaks that protocol, so the stock
// client works with a swapped base URL.
type OpenRouterClient struct {
	client *openai.Client
	model  string
}

// NewOpenRouterClient creates a restoration client for the given API
// endpoint and model.
func NewOpenRouterClient(apiKey, baseURL, model string) *OpenRouterClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	logging.Info("initializing restoration client", "model", model, "baseURL", cfg.BaseURL)
	return &OpenRouterClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Restore sends the decompiled content plus its dependency module names
// to the model and returns the restored Lua source.
func (c *OpenRouterClient) Restore(ctx context.Context, path, content string, depModules []string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: restorationPrompt(path, content, depModules)},
		},
		MaxTokens:   4000,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	code := extractCode(resp.Choices[0].Message.Content)
	if code == "" {
		return "", fmt.Errorf("model reply contained no code")
	}
	return code, nil
}

func restorationPrompt(path, content string, depModules []string) string {
	var deps strings.Builder
	for _, dep := range depModules {
		deps.WriteString("- ")
		deps.WriteString(dep)
		deps.WriteString("\n")
	}

	return fmt.Sprintf(`You are a Lua code restoration expert. Rewrite the following unluac decompiler output as readable Lua source code.

File path: %s
Required modules:
%s
Original content:
`+"```"+`
%s
`+"```"+`

Requirements:
1. Preserve the original logic exactly
2. Use clear variable and function names
3. Add brief comments where intent is unclear
4. Follow standard Lua style
5. Keep the module structure intact

Return only the restored Lua code, no explanation.`, path, deps.String(), content)
}

// extractCode pulls the first fenced code block out of a model reply, or
// returns the whole reply trimmed when there is no fence.
func extractCode(reply string) string {
	reply = strings.TrimSpace(reply)

	start := strings.Index(reply, "```")
	if start == -1 {
		return reply
	}

	// Skip the fence line itself ("```lua" or bare "```")
	rest := reply[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	}

	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
