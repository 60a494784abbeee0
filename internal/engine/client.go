package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"planner/internal/config"
	"planner/internal/domain/models"
	"planner/internal/domain/services"
	"planner/internal/tenant"
)

// Client is a conversation engine backed by an OpenAI-compatible
// chat-completions endpoint. It exposes the project document to the model
// as two tools, read_document and write_document, both resolved through
// the tenant binding on the request context - the model never sees a
// project id.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	personas *PersonaRegistry
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a unified-API conversation engine.
func NewClient(baseURL, apiKey, model string, personas *PersonaRegistry, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		model:    model,
		personas: personas,
		http:     &http.Client{}, // per-call deadlines come from ctx
		logger:   logger,
	}
}

var documentTools = []Tool{
	{
		Type: "function",
		Function: Function{
			Name:        "read_document",
			Description: "Read the current project planning document.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	},
	{
		Type: "function",
		Function: Function{
			Name:        "write_document",
			Description: "Replace the entire project planning document with new content.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"content": map[string]any{
						"type":        "string",
						"description": "The full replacement document in Markdown.",
					},
				},
				"required": []string{"content"},
			},
		},
	},
}

// Respond runs one conversation turn, executing document tool calls until
// the model produces a plain reply or the round limit is hit.
func (c *Client) Respond(ctx context.Context, req *services.EngineRequest) (*services.EngineReply, error) {
	messages := []ChatMessage{{Role: "system", Content: c.personas.SystemPrompt()}}
	for _, msg := range req.History {
		messages = append(messages, ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, ChatMessage{Role: string(models.RoleUser), Content: req.Message})

	for round := 0; round < config.EngineMaxToolRounds; round++ {
		choice, err := c.complete(ctx, messages)
		if err != nil {
			return nil, err
		}

		if len(choice.Message.ToolCalls) == 0 {
			return &services.EngineReply{Response: choice.Message.Content}, nil
		}

		messages = append(messages, choice.Message)
		for _, call := range choice.Message.ToolCalls {
			result := c.executeTool(ctx, call)
			messages = append(messages, ChatMessage{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return nil, fmt.Errorf("engine exceeded %d tool rounds", config.EngineMaxToolRounds)
}

func (c *Client) complete(ctx context.Context, messages []ChatMessage) (*Choice, error) {
	payload, err := json.Marshal(&UnifiedRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    documentTools,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncate(string(body), 500))
	}

	var unified UnifiedResponse
	if err := json.Unmarshal(body, &unified); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(unified.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	return &unified.Choices[0], nil
}

// executeTool runs one document tool call against the tenant binding.
// Tool failures are reported back to the model as text rather than
// aborting the turn; the model can recover or apologize.
func (c *Client) executeTool(ctx context.Context, call ToolCall) string {
	switch call.Function.Name {
	case "read_document":
		content, err := tenant.ReadDocument(ctx)
		if err != nil {
			c.logger.Error("read_document tool failed", "error", err)
			return "document could not be read"
		}
		if content == "" {
			return "the document is empty"
		}
		return content

	case "write_document":
		var args struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "invalid write_document arguments"
		}
		if err := tenant.WriteDocument(ctx, args.Content); err != nil {
			c.logger.Error("write_document tool failed", "error", err)
			return "document could not be updated"
		}
		return "document updated successfully"

	default:
		return fmt.Sprintf("unknown tool %q", call.Function.Name)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
