package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"staybot/models"
	"staybot/utils"
)

const openAIService = "openai"

// OpenAIClient completes turns with the chat completions API using
// function declarations.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. An empty baseURL uses the public API.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*Reply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, m := range req.Messages {
		messages = append(messages, toOpenAIMessage(m))
	}

	functions := make([]openai.FunctionDefinition, 0, len(req.Functions))
	for _, f := range req.Functions {
		functions = append(functions, openai.FunctionDefinition{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  f.Parameters,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		Functions: functions,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: completion returned no choices")
	}

	msg := resp.Choices[0].Message
	if msg.FunctionCall != nil {
		args := json.RawMessage(msg.FunctionCall.Arguments)
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		return &Reply{
			Content: msg.Content,
			FunctionCall: &FunctionCall{
				Name:      msg.FunctionCall.Name,
				Arguments: args,
			},
		}, nil
	}
	return &Reply{Content: msg.Content}, nil
}

func toOpenAIMessage(m models.Message) openai.ChatCompletionMessage {
	switch m.Role {
	case models.RoleFunction:
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleFunction,
			Name:    m.Name,
			Content: m.Content,
		}
	case models.RoleAssistant:
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
	default:
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content}
	}
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return utils.NewDownstreamResponseError(openAIService, apiErr.HTTPStatusCode, map[string]any{
			"message": apiErr.Message,
			"type":    apiErr.Type,
			"code":    apiErr.Code,
		})
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		var payload any = string(reqErr.Body)
		var decoded any
		if json.Unmarshal(reqErr.Body, &decoded) == nil {
			payload = decoded
		}
		return utils.NewDownstreamResponseError(openAIService, reqErr.HTTPStatusCode, payload)
	}

	if utils.IsNetworkError(err) {
		return &utils.DownstreamUnavailableError{Service: openAIService, Err: err}
	}
	return fmt.Errorf("openai completion: %w", err)
}
