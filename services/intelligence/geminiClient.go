package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"staybot/models"
	"staybot/utils"
)

const geminiService = "gemini"

// GeminiClient completes turns with Gemini function calling.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient connects with an API key. Extra options (endpoint, HTTP
// client) are appended after the key.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Complete replays the transcript as chat history and sends the last turn.
// The first function call in the reply wins; otherwise text parts are joined.
func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*Reply, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("gemini: empty transcript")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	if len(req.Functions) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiDeclarations(req.Functions)}}
	}

	history := toGeminiHistory(req.Messages)
	last := history[len(history)-1]

	cs := model.StartChat()
	cs.History = history[:len(history)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: response has no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini: encode function args: %w", err)
			}
			if p.Args == nil {
				args = json.RawMessage("{}")
			}
			return &Reply{FunctionCall: &FunctionCall{Name: p.Name, Arguments: args}}, nil
		case genai.Text:
			sb.WriteString(string(p))
		}
	}
	return &Reply{Content: sb.String()}, nil
}

func toGeminiDeclarations(specs []FunctionSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, f := range specs {
		decl := &genai.FunctionDeclaration{Name: f.Name, Description: f.Description}
		// Gemini rejects object schemas without properties.
		if len(f.Parameters.Properties) > 0 {
			props := make(map[string]*genai.Schema, len(f.Parameters.Properties))
			for name, p := range f.Parameters.Properties {
				props[name] = &genai.Schema{Type: geminiType(p.Type)}
			}
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   f.Parameters.Required,
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

// toGeminiHistory maps the transcript onto user/model contents. Function
// results were shown to the user as the assistant's reply, so they become
// model text. Consecutive turns with the same role are merged.
func toGeminiHistory(msgs []models.Message) []*genai.Content {
	var out []*genai.Content
	for _, m := range msgs {
		role := "user"
		text := m.Content
		switch m.Role {
		case models.RoleAssistant:
			role = "model"
		case models.RoleFunction:
			role = "model"
			text = fmt.Sprintf("%s result: %s", m.Name, m.Content)
		}

		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, genai.Text(text))
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	return out
}

func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		var payload any = gerr.Message
		var decoded any
		if gerr.Body != "" && json.Unmarshal([]byte(gerr.Body), &decoded) == nil {
			payload = decoded
		}
		return utils.NewDownstreamResponseError(geminiService, gerr.Code, payload)
	}

	if utils.IsNetworkError(err) {
		return &utils.DownstreamUnavailableError{Service: geminiService, Err: err}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown && st.Code() != codes.OK {
		if st.Code() == codes.Unavailable {
			return &utils.DownstreamUnavailableError{Service: geminiService, Err: err}
		}
		return utils.NewDownstreamResponseError(geminiService, httpStatusFromCode(st.Code()), st.Message())
	}
	return fmt.Errorf("gemini completion: %w", err)
}

func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return 400
	case codes.Unauthenticated:
		return 401
	case codes.PermissionDenied:
		return 403
	case codes.NotFound:
		return 404
	case codes.ResourceExhausted:
		return 429
	case codes.DeadlineExceeded:
		return 504
	default:
		return 502
	}
}
