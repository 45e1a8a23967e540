package intelligence

import (
	"context"
	"encoding/json"

	"staybot/models"
)

// Provider is a hosted language model that completes one turn.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Reply, error)
}

// CompletionRequest carries everything the model sees for one turn.
type CompletionRequest struct {
	System    string
	Messages  []models.Message
	Functions []FunctionSpec
}

// Reply is either plain text or a function invocation.
type Reply struct {
	Content      string
	FunctionCall *FunctionCall
}

// FunctionCall is a model-issued request to run a declared operation.
// Arguments is the JSON object produced by the model.
type FunctionCall struct {
	Name      string
	Arguments json.RawMessage
}

// FunctionSpec declares a callable operation. Parameters is a JSON schema object.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  ParameterSchema
}

// ParameterSchema is the subset of JSON schema the booking functions need.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

type PropertySchema struct {
	Type string `json:"type"`
}
