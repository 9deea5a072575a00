package bedrock

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/cockroachdb/errors"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

const defaultModel = "anthropic.claude-3-5-sonnet-20241022-v2:0"

// LLM is a Bedrock LLM implementation.
// Only Anthropic models on Bedrock are supported.
type LLM struct {
	modelID string
	client  *bedrockruntime.Client
}

var _ llms.Model = (*LLM)(nil)

type options struct {
	modelID string
	client  *bedrockruntime.Client
}

type Option func(*options)

// WithModel sets the Bedrock model ID or inference profile to invoke.
func WithModel(modelID string) Option {
	return func(o *options) {
		o.modelID = modelID
	}
}

// WithClient sets a pre-configured Bedrock runtime client.
// If not set, the client is built from the default AWS config chain.
func WithClient(client *bedrockruntime.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// New creates a new Bedrock LLM implementation.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		modelID: defaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.Wrap(err, "bedrock: failed to load AWS config")
		}
		o.client = bedrockruntime.NewFromConfig(cfg)
	}

	if getProvider(o.modelID) != "anthropic" {
		return nil, errors.Newf("bedrock: unsupported provider for model %q", o.modelID)
	}

	return &LLM{
		modelID: o.modelID,
		client:  o.client,
	}, nil
}

// GetName implements the Model interface.
func (l *LLM) GetName() string {
	return l.modelID
}

// GetProviderType implements the Model interface.
func (l *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderBedrock
}

// GenerateContent implements llms.Model.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model: l.modelID,
	}
	for _, opt := range options {
		opt(&opts)
	}

	return createAnthropicCompletion(ctx, l.client, opts.Model, messages, opts)
}

// getProvider extracts the provider from a model ID or inference profile,
// e.g. "us.anthropic.claude-3-5-sonnet-20241022-v2:0" or
// "anthropic.claude-3-sonnet-20240229-v1:0".
func getProvider(modelID string) string {
	parts := strings.Split(modelID, ".")
	if len(parts) >= 2 {
		// A two-letter lowercase first part is a region prefix.
		if len(parts[0]) == 2 && strings.ToLower(parts[0]) == parts[0] {
			return parts[1]
		}
		return parts[0]
	}
	return parts[0]
}

func getMaxTokens(maxTokens, defaultValue int) int {
	if maxTokens <= 0 {
		return defaultValue
	}
	return maxTokens
}
