// Package gateway is the boundary to the language model: free-text and
// single-word decision calls for the graph nodes, plus typed structured
// output for the planner.
package gateway

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/encoding"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/metricskey"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/schema"
)

var logger = xlog.NewPackageLogger("github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client", "gateway")

// ErrEmptyResponse is returned when the model keeps producing empty output.
var ErrEmptyResponse = errors.New("gateway: empty model response")

// Gateway is the language-model boundary the graph nodes call. Malformed
// structured output is rejected and re-asked here, not in the graph.
type Gateway interface {
	// Decide asks for a single-word decision and returns it
	// trimmed and upper-cased.
	Decide(ctx context.Context, systemPrompt, prompt string) (string, error)
	// Generate returns the model's free-text reply.
	Generate(ctx context.Context, systemPrompt, prompt string, opts ...llms.CallOption) (string, error)
}

type Option func(*ModelGateway)

// WithMaxAttempts sets how many times a call is attempted when the model
// returns empty or malformed output.
func WithMaxAttempts(n int) Option {
	return func(g *ModelGateway) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// ModelGateway implements Gateway over an llms.Model.
type ModelGateway struct {
	model       llms.Model
	maxAttempts int
}

var _ Gateway = (*ModelGateway)(nil)

// New creates a gateway over the given model.
func New(model llms.Model, opts ...Option) *ModelGateway {
	g := &ModelGateway{
		model:       model,
		maxAttempts: 2,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide implements Gateway.
func (g *ModelGateway) Decide(ctx context.Context, systemPrompt, prompt string) (string, error) {
	text, err := g.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(text)), nil
}

// Generate implements Gateway. Empty responses are retried up to the
// attempt budget. A response-format option is dropped when the provider
// does not support JSON schema enforcement; those callers fall back to
// the format instructions carried in the prompt.
func (g *ModelGateway) Generate(ctx context.Context, systemPrompt, prompt string, opts ...llms.CallOption) (string, error) {
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, systemPrompt),
		llms.MessageFromTextParts(llms.RoleHuman, prompt),
	}

	if !g.model.GetProviderType().Supports(llms.CapabilityJSONSchema) {
		// appended last so it runs after any caller-set format
		opts = append(opts, func(o *llms.CallOptions) {
			o.ResponseFormat = nil
		})
	}

	modelName := g.model.GetName()
	started := time.Now()
	defer metricskey.PerfGatewayCall.MeasureSince(started, modelName)

	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		resp, err := g.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			metricskey.StatsGatewayCallsFailed.IncrCounter(1, modelName)
			return "", errors.WithMessage(err, "gateway: model call failed")
		}

		if text := responseText(resp); text != "" {
			metricskey.StatsGatewayCallsSucceeded.IncrCounter(1, modelName)
			return text, nil
		}

		lastErr = ErrEmptyResponse
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "empty_response",
			"model", modelName,
			"attempt", attempt+1)
	}

	metricskey.StatsGatewayCallsFailed.IncrCounter(1, modelName)
	return "", lastErr
}

func responseText(resp *llms.ContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, choice := range resp.Choices {
		if choice != nil && choice.Content != "" {
			return choice.Content
		}
	}
	return ""
}

// GenerateTyped asks for output conforming to T's JSON schema, parses it
// leniently and validates it. A parse or validation failure is fed back to
// the model once before giving up.
func GenerateTyped[T any](ctx context.Context, g Gateway, systemPrompt, prompt string) (*T, error) {
	var seed T
	enc, err := encoding.NewEncoder(seed)
	if err != nil {
		return nil, err
	}

	// Providers with native JSON schema enforcement also get the contract
	// as a strict response format; the gateway strips it for the rest.
	format, err := schema.NewResponseFormat(reflect.TypeOf(seed), true)
	if err != nil {
		return nil, err
	}

	ask := prompt + enc.GetFormatInstructions()
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, err := g.Generate(ctx, systemPrompt, ask, llms.WithResponseFormat(format))
		if err != nil {
			return nil, err
		}

		out := new(T)
		if err := enc.Unmarshal([]byte(text), out); err == nil {
			if err := enc.Validate(out); err == nil {
				return out, nil
			} else {
				lastErr = err
			}
		} else {
			lastErr = err
		}

		metricskey.StatsGatewayParseErrors.IncrCounter(1, "typed")
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "parse_failed",
			"attempt", attempt+1,
			"err", lastErr.Error())
		ask = prompt + enc.GetFormatInstructions() +
			"\nThe previous reply could not be parsed: " + lastErr.Error() +
			"\nReply again with only the JSON object."
	}
	return nil, errors.WithMessage(lastErr, "gateway: structured output failed")
}
