package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

var (
	ErrEmptyResponse = errors.New("openai: no response")
	ErrMissingToken  = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
)

type LLM struct {
	Client  openai.Client
	Options *Options
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM using the official OpenAI SDK.
// The same client serves any OpenAI-compatible endpoint; pass a base URL
// and provider type to target Perplexity.
func New(opts ...Option) (*LLM, error) {
	options := NewOptions(opts...)

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}
	if options.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(options.Token),
		option.WithMaxRetries(2),
	}
	if options.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
	}
	if options.Organization != "" {
		sdkOpts = append(sdkOpts, option.WithOrganization(options.Organization))
	}
	if options.HttpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HttpClient))
	}

	return &LLM{
		Client:  openai.NewClient(sdkOpts...),
		Options: options,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.Options.Model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.Options.Provider
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model: o.Options.Model,
	}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs, err := ProcessMessages(messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(opts.Model),
		Messages: chatMsgs,
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.StopWords,
		}
	}
	if rf := opts.ResponseFormat; rf != nil {
		params.ResponseFormat = toResponseFormat(rf)
	}

	if opts.StreamingFunc != nil {
		return generateStreamingContent(ctx, o, params, opts.StreamingFunc)
	}

	result, err := o.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to create chat completion")
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: fmt.Sprint(c.FinishReason),
			GenerationInfo: map[string]any{
				"CompletionTokens": result.Usage.CompletionTokens,
				"PromptTokens":     result.Usage.PromptTokens,
				"TotalTokens":      result.Usage.TotalTokens,
			},
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

func generateStreamingContent(ctx context.Context, o *LLM, params openai.ChatCompletionNewParams, streamingFunc func(context.Context, []byte) error) (*llms.ContentResponse, error) {
	stream := o.Client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var content strings.Builder
	var stopReason string
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			content.WriteString(delta)
			if err := streamingFunc(ctx, []byte(delta)); err != nil {
				return nil, errors.Wrap(err, "openai: streaming function error")
			}
		}
		if fr := chunk.Choices[0].FinishReason; fr != "" {
			stopReason = fr
		}
	}
	if err := stream.Err(); err != nil {
		return nil, errors.Wrap(err, "openai: streaming error")
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    content.String(),
				StopReason: stopReason,
				GenerationInfo: map[string]any{
					"CompletionTokens": acc.Usage.CompletionTokens,
					"PromptTokens":     acc.Usage.PromptTokens,
					"TotalTokens":      acc.Usage.TotalTokens,
				},
			},
		},
	}, nil
}

// ProcessMessages converts generic messages to SDK message parameter unions.
func ProcessMessages(messages []llms.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	chatMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		text := msg.Text()
		switch msg.Role {
		case llms.RoleSystem:
			chatMsgs = append(chatMsgs, openai.SystemMessage(text))
		case llms.RoleHuman:
			chatMsgs = append(chatMsgs, openai.UserMessage(text))
		case llms.RoleAI:
			chatMsgs = append(chatMsgs, openai.AssistantMessage(text))
		default:
			return nil, errors.Errorf("openai: role %v not supported", msg.Role)
		}
	}
	return chatMsgs, nil
}

func toResponseFormat(rf *llms.ResponseFormat) openai.ChatCompletionNewParamsResponseFormatUnion {
	if rf.Type == "json_object" {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   rf.Name,
				Schema: rf.Schema,
				Strict: openai.Bool(rf.Strict),
			},
		},
	}
}
