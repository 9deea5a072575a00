package bedrock

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/cockroachdb/errors"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

// Ref: https://docs.aws.amazon.com/bedrock/latest/userguide/model-parameters-anthropic-claude-messages.html

type anthropicInputContent struct {
	// One of: "text"
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicInputMessage struct {
	// One of: ["user", "assistant"]
	// For system prompt, use the system field in the input
	Role    string                  `json:"role"`
	Content []anthropicInputContent `json:"content"`
}

type anthropicTextGenerationInput struct {
	AnthropicVersion string                   `json:"anthropic_version"`
	MaxTokens        int                      `json:"max_tokens"`
	System           string                   `json:"system,omitempty"`
	Messages         []*anthropicInputMessage `json:"messages"`
	Temperature      float64                  `json:"temperature,omitempty"`
	StopSequences    []string                 `json:"stop_sequences,omitempty"`
}

type anthropicTextGenerationOutput struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	// One of: ["end_turn", "max_tokens", "stop_sequence"]
	StopReason   string `json:"stop_reason"`
	StopSequence string `json:"stop_sequence"`
	Usage        struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

const (
	AnthropicCompletionReasonEndTurn      = "end_turn"
	AnthropicCompletionReasonMaxTokens    = "max_tokens"
	AnthropicCompletionReasonStopSequence = "stop_sequence"

	AnthropicLatestVersion = "bedrock-2023-05-31"

	AnthropicRoleUser      = "user"
	AnthropicRoleAssistant = "assistant"
)

func createAnthropicCompletion(ctx context.Context,
	client *bedrockruntime.Client,
	modelID string,
	messages []llms.Message,
	options llms.CallOptions,
) (*llms.ContentResponse, error) {
	inputContents, systemPrompt, err := processInputMessagesAnthropic(messages)
	if err != nil {
		return nil, err
	}

	input := anthropicTextGenerationInput{
		AnthropicVersion: AnthropicLatestVersion,
		MaxTokens:        getMaxTokens(options.MaxTokens, 2048),
		System:           systemPrompt,
		Messages:         inputContents,
		Temperature:      options.Temperature,
		StopSequences:    options.StopWords,
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	if options.StreamingFunc != nil {
		modelInput := &bedrockruntime.InvokeModelWithResponseStreamInput{
			ModelId:     aws.String(modelID),
			Accept:      aws.String("*/*"),
			ContentType: aws.String("application/json"),
			Body:        body,
		}
		return parseStreamingCompletionResponse(ctx, client, modelInput, options)
	}

	modelInput := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Accept:      aws.String("*/*"),
		ContentType: aws.String("application/json"),
		Body:        body,
	}
	resp, err := client.InvokeModel(ctx, modelInput)
	if err != nil {
		return nil, err
	}

	var output anthropicTextGenerationOutput
	err = json.Unmarshal(resp.Body, &output)
	if err != nil {
		return nil, err
	}

	if len(output.Content) == 0 {
		return nil, errors.New("bedrock: no results")
	} else if stopReason := output.StopReason; stopReason != AnthropicCompletionReasonEndTurn &&
		stopReason != AnthropicCompletionReasonStopSequence {
		return nil, errors.New("bedrock: completed due to " + stopReason + ". Maybe try increasing max tokens")
	}

	var textContent string
	for _, c := range output.Content {
		if c.Type == "text" {
			textContent += c.Text
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    textContent,
				StopReason: output.StopReason,
				GenerationInfo: map[string]any{
					"InputTokens":  output.Usage.InputTokens,
					"OutputTokens": output.Usage.OutputTokens,
					"TotalTokens":  output.Usage.InputTokens + output.Usage.OutputTokens,
				},
			},
		},
	}, nil
}

type streamingCompletionResponseChunk struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Delta struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Message struct {
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

func parseStreamingCompletionResponse(ctx context.Context, client *bedrockruntime.Client, modelInput *bedrockruntime.InvokeModelWithResponseStreamInput, options llms.CallOptions) (*llms.ContentResponse, error) {
	output, err := client.InvokeModelWithResponseStream(ctx, modelInput)
	if err != nil {
		return nil, err
	}
	stream := output.GetStream()
	if stream == nil {
		return nil, errors.New("bedrock: no stream")
	}
	defer func() {
		_ = stream.Close()
	}()

	contentchoices := []*llms.ContentChoice{{GenerationInfo: map[string]any{}}}
	for e := range stream.Events() {
		if err = stream.Err(); err != nil {
			return nil, err
		}

		if v, ok := e.(*types.ResponseStreamMemberChunk); ok {
			var resp streamingCompletionResponseChunk
			err := json.NewDecoder(bytes.NewReader(v.Value.Bytes)).Decode(&resp)
			if err != nil {
				return nil, err
			}

			switch resp.Type {
			case "message_start":
				contentchoices[0].GenerationInfo["InputTokens"] = resp.Message.Usage.InputTokens
			case "content_block_delta":
				if err = options.StreamingFunc(ctx, []byte(resp.Delta.Text)); err != nil {
					return nil, err
				}
				contentchoices[0].Content += resp.Delta.Text
			case "message_delta":
				contentchoices[0].StopReason = resp.Delta.StopReason
				contentchoices[0].GenerationInfo["OutputTokens"] = resp.Usage.OutputTokens
			}
		}
	}
	if err = stream.Err(); err != nil {
		return nil, err
	}

	return &llms.ContentResponse{
		Choices: contentchoices,
	}, nil
}

// processInputMessagesAnthropic converts messages to the anthropic input
// format, extracting the system prompt. Consecutive messages with the same
// role are merged into one input message.
func processInputMessagesAnthropic(messages []llms.Message) ([]*anthropicInputMessage, string, error) {
	inputContents := make([]*anthropicInputMessage, 0, len(messages))
	var systemPrompt string

	for _, message := range messages {
		if message.Role == llms.RoleSystem {
			if systemPrompt != "" {
				systemPrompt += "\n"
			}
			systemPrompt += message.Text()
			continue
		}

		role, err := getAnthropicRole(message.Role)
		if err != nil {
			return nil, "", err
		}

		content := anthropicInputContent{
			Type: "text",
			Text: message.Text(),
		}
		if n := len(inputContents); n > 0 && inputContents[n-1].Role == role {
			inputContents[n-1].Content = append(inputContents[n-1].Content, content)
			continue
		}
		inputContents = append(inputContents, &anthropicInputMessage{
			Role:    role,
			Content: []anthropicInputContent{content},
		})
	}
	return inputContents, systemPrompt, nil
}

func getAnthropicRole(role llms.Role) (string, error) {
	switch role {
	case llms.RoleAI:
		return AnthropicRoleAssistant, nil
	case llms.RoleHuman:
		return AnthropicRoleUser, nil
	default:
		return "", errors.New("bedrock: role not supported")
	}
}
