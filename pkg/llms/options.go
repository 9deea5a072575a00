package llms

import (
	"context"
)

// CallOption is a function that configures a CallOptions.
type CallOption func(*CallOptions)

// CallOptions is a set of options for calling models. Not all models support
// all options.
type CallOptions struct {
	// Model is the model to use.
	Model string
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
	// Temperature is the temperature for sampling, between 0 and 1.
	Temperature float64
	// StopWords is a list of words to stop on.
	StopWords []string
	// StreamingFunc is a function to be called for each chunk of a streaming response.
	// Return an error to stop streaming early.
	StreamingFunc func(ctx context.Context, chunk []byte) error
	// ResponseFormat is a custom response format.
	// If it's not set the response MIME type is text/plain.
	ResponseFormat *ResponseFormat
}

// ResponseFormat describes a structured response contract for providers
// that support JSON schema response formats.
type ResponseFormat struct {
	// Type is "json_schema" or "json_object".
	Type string `json:"type"`
	// Name is the name of the schema.
	Name string `json:"name,omitempty"`
	// Schema is the JSON schema the reply must conform to.
	Schema any `json:"schema,omitempty"`
	// Strict requires the provider to enforce the schema exactly.
	Strict bool `json:"strict,omitempty"`
}

// WithModel specifies which model name to use.
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithMaxTokens specifies the max number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature specifies the model temperature.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithStopWords specifies a list of words to stop generation on.
func WithStopWords(stopWords []string) CallOption {
	return func(o *CallOptions) {
		o.StopWords = stopWords
	}
}

// WithStreamingFunc specifies the streaming function to use.
func WithStreamingFunc(streamingFunc func(ctx context.Context, chunk []byte) error) CallOption {
	return func(o *CallOptions) {
		o.StreamingFunc = streamingFunc
	}
}

// WithResponseFormat specifies the response format to use.
func WithResponseFormat(format *ResponseFormat) CallOption {
	return func(o *CallOptions) {
		o.ResponseFormat = format
	}
}
