package openai

import (
	"net/http"
	"os"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

const (
	TokenEnvVarName = "OPENAI_API_KEY" //nolint:gosec

	PerplexityBaseURL = "https://api.perplexity.ai"
)

type Options struct {
	Token        string
	Model        string
	BaseURL      string
	Organization string
	Provider     llms.ProviderType
	HttpClient   *http.Client
}

type Option func(*Options)

// NewOptions applies the options over the defaults.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		Token:    os.Getenv(TokenEnvVarName),
		Provider: llms.ProviderOpenAI,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithToken passes the API token to the client. If not set, the token
// is read from the OPENAI_API_KEY environment variable.
func WithToken(token string) Option {
	return func(opts *Options) {
		opts.Token = token
	}
}

// WithModel passes the model to the client.
func WithModel(model string) Option {
	return func(opts *Options) {
		opts.Model = model
	}
}

// WithBaseURL passes the API base URL to the client.
// If not set, the default OpenAI base URL is used.
func WithBaseURL(baseURL string) Option {
	return func(opts *Options) {
		opts.BaseURL = baseURL
	}
}

// WithOrganization passes the OpenAI organization to the client.
func WithOrganization(organization string) Option {
	return func(opts *Options) {
		opts.Organization = organization
	}
}

// WithProviderType overrides the reported provider type, for
// OpenAI-compatible endpoints such as Perplexity.
func WithProviderType(pt llms.ProviderType) Option {
	return func(opts *Options) {
		opts.Provider = pt
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HttpClient = client
	}
}
