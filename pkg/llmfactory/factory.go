package llmfactory

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms/anthropic"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms/bedrock"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms/openai"
)

var logger = xlog.NewPackageLogger("github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client", "llmfactory")

// NewLLM is a wrapper for CreateLLM to allow for overriding the default implementation.
var NewLLM = CreateLLM

// Factory is the interface for creating and managing LLM models.
type Factory interface {
	// DefaultModel returns the default LLM model.
	DefaultModel() (llms.Model, error)
	// ModelByType returns an LLM model by its type, e.g.
	// OPENAI, ANTHROPIC, BEDROCK, PERPLEXITY
	ModelByType(providerType string) (llms.Model, error)
	// ModelByName returns an LLM model by its name,
	// if the model is not found, it will return the default model.
	ModelByName(preferredModels ...string) (llms.Model, error)
	// NodeModel returns a model for an agent node kind.
	NodeModel(nodeKind string, preferredModels ...string) (llms.Model, error)
}

// Load returns LLM factory from a config file
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type factory struct {
	cfg *Config

	defaultProvider *ProviderConfig
	nodeModels      map[string][]string
	byType          map[string]llms.Model
	byName          map[string]llms.Model
	lock            sync.Mutex
}

// New creates a new LLM factory
func New(cfg *Config) Factory {
	f := &factory{
		cfg:        cfg,
		byType:     make(map[string]llms.Model),
		byName:     make(map[string]llms.Model),
		nodeModels: make(map[string][]string),
	}

	for k, v := range cfg.NodeModels {
		f.nodeModels[k] = slices.Clone(v)
	}

	if cfg.DefaultProvider != "" {
		for _, provider := range cfg.Providers {
			if provider.Name == cfg.DefaultProvider {
				f.defaultProvider = provider
				break
			}
		}
	}

	if f.defaultProvider == nil && len(f.cfg.Providers) > 0 {
		f.defaultProvider = f.cfg.Providers[0]
	}

	return f
}

func CreateLLM(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	provType := strings.ToUpper(cfg.API.APIType)
	switch provType {
	case "OPENAI", "OPEN_AI":
		return newOpenAI(cfg, preferredModels...)
	case "PERPLEXITY":
		return newPerplexity(cfg, preferredModels...)
	case "ANTHROPIC":
		return newAnthropic(cfg, preferredModels...)
	case "BEDROCK":
		return newBedrock(cfg, preferredModels...)
	}
	return nil, errors.Errorf("unsupported provider type: %s", provType)
}

func newOpenAI(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	var opts []openai.Option
	model := cfg.FindModel(preferredModels...)
	opts = append(opts, openai.WithModel(model))

	if cfg.Token != "" {
		opts = append(opts, openai.WithToken(cfg.Token))
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.API.BaseURL))
	}
	if cfg.API.OrgID != "" {
		opts = append(opts, openai.WithOrganization(cfg.API.OrgID))
	}
	return openai.New(opts...)
}

func newPerplexity(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	var opts []openai.Option
	model := cfg.FindModel(preferredModels...)
	opts = append(opts,
		openai.WithModel(model),
		openai.WithProviderType(llms.ProviderPerplexity),
		openai.WithBaseURL(openai.PerplexityBaseURL),
	)

	if cfg.Token != "" {
		opts = append(opts, openai.WithToken(cfg.Token))
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.API.BaseURL))
	}
	return openai.New(opts...)
}

func newAnthropic(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	var opts []anthropic.Option
	model := cfg.FindModel(preferredModels...)
	opts = append(opts, anthropic.WithModel(model))
	if cfg.Token != "" {
		opts = append(opts, anthropic.WithToken(cfg.Token))
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.API.BaseURL))
	}
	return anthropic.New(opts...)
}

func newBedrock(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	var opts []bedrock.Option
	model := cfg.FindModel(preferredModels...)
	opts = append(opts, bedrock.WithModel(model))
	return bedrock.New(opts...)
}

// DefaultModel returns the default provider's model
func (f *factory) DefaultModel() (llms.Model, error) {
	if len(f.cfg.Providers) == 0 || f.defaultProvider == nil {
		return nil, errors.New("no providers configured")
	}

	return NewLLM(f.defaultProvider, f.defaultProvider.DefaultModel)
}

func (f *factory) ModelByType(providerType string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if client, ok := f.byType[providerType]; ok {
		return client, nil
	}

	for _, cfg := range f.cfg.Providers {
		if cfg.API.APIType == providerType {
			model, err := NewLLM(cfg)
			if err != nil {
				return nil, err
			}

			logger.KV(xlog.DEBUG,
				"status", "created_llm",
				"type", cfg.API.APIType,
				"name", cfg.Name)

			f.byType[providerType] = model
			return model, nil
		}
	}
	return nil, errors.Errorf("provider not found for type: %s", providerType)
}

func (f *factory) ModelByName(modelNames ...string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, modelName := range modelNames {
		if client, ok := f.byName[modelName]; ok {
			return client, nil
		}

		for _, cfg := range f.cfg.Providers {
			if slices.Contains(cfg.AvailableModels, modelName) {
				model, err := NewLLM(cfg, modelNames...)
				if err != nil {
					logger.KV(xlog.ERROR,
						"reason", "NewLLM",
						"type", cfg.API.APIType,
						"models", modelNames,
					)
					continue
				}

				logger.KV(xlog.DEBUG,
					"status", "created_llm",
					"type", cfg.API.APIType,
					"name", cfg.Name)

				f.byName[modelName] = model
				return model, nil
			}
		}
	}
	return f.DefaultModel()
}

// NodeModel returns a model for an agent node kind.
func (f *factory) NodeModel(nodeKind string, preferredModels ...string) (llms.Model, error) {
	if modelNames, ok := f.nodeModels[nodeKind]; ok {
		return f.ModelByName(modelNames...)
	}

	if modelNames, ok := f.nodeModels["default"]; ok {
		return f.ModelByName(modelNames...)
	}

	return f.ModelByName(preferredModels...)
}
