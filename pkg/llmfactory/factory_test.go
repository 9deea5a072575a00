package llmfactory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llmfactory"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

type fakeLLM struct {
	provider string
	model    string
}

func (f *fakeLLM) GetName() string {
	return f.model
}

func (f *fakeLLM) GetProviderType() llms.ProviderType {
	return llms.ProviderType(f.provider)
}

func (f *fakeLLM) GenerateContent(_ context.Context, _ []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func Test_Factory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")
	t.Setenv("PERPLEXITY_TOKEN", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Providers)

	llmfactory.NewLLM = func(cfg *llmfactory.ProviderConfig, preferredModels ...string) (llms.Model, error) {
		return &fakeLLM{provider: cfg.Name, model: cfg.FindModel(preferredModels...)}, nil
	}
	defer func() {
		llmfactory.NewLLM = llmfactory.CreateLLM
	}()

	f := llmfactory.New(cfg)
	model, err := f.DefaultModel()
	require.NoError(t, err)
	require.NotNil(t, model)
	fm := model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	// single model name
	model, err = f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	// first unknown, second matches a different provider
	model, err = f.ModelByName("gpt-4-unknown", "claude-sonnet-4-20250514")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	// non-existent falls back to default
	model, err = f.ModelByName("non-existent-model")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	model, err = f.ModelByType("OPENAI")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)

	model, err = f.ModelByType("BEDROCK")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", fm.model)

	model, err = f.ModelByType("PERPLEXITY")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "sonar", fm.model)

	_, err = f.ModelByType("UNKNOWN")
	assert.EqualError(t, err, "provider not found for type: UNKNOWN")

	// per-node model mapping
	model, err = f.NodeModel("router")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)

	model, err = f.NodeModel("planner")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	// unmapped node falls back to the default entry
	model, err = f.NodeModel("tool_executor")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
}
