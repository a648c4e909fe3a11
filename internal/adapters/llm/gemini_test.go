package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/genai"
)

func TestGeminiSchemaMapsRegistryShape(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "The project name.",
			},
			"filters": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"name"},
	}

	out := geminiSchema(schema)

	assert.Equal(t, genai.TypeObject, out.Type)
	assert.Equal(t, []string{"name"}, out.Required)

	require.Contains(t, out.Properties, "name")
	assert.Equal(t, genai.TypeString, out.Properties["name"].Type)
	assert.Equal(t, "The project name.", out.Properties["name"].Description)

	require.Contains(t, out.Properties, "filters")
	assert.Equal(t, genai.TypeArray, out.Properties["filters"].Type)
	require.NotNil(t, out.Properties["filters"].Items)
	assert.Equal(t, genai.TypeString, out.Properties["filters"].Items.Type)
}

func TestGeminiSchemaNilDefaultsToObject(t *testing.T) {
	out := geminiSchema(nil)
	assert.Equal(t, genai.TypeObject, out.Type)
}
