package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["jobId", "responses"],
  "properties": {
    "jobId": {"type": "string", "minLength": 1},
    "responses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "answer"],
        "properties": {
          "question": {"type": "string"},
          "answer": {"type": "string"}
        }
      }
    }
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile("test", testSchema)

	t.Run("valid document", func(t *testing.T) {
		result, err := schema.Validate(map[string]interface{}{
			"jobId": "job-1",
			"responses": []interface{}{
				map[string]interface{}{"question": "Q1", "answer": "A1"},
			},
		})
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("missing required field", func(t *testing.T) {
		result, err := schema.Validate(map[string]interface{}{"jobId": "job-1"})
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "REQUIRED", result.Errors[0].Code)
		assert.Len(t, result.GetErrorMessages(), 1)
	})

	t.Run("empty job id", func(t *testing.T) {
		result, err := schema.Validate(map[string]interface{}{
			"jobId":     "",
			"responses": []interface{}{},
		})
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.True(t, result.HasErrors("jobId"))
	})
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile("broken", `{`) })
}
