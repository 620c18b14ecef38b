package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"count": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "edge", "count": 3}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingRequiredField(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"count": 3}`)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Errors)
	assert.Contains(t, err.Error(), "name")
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"name": "edge", "count": "three"}`)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "count", verr.Errors[0].Field)
}

func TestValidateJSONString_BrokenSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": ["not-a-type"]}`, `{}`)
	require.Error(t, err)

	var serr *SchemaLoadError
	assert.ErrorAs(t, err, &serr)
}
