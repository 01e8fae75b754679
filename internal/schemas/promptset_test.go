package schemas

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPromptSet = `{
	"version": "1",
	"system": "persona",
	"closing": "Groeten.",
	"context": {"present": "Voeg Toe: {{.Context}}", "absent": "Geen."},
	"templates": {"rewrite": "A {{.Context}}", "response": "B {{.Context}}"}
}`

func TestPromptSetSchemaCompiles(t *testing.T) {
	schema, err := promptSet()
	require.NoError(t, err)
	assert.NotNil(t, schema)
}

func TestValidatePromptSet(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string // prefix of a reported field; empty when valid
	}{
		{"valid", validPromptSet, ""},
		{"missing response template", `{
			"version": "1", "system": "s", "closing": "c",
			"context": {"present": "{{.Context}}", "absent": "a"},
			"templates": {"rewrite": "{{.Context}}"}
		}`, "templates"},
		{"template without context slot", `{
			"version": "1", "system": "s", "closing": "c",
			"context": {"present": "{{.Context}}", "absent": "a"},
			"templates": {"rewrite": "{{.Context}}", "response": "no slot"}
		}`, "templates.response"},
		{"unknown mode", `{
			"version": "1", "system": "s", "closing": "c",
			"context": {"present": "{{.Context}}", "absent": "a"},
			"templates": {"rewrite": "{{.Context}}", "response": "{{.Context}}", "summary": "{{.Context}}"}
		}`, "templates"},
		{"empty persona", `{
			"version": "1", "system": "", "closing": "c",
			"context": {"present": "{{.Context}}", "absent": "a"},
			"templates": {"rewrite": "{{.Context}}", "response": "{{.Context}}"}
		}`, "system"},
		{"array instead of object", `[]`, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePromptSet([]byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var mismatch *MismatchError
			require.True(t, errors.As(err, &mismatch), "got %v", err)
			found := false
			for _, v := range mismatch.Violations {
				found = found || strings.HasPrefix(v.Field, tt.wantField)
			}
			assert.True(t, found, "no violation under %q in %v", tt.wantField, mismatch.Violations)
		})
	}
}

func TestValidatePromptSet_NotJSON(t *testing.T) {
	err := ValidatePromptSet([]byte(`{ not json`))
	require.Error(t, err)

	var mismatch *MismatchError
	assert.False(t, errors.As(err, &mismatch))
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestMismatchError_Error(t *testing.T) {
	err := &MismatchError{
		Document: "prompt set",
		Violations: []Violation{
			{Field: "system", Message: "String length must be greater than or equal to 1"},
			{Field: "(root)", Message: "closing is required"},
		},
	}

	assert.Equal(t,
		"prompt set does not match its schema: system: String length must be greater than or equal to 1; (root): closing is required",
		err.Error())
}
