// Package schemas checks operator-supplied JSON files against the schemas
// compiled into the binary.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed prompt_set.schema.json
var promptSetSchema []byte

var (
	promptSetOnce     sync.Once
	promptSetCompiled *gojsonschema.Schema
	promptSetErr      error
)

// Violation is one place where a document breaks its schema.
type Violation struct {
	Field   string // dotted path, "(root)" for the document itself
	Message string
}

// MismatchError lists every violation found in a document.
type MismatchError struct {
	Document   string
	Violations []Violation
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return fmt.Sprintf("%s does not match its schema: %s", e.Document, strings.Join(parts, "; "))
}

// ValidatePromptSet checks a prompt set file: persona, closing, context
// lines and one template per letter mode, each carrying the context slot.
func ValidatePromptSet(data []byte) error {
	schema, err := promptSet()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("prompt set is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	mismatch := &MismatchError{Document: "prompt set"}
	for _, re := range result.Errors() {
		mismatch.Violations = append(mismatch.Violations, Violation{
			Field:   re.Field(),
			Message: re.Description(),
		})
	}
	return mismatch
}

// promptSet compiles the embedded schema once.
func promptSet() (*gojsonschema.Schema, error) {
	promptSetOnce.Do(func() {
		promptSetCompiled, promptSetErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(promptSetSchema))
		if promptSetErr != nil {
			promptSetErr = fmt.Errorf("compile prompt set schema: %w", promptSetErr)
		}
	})
	return promptSetCompiled, promptSetErr
}
