package prompts

import (
	"strings"
	"testing"

	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	set, err := Load("")
	require.NoError(t, err)
	return NewBuilder(set)
}

func TestBuild_SystemInstructionIsModeIndependent(t *testing.T) {
	b := newTestBuilder(t)

	rewrite := b.Build(types.LetterRequest{Text: "Brief.", Mode: types.ModeRewrite})
	response := b.Build(types.LetterRequest{Text: "Brief.", Mode: types.ModeResponse})

	assert.Equal(t, rewrite.SystemInstruction, response.SystemInstruction)
	assert.NotEqual(t, rewrite.UserInstruction, response.UserInstruction)
}

func TestBuild_Deterministic(t *testing.T) {
	b := newTestBuilder(t)
	req := types.LetterRequest{
		Text:              "Mijn pakket is niet geleverd.",
		Mode:              types.ModeResponse,
		AdditionalContext: "Bestelnummer 12345",
	}

	first := b.Build(req)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, b.Build(req))
	}
}

func TestBuild_ContextSection(t *testing.T) {
	b := newTestBuilder(t)
	absent := b.Set().Context.Absent

	tests := []struct {
		name    string
		mode    types.Mode
		context string
	}{
		{"rewrite without context", types.ModeRewrite, ""},
		{"rewrite with context", types.ModeRewrite, "Levering was op 3 maart."},
		{"response without context", types.ModeResponse, ""},
		{"response with context", types.ModeResponse, "Klant is al 10 jaar lid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair := b.Build(types.LetterRequest{Text: "De brief zelf.", Mode: tt.mode, AdditionalContext: tt.context})

			hasContext := tt.context != "" && strings.Contains(pair.UserInstruction, "Voeg Toe: "+tt.context)
			hasPlaceholder := strings.Contains(pair.UserInstruction, absent)
			assert.True(t, hasContext != hasPlaceholder, "exactly one of context or placeholder must be present")
			assert.Equal(t, tt.context == "", hasPlaceholder)
			assert.NotContains(t, pair.UserInstruction, "{{.")
		})
	}
}

func TestBuild_ContextPrecedesInstructions(t *testing.T) {
	b := newTestBuilder(t)

	pair := b.Build(types.LetterRequest{Text: "Brief.", Mode: types.ModeRewrite, AdditionalContext: "CTX-MARKER"})

	ctx := strings.Index(pair.UserInstruction, "CTX-MARKER")
	instr := strings.Index(pair.UserInstruction, "Instructies:")
	require.NotEqual(t, -1, ctx)
	require.NotEqual(t, -1, instr)
	assert.Less(t, ctx, instr)
}

func TestBuild_LetterAppendedVerbatim(t *testing.T) {
	b := newTestBuilder(t)
	letter := "  Geachte heer,\n\nIk ben {{.Closing}} ontevreden.\n  "

	for _, mode := range types.Modes() {
		pair := b.Build(types.LetterRequest{Text: letter, Mode: mode})
		assert.True(t, strings.HasSuffix(pair.UserInstruction, "De brief:\n"+letter), "mode %s", mode)
	}
}

func TestBuild_ModeSpecificContent(t *testing.T) {
	b := newTestBuilder(t)

	rewrite := b.Build(types.LetterRequest{Text: "x", Mode: types.ModeRewrite}).UserInstruction
	assert.Contains(t, rewrite, "[xx]")
	assert.Contains(t, rewrite, "Met Vriendelijke Groeten.")
	assert.Contains(t, rewrite, "inleiding, kern en afsluiting")

	response := b.Build(types.LetterRequest{Text: "x", Mode: types.ModeResponse}).UserInstruction
	assert.Contains(t, response, "wij-vorm")
	assert.Contains(t, response, "Met Vriendelijke Groeten.")
	for _, phrase := range b.Set().BannedPhrases {
		assert.Contains(t, response, "- "+phrase)
	}
}

func TestBulletList(t *testing.T) {
	assert.Equal(t, "", bulletList(nil))
	assert.Equal(t, "- a\n- b", bulletList([]string{"a", "b"}))
}
