package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := New(20, 10)

	tests := []struct {
		name        string
		body        string
		wantField   string
		wantMessage string
		want        *types.LetterRequest
	}{
		{
			name: "valid rewrite",
			body: `{"text": "Mijn pakket.", "type": "rewrite"}`,
			want: &types.LetterRequest{Text: "Mijn pakket.", Mode: types.ModeRewrite},
		},
		{
			name: "valid response with context",
			body: `{"text": "Mijn pakket.", "type": "response", "additionalInfo": "  order 12  "}`,
			want: &types.LetterRequest{Text: "Mijn pakket.", Mode: types.ModeResponse, AdditionalContext: "order 12"},
		},
		{
			name: "text kept verbatim",
			body: `{"text": "  Brief\n", "type": "rewrite"}`,
			want: &types.LetterRequest{Text: "  Brief\n", Mode: types.ModeRewrite},
		},
		{
			name: "null context normalizes to empty",
			body: `{"text": "Brief", "type": "rewrite", "additionalInfo": null}`,
			want: &types.LetterRequest{Text: "Brief", Mode: types.ModeRewrite},
		},
		{
			name:        "text missing",
			body:        `{"type": "rewrite"}`,
			wantField:   "text",
			wantMessage: MsgTextRequired,
		},
		{
			name:        "text null",
			body:        `{"text": null, "type": "rewrite"}`,
			wantField:   "text",
			wantMessage: MsgTextRequired,
		},
		{
			name:        "text not a string",
			body:        `{"text": 42, "type": "rewrite"}`,
			wantField:   "text",
			wantMessage: MsgTextRequired,
		},
		{
			name:        "text blank",
			body:        `{"text": " \n\t ", "type": "rewrite"}`,
			wantField:   "text",
			wantMessage: MsgTextRequired,
		},
		{
			name:        "text too long",
			body:        `{"text": "` + strings.Repeat("a", 21) + `", "type": "rewrite"}`,
			wantField:   "text",
			wantMessage: "Tekst mag niet langer zijn dan 20 karakters.",
		},
		{
			name: "limit counts characters not bytes",
			body: `{"text": "` + strings.Repeat("é", 20) + `", "type": "rewrite"}`,
			want: &types.LetterRequest{Text: strings.Repeat("é", 20), Mode: types.ModeRewrite},
		},
		{
			name:        "length checked before mode",
			body:        `{"text": "` + strings.Repeat("a", 21) + `", "type": "summary"}`,
			wantField:   "text",
			wantMessage: "Tekst mag niet langer zijn dan 20 karakters.",
		},
		{
			name:        "mode missing",
			body:        `{"text": "Brief"}`,
			wantField:   "type",
			wantMessage: MsgInvalidMode,
		},
		{
			name:        "mode unknown",
			body:        `{"text": "Brief", "type": "summary"}`,
			wantField:   "type",
			wantMessage: MsgInvalidMode,
		},
		{
			name:        "mode wrong case",
			body:        `{"text": "Brief", "type": "Rewrite"}`,
			wantField:   "type",
			wantMessage: MsgInvalidMode,
		},
		{
			name:        "context not a string",
			body:        `{"text": "Brief", "type": "rewrite", "additionalInfo": ["x"]}`,
			wantField:   "additionalInfo",
			wantMessage: MsgContextInvalid,
		},
		{
			name:        "context too long",
			body:        `{"text": "Brief", "type": "rewrite", "additionalInfo": "12345678901"}`,
			wantField:   "additionalInfo",
			wantMessage: "Aanvullende informatie mag niet langer zijn dan 10 karakters.",
		},
		{
			name:        "body not an object",
			body:        `["text"]`,
			wantField:   "body",
			wantMessage: MsgInvalidBody,
		},
		{
			name:        "body not json",
			body:        `text=hallo`,
			wantField:   "body",
			wantMessage: MsgInvalidBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate([]byte(tt.body))
			if tt.want != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			assert.Nil(t, got)
			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, tt.wantMessage, verr.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	v := New(7000, 2000)

	got, err := v.ValidateRequest(types.ProcessTextRequest{Text: "Brief", Type: "response", AdditionalInfo: " ctx "})
	require.NoError(t, err)
	assert.Equal(t, types.ModeResponse, got.Mode)
	assert.Equal(t, "ctx", got.AdditionalContext)

	_, err = v.ValidateRequest(types.ProcessTextRequest{Text: "", Type: "rewrite"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgTextRequired, verr.Message)
}

func TestError_Error(t *testing.T) {
	err := &Error{Field: "text", Message: MsgTextRequired}
	assert.Equal(t, "validation error: text: "+MsgTextRequired, err.Error())

	cause := errors.New("boom")
	wrapped := &Error{Field: "body", Message: MsgInvalidBody, Cause: cause}
	assert.ErrorIs(t, wrapped, cause)
}
