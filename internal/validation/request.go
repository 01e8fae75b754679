package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/klachtbrief/internal/types"
)

// User-facing messages, one per rule.
const (
	MsgInvalidBody    = "Ongeldige aanvraag: verwacht een JSON-object."
	MsgTextRequired   = "Tekst is verplicht en moet een string zijn."
	MsgTextTooLong    = "Tekst mag niet langer zijn dan %d karakters."
	MsgInvalidMode    = `Type moet "rewrite" of "response" zijn.`
	MsgContextInvalid = "Aanvullende informatie moet een string zijn."
	MsgContextTooLong = "Aanvullende informatie mag niet langer zijn dan %d karakters."
)

// rawRequest keeps every field undecoded so a wrong JSON type is reported
// against the right rule instead of failing the whole body.
type rawRequest struct {
	Text           json.RawMessage `json:"text"`
	Type           json.RawMessage `json:"type"`
	AdditionalInfo json.RawMessage `json:"additionalInfo"`
}

// Validator checks letter requests against the configured limits.
// It is safe for concurrent use.
type Validator struct {
	validate   *validator.Validate
	maxText    int
	maxContext int
	modeRule   string
}

// New returns a Validator enforcing maxText and maxContext, both counted
// in characters.
func New(maxText, maxContext int) *Validator {
	modes := make([]string, 0, len(types.Modes()))
	for _, m := range types.Modes() {
		modes = append(modes, m.String())
	}
	return &Validator{
		validate:   validator.New(),
		maxText:    maxText,
		maxContext: maxContext,
		modeRule:   "required,oneof=" + strings.Join(modes, " "),
	}
}

// Validate decodes body and applies the request rules in order. The first
// failing rule wins.
func (v *Validator) Validate(body []byte) (*types.LetterRequest, error) {
	var raw rawRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Field: "body", Message: MsgInvalidBody, Cause: err}
	}
	return v.check(raw)
}

// ValidateRequest applies the same rules to an already decoded request.
func (v *Validator) ValidateRequest(req types.ProcessTextRequest) (*types.LetterRequest, error) {
	raw := rawRequest{}
	raw.Text, _ = json.Marshal(req.Text)
	raw.Type, _ = json.Marshal(req.Type)
	if req.AdditionalInfo != "" {
		raw.AdditionalInfo, _ = json.Marshal(req.AdditionalInfo)
	}
	return v.check(raw)
}

func (v *Validator) check(raw rawRequest) (*types.LetterRequest, error) {
	text, ok := decodeString(raw.Text)
	if !ok || v.validate.Var(strings.TrimSpace(text), "required") != nil {
		return nil, &Error{Field: "text", Message: MsgTextRequired}
	}
	if err := v.validate.Var(text, fmt.Sprintf("max=%d", v.maxText)); err != nil {
		return nil, &Error{Field: "text", Message: fmt.Sprintf(MsgTextTooLong, v.maxText), Cause: err}
	}

	modeValue, ok := decodeString(raw.Type)
	if !ok {
		return nil, &Error{Field: "type", Message: MsgInvalidMode}
	}
	if err := v.validate.Var(modeValue, v.modeRule); err != nil {
		return nil, &Error{Field: "type", Message: MsgInvalidMode, Cause: err}
	}
	mode, ok := types.ParseMode(modeValue)
	if !ok {
		return nil, &Error{Field: "type", Message: MsgInvalidMode}
	}

	var additional string
	if isPresent(raw.AdditionalInfo) {
		s, ok := decodeString(raw.AdditionalInfo)
		if !ok {
			return nil, &Error{Field: "additionalInfo", Message: MsgContextInvalid}
		}
		additional = strings.TrimSpace(s)
	}
	if err := v.validate.Var(additional, fmt.Sprintf("max=%d", v.maxContext)); err != nil {
		return nil, &Error{Field: "additionalInfo", Message: fmt.Sprintf(MsgContextTooLong, v.maxContext), Cause: err}
	}

	return &types.LetterRequest{
		Text:              text,
		Mode:              mode,
		AdditionalContext: additional,
	}, nil
}

// isPresent reports whether a field was sent with a non-null value.
func isPresent(field json.RawMessage) bool {
	return len(field) > 0 && string(field) != "null"
}

// decodeString returns the field as a string, or false if it is absent,
// null, or not a JSON string.
func decodeString(field json.RawMessage) (string, bool) {
	if !isPresent(field) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(field, &s); err != nil {
		return "", false
	}
	return s, true
}
