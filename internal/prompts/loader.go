// Package prompts loads the versioned prompt set used to instruct the
// language model and renders it into prompt pairs.
// The default set is embedded at compile time; operators can replace it
// with their own file, which must satisfy the prompt set schema.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/klachtbrief/internal/schemas"
	"github.com/jonathan/klachtbrief/internal/types"
)

//go:embed letters.json
var embeddedSet []byte

// EmbeddedSource is the cache key and display name of the built-in set.
const EmbeddedSource = "embedded:letters.json"

// ContextLines are the two renderings of the additional-context section.
type ContextLines struct {
	Present string `json:"present"`
	Absent  string `json:"absent"`
}

// Templates holds one user-instruction template per mode.
type Templates struct {
	Rewrite  string `json:"rewrite"`
	Response string `json:"response"`
}

// Set is a complete, validated prompt configuration.
type Set struct {
	Version       string       `json:"version"`
	System        string       `json:"system"`
	Closing       string       `json:"closing"`
	Context       ContextLines `json:"context"`
	Templates     Templates    `json:"templates"`
	BannedPhrases []string     `json:"banned_phrases"`
}

// Template returns the user-instruction template for mode.
func (s *Set) Template(mode types.Mode) string {
	switch mode {
	case types.ModeRewrite:
		return s.Templates.Rewrite
	case types.ModeResponse:
		return s.Templates.Response
	default:
		panic(fmt.Sprintf("prompts: no template for mode %q", mode))
	}
}

// cache stores parsed prompt sets keyed by source
var (
	cache   = make(map[string]*Set)
	cacheMu sync.RWMutex
)

// Load returns the prompt set stored at path, or the embedded set when path
// is empty. Results are cached per source.
func Load(path string) (*Set, error) {
	source := path
	if source == "" {
		source = EmbeddedSource
	}

	cacheMu.RLock()
	if set, exists := cache[source]; exists {
		cacheMu.RUnlock()
		return set, nil
	}
	cacheMu.RUnlock()

	data := embeddedSet
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", path, err)
		}
	}

	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", source, err)
	}

	cacheMu.Lock()
	cache[source] = set
	cacheMu.Unlock()

	return set, nil
}

// Parse validates data against the prompt set schema and decodes it.
func Parse(data []byte) (*Set, error) {
	if err := schemas.ValidatePromptSet(data); err != nil {
		return nil, err
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt set: %w", err)
	}
	return &set, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]*Set)
	cacheMu.Unlock()
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Substitution is a single pass, so placeholders that appear inside a value
// are left as they are.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
