// Package tokens selects the token counter used for bundle statistics.
package tokens

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/bethropolis/repoprompt/internal/tree"
)

// EstimateName selects the built-in characters/4 estimate
const EstimateName = "estimate"

// Tiktoken counts tokens with a BPE encoding
type Tiktoken struct {
	name string
	enc  *tiktoken.Tiktoken
}

// Count implements tree.TokenCounter
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Name returns the encoding name
func (t *Tiktoken) Name() string {
	return t.name
}

// NewCounter returns the counter for an encoding or model name.
// "" and "estimate" give the estimate; anything else is resolved through
// tiktoken, first as an encoding and then as a model name.
func NewCounter(name string) (tree.TokenCounter, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, EstimateName) {
		return tree.Estimator{}, nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		enc, err = tiktoken.EncodingForModel(name)
	}
	if err != nil {
		return nil, fmt.Errorf("tokens: unknown encoding or model %q: %w", name, err)
	}
	return &Tiktoken{name: name, enc: enc}, nil
}
