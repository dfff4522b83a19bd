// Package llm - tokens.go provides token counting so prompts stay inside
// model context budgets.
package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenizerCache   = make(map[string]*tiktoken.Tiktoken)
	tokenizerCacheMu sync.RWMutex
)

// getTokenizer returns a cached tiktoken encoder for the given model.
func getTokenizer(model string) (*tiktoken.Tiktoken, error) {
	tokenizerCacheMu.RLock()
	if tkm, ok := tokenizerCache[model]; ok {
		tokenizerCacheMu.RUnlock()
		return tkm, nil
	}
	tokenizerCacheMu.RUnlock()

	tokenizerCacheMu.Lock()
	defer tokenizerCacheMu.Unlock()

	// Double-check after acquiring write lock
	if tkm, ok := tokenizerCache[model]; ok {
		return tkm, nil
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fall back to cl100k_base for models tiktoken does not know
		tkm, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	tokenizerCache[model] = tkm
	return tkm, nil
}

// CountTokens returns the token count of text under the given model's
// encoding. Unknown models are counted with the cl100k_base encoding.
func CountTokens(model, text string) (int, error) {
	tkm, err := getTokenizer(model)
	if err != nil {
		return 0, err
	}
	return len(tkm.Encode(text, nil, nil)), nil
}

// TruncateToTokens cuts text to at most maxTokens tokens. Text already
// inside the budget is returned unchanged.
func TruncateToTokens(model, text string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		return "", nil
	}

	tkm, err := getTokenizer(model)
	if err != nil {
		return "", err
	}

	tokens := tkm.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return tkm.Decode(tokens[:maxTokens]), nil
}
