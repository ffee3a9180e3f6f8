package retrieve

import (
	"log"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token cost of a text span.
type TokenCounter func(text string) int

// WordCounter is the dependency-free estimate used when no encoding is
// available.
func WordCounter(text string) int {
	return len(strings.Fields(text))
}

// TiktokenCounter counts with the BPE encoding of the given chat model. The
// encoding loads lazily on first use; on failure it degrades to WordCounter.
func TiktokenCounter(model string) TokenCounter {
	var once sync.Once
	var enc *tiktoken.Tiktoken

	return func(text string) int {
		once.Do(func() {
			var err error
			enc, err = tiktoken.EncodingForModel(model)
			if err != nil {
				log.Printf("[TOKENS] no encoding for %s, falling back to word count: %v", model, err)
			}
		})
		if enc == nil {
			return WordCounter(text)
		}
		return len(enc.Encode(text, nil, nil))
	}
}
