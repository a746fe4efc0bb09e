// Package tokenizer exposes the byte-pair-encoding view of a text for
// the museum's token inspection panel. Seeing how a phrase splits into
// tokens helps explain why two superficially similar strings can land
// far apart in embedding space.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// defaultEncoding is the BPE vocabulary used for display. It matches
// the tokenization family of the embedding models the app targets
// closely enough for educational purposes.
const defaultEncoding = "cl100k_base"

// Token is one BPE token with its id and the text span it covers.
type Token struct {
	ID   int
	Text string
}

// Tokenizer splits text into BPE tokens.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New loads the default BPE encoding. The first call downloads the
// vocabulary file if it is not cached locally, so it can fail on
// offline machines.
func New() (*Tokenizer, error) {
	encoding, encodingError := tiktoken.GetEncoding(defaultEncoding)
	if encodingError != nil {
		return nil, fmt.Errorf("load %s encoding: %w", defaultEncoding, encodingError)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// Tokenize splits the text into tokens, preserving order. Each token
// carries the exact substring it decodes back to, so the UI can render
// the split inline. Empty input returns no tokens.
func (tokenizer *Tokenizer) Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	tokenIDs := tokenizer.encoding.Encode(text, nil, nil)
	tokens := make([]Token, len(tokenIDs))
	for tokenIndex, tokenID := range tokenIDs {
		tokens[tokenIndex] = Token{
			ID:   tokenID,
			Text: tokenizer.encoding.Decode([]int{tokenID}),
		}
	}
	return tokens
}

// Encode returns just the token ids for a text.
func (tokenizer *Tokenizer) Encode(text string) []int {
	if text == "" {
		return nil
	}
	return tokenizer.encoding.Encode(text, nil, nil)
}

// Decode reassembles the text a sequence of token ids encodes.
func (tokenizer *Tokenizer) Decode(tokenIDs []int) string {
	if len(tokenIDs) == 0 {
		return ""
	}
	return tokenizer.encoding.Decode(tokenIDs)
}

// Count returns the number of tokens the text encodes to.
func (tokenizer *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(tokenizer.encoding.Encode(text, nil, nil))
}
