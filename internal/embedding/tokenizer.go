package embedding

import (
	"hash/fnv"
	"strings"
)

// Tokenizer turns text into BERT-style model inputs: input_ids,
// attention_mask and token_type_ids, padded to maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

const (
	clsTokenID = 101
	sepTokenID = 102
)

// HashTokenizer splits on whitespace and maps each word to a hashed token ID.
// It is not a real wordpiece vocabulary; it exists so the ONNX path has a
// deterministic tokenizer without shipping a vocab file.
type HashTokenizer struct{}

func (t *HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := 1
	for _, word := range strings.Fields(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = wordTokenID(word)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

func wordTokenID(word string) int64 {
	h := fnv.New32a()
	h.Write([]byte(word))
	// Stay clear of the reserved [CLS]/[SEP] range.
	return int64(h.Sum32()%29000) + 1000
}
