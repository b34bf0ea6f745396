package service

import (
	"fmt"

	"github.com/pricofy/translate-gateway/internal/cache"
	"github.com/pricofy/translate-gateway/internal/domain"
)

// Assemble produces one record per input text, in input order. Duplicate texts
// are resolved independently from the same entry. Every text must be resolved.
func Assemble(texts []string, targetLanguage string, resolved map[cache.Key]string) ([]domain.TranslationRecord, error) {
	out := make([]domain.TranslationRecord, len(texts))
	for i, text := range texts {
		translated, ok := resolved[cache.NewKey(text, targetLanguage)]
		if !ok {
			return nil, fmt.Errorf("text at index %d was not resolved", i)
		}
		out[i] = domain.TranslationRecord{MainText: text, TranslateText: translated}
	}
	return out, nil
}
