package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pricofy/translate-gateway/internal/domain"
)

// DefaultMaxTexts caps the number of texts in one request.
const DefaultMaxTexts = 100

var languagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{2,8})*$`)

// validateRequest checks the raw request parts. The target language is checked
// before the body is decoded.
func validateRequest(targetLanguage string, body []byte, maxTexts int) (domain.TranslationRequest, error) {
	lang := strings.TrimSpace(targetLanguage)
	if lang == "" {
		return domain.TranslationRequest{}, &domain.ValidationError{Message: "targetLanguage is required"}
	}

	texts, ok := decodeTexts(body)
	if !ok || len(texts) == 0 {
		return domain.TranslationRequest{}, &domain.ValidationError{Message: "texts is required"}
	}

	if maxTexts <= 0 {
		maxTexts = DefaultMaxTexts
	}
	if len(texts) > maxTexts {
		return domain.TranslationRequest{}, &domain.ValidationError{
			Message: fmt.Sprintf("too many texts: at most %d allowed", maxTexts),
		}
	}
	if !languagePattern.MatchString(lang) {
		return domain.TranslationRequest{}, &domain.ValidationError{Message: "targetLanguage is invalid"}
	}

	return domain.TranslationRequest{Texts: texts, TargetLanguage: lang}, nil
}

// decodeTexts accepts only a JSON array of strings. A null element is not a
// string, so it is rejected rather than read as "".
func decodeTexts(body []byte) ([]string, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, false
	}
	var items []*string
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, false
	}
	texts := make([]string, len(items))
	for i, item := range items {
		if item == nil {
			return nil, false
		}
		texts[i] = *item
	}
	return texts, true
}
