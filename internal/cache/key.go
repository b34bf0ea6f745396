package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const keyPrefix = "translation:"

// Key identifies one (text, target language) translation in the store.
type Key string

// NormalizeText is the text normalization applied on both read and write.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// NormalizeLanguage is the language normalization applied on both read and write.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// NewKey derives the deterministic cache key for a text and target language.
func NewKey(text, targetLanguage string) Key {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return Key(keyPrefix + NormalizeLanguage(targetLanguage) + ":" + hex.EncodeToString(sum[:]))
}

func (k Key) String() string {
	return string(k)
}
