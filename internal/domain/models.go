// Package domain contains the core domain types for the translate gateway.
package domain

// TranslationRequest is a validated translation request.
// Texts keeps the caller's order; the response follows it exactly.
type TranslationRequest struct {
	Texts          []string
	TargetLanguage string
}

// TranslationRecord pairs a source string with its translation.
type TranslationRecord struct {
	MainText      string `json:"main_text"`
	TranslateText string `json:"translate_text"`
}

// Envelope is the JSON shape of every HTTP response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    []TranslationRecord `json:"data,omitempty"`
}

// Failure builds an unsuccessful envelope.
func Failure(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// Success builds a successful envelope carrying translations.
func Success(data []TranslationRecord) Envelope {
	if data == nil {
		data = []TranslationRecord{}
	}
	return Envelope{Success: true, Data: data}
}

// LambdaTranslatorRequest is the request format for translator Lambdas (chunked mode).
type LambdaTranslatorRequest struct {
	Chunks     [][]string `json:"chunks"`
	TargetLang string     `json:"target_lang,omitempty"`
}

// LambdaTranslatorResponse is the response format from translator Lambdas (chunked mode).
type LambdaTranslatorResponse struct {
	Translations [][]string `json:"translations"`
	Error        string     `json:"error,omitempty"`
}
