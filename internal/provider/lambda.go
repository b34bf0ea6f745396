package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/pricofy/translate-gateway/internal/domain"
)

// DefaultFunctionPrefix prefixes translator Lambda names, e.g. "pricofy-translator-en-de".
const DefaultFunctionPrefix = "pricofy-translator"

// Language groups
var (
	// Romance languages supported by opus-mt-ROMANCE-en / opus-mt-en-ROMANCE
	romanceLanguages = map[string]bool{
		// Spanish variants
		"es": true, "es_AR": true, "es_CL": true, "es_CO": true, "es_CR": true,
		"es_DO": true, "es_EC": true, "es_ES": true, "es_GT": true, "es_HN": true,
		"es_MX": true, "es_NI": true, "es_PA": true, "es_PE": true, "es_PR": true,
		"es_SV": true, "es_UY": true, "es_VE": true,
		// French variants
		"fr": true, "fr_BE": true, "fr_CA": true, "fr_FR": true,
		"wa": true, "frp": true, "oc": true,
		// Italian variants
		"it": true, "co": true, "nap": true, "scn": true, "vec": true,
		// Portuguese variants
		"pt": true, "pt_BR": true, "pt_PT": true, "gl": true, "mwl": true,
		// Catalan and related
		"ca": true, "an": true, "lad": true,
		"ro": true,
		// Other Romance
		"la": true, "rm": true, "lld": true, "fur": true, "lij": true, "lmo": true, "sc": true,
	}
)

// LambdaInvoker is the subset of the Lambda API the backend needs.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaBackend translates by invoking translator Lambda functions. Pairs that
// do not involve English pivot through it with two invocations.
type LambdaBackend struct {
	client     LambdaInvoker
	sourceLang string
	prefix     string
}

type routeStep struct {
	functionName string
	// targetLang is only set for the en-romance function.
	targetLang string
}

// NewLambdaBackend creates a backend using the default AWS configuration chain.
func NewLambdaBackend(ctx context.Context, sourceLang, prefix string) (*LambdaBackend, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewLambdaBackendWithClient(lambda.NewFromConfig(cfg), sourceLang, prefix), nil
}

// NewLambdaBackendWithClient creates a backend over an existing invoker.
func NewLambdaBackendWithClient(client LambdaInvoker, sourceLang, prefix string) *LambdaBackend {
	if sourceLang == "" {
		sourceLang = "en"
	}
	if prefix == "" {
		prefix = DefaultFunctionPrefix
	}
	return &LambdaBackend{
		client:     client,
		sourceLang: CanonicalLanguage(sourceLang),
		prefix:     prefix,
	}
}

// CanonicalLanguage rewrites codes like "ES-mx" into the "es_MX" form the translator models use.
func CanonicalLanguage(code string) string {
	code = strings.TrimSpace(code)
	base, region, found := strings.Cut(strings.ReplaceAll(code, "-", "_"), "_")
	if !found {
		return strings.ToLower(base)
	}
	return strings.ToLower(base) + "_" + strings.ToUpper(region)
}

func isSupported(lang string) bool {
	return romanceLanguages[lang] || lang == "de" || lang == "en"
}

// IsValidPair checks if a language pair can be translated.
func (b *LambdaBackend) IsValidPair(source, target string) bool {
	return isSupported(source) && isSupported(target) && source != target
}

// getRoute determines which functions to call, in order. Nil means unsupported.
func (b *LambdaBackend) getRoute(source, target string) []routeStep {
	romanceEN := routeStep{functionName: b.prefix + "-romance-en"}
	enRomance := routeStep{functionName: b.prefix + "-en-romance", targetLang: target}
	deEN := routeStep{functionName: b.prefix + "-de-en"}
	enDE := routeStep{functionName: b.prefix + "-en-de"}

	switch {
	case target == "en" && romanceLanguages[source]:
		return []routeStep{romanceEN}
	case target == "en" && source == "de":
		return []routeStep{deEN}
	case source == "en" && romanceLanguages[target]:
		return []routeStep{enRomance}
	case source == "en" && target == "de":
		return []routeStep{enDE}
	case romanceLanguages[source] && romanceLanguages[target]:
		return []routeStep{romanceEN, enRomance}
	case romanceLanguages[source] && target == "de":
		return []routeStep{romanceEN, enDE}
	case source == "de" && romanceLanguages[target]:
		return []routeStep{deEN, enRomance}
	}

	return nil
}

// Translate translates one text from the configured source language.
func (b *LambdaBackend) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	target := CanonicalLanguage(targetLanguage)
	if target == b.sourceLang {
		return text, nil
	}

	if !b.IsValidPair(b.sourceLang, target) {
		return "", fmt.Errorf("%w: unsupported language pair %s-%s", ErrRejected, b.sourceLang, target)
	}
	route := b.getRoute(b.sourceLang, target)
	if route == nil {
		return "", fmt.Errorf("%w: no route for %s-%s", ErrRejected, b.sourceLang, target)
	}

	current := text
	for i, step := range route {
		out, err := b.invoke(ctx, step, current)
		if err != nil {
			return "", fmt.Errorf("step %d (%s) failed: %w", i+1, step.functionName, err)
		}
		current = out
	}

	return current, nil
}

// invoke calls one translator function with a single one-text chunk.
func (b *LambdaBackend) invoke(ctx context.Context, step routeStep, text string) (string, error) {
	payload, err := json.Marshal(domain.LambdaTranslatorRequest{
		Chunks:     [][]string{{text}},
		TargetLang: step.targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	functionName := step.functionName
	result, err := b.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: &functionName,
		Payload:      payload,
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) && !IsRetryableStatus(respErr.HTTPStatusCode()) {
			return "", fmt.Errorf("%w: failed to invoke %s: %w", ErrRejected, functionName, err)
		}
		return "", fmt.Errorf("failed to invoke %s: %w", functionName, err)
	}

	if result.FunctionError != nil {
		return "", fmt.Errorf("lambda error: %s", *result.FunctionError)
	}

	var resp domain.LambdaTranslatorResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Error != "" {
		return "", fmt.Errorf("translator error: %s", resp.Error)
	}

	if len(resp.Translations) != 1 || len(resp.Translations[0]) != 1 {
		return "", fmt.Errorf("translator returned %d chunks for 1", len(resp.Translations))
	}

	return resp.Translations[0][0], nil
}
