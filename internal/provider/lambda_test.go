package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/pricofy/translate-gateway/internal/domain"
)

// fakeInvoker answers every invocation by tagging the text with the function name.
type fakeInvoker struct {
	calls    []string
	requests []domain.LambdaTranslatorRequest
	err      error
	fnErr    *string
	respErr  string
}

func (f *fakeInvoker) Invoke(_ context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.calls = append(f.calls, *in.FunctionName)
	if f.err != nil {
		return nil, f.err
	}
	if f.fnErr != nil {
		return &lambda.InvokeOutput{FunctionError: f.fnErr}, nil
	}

	var req domain.LambdaTranslatorRequest
	if err := json.Unmarshal(in.Payload, &req); err != nil {
		return nil, err
	}
	f.requests = append(f.requests, req)

	resp := domain.LambdaTranslatorResponse{Error: f.respErr}
	if f.respErr == "" {
		resp.Translations = [][]string{{req.Chunks[0][0] + "|" + *in.FunctionName}}
	}
	payload, _ := json.Marshal(resp)
	return &lambda.InvokeOutput{Payload: payload}, nil
}

func TestCanonicalLanguage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"es", "es"},
		{"ES", "es"},
		{" fr ", "fr"},
		{"es-mx", "es_MX"},
		{"pt_br", "pt_BR"},
		{"fr-CA", "fr_CA"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CanonicalLanguage(tt.in); got != tt.want {
				t.Errorf("CanonicalLanguage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidPair(t *testing.T) {
	b := NewLambdaBackendWithClient(&fakeInvoker{}, "en", "")

	tests := []struct {
		source   string
		target   string
		expected bool
	}{
		{"es", "fr", true},
		{"es", "en", true},
		{"en", "es", true},
		{"de", "en", true},
		{"en", "de", true},
		{"es", "de", true},
		{"de", "fr", true},
		{"ca", "en", true},
		{"gl", "es", true},
		{"es_MX", "en", true},
		{"en", "pt_PT", true},
		{"es", "es", false},
		{"xx", "yy", false},
		{"es", "", false},
		{"ru", "es", false},
		{"zh", "en", false},
	}

	for _, tt := range tests {
		t.Run(tt.source+"→"+tt.target, func(t *testing.T) {
			if result := b.IsValidPair(tt.source, tt.target); result != tt.expected {
				t.Errorf("IsValidPair(%q, %q) = %v, want %v", tt.source, tt.target, result, tt.expected)
			}
		})
	}
}

func TestGetRoute(t *testing.T) {
	b := NewLambdaBackendWithClient(&fakeInvoker{}, "en", "")

	tests := []struct {
		source        string
		target        string
		expectedSteps int
		firstFunction string
	}{
		{"es", "en", 1, "pricofy-translator-romance-en"},
		{"pt_BR", "en", 1, "pricofy-translator-romance-en"},
		{"de", "en", 1, "pricofy-translator-de-en"},
		{"en", "es", 1, "pricofy-translator-en-romance"},
		{"en", "de", 1, "pricofy-translator-en-de"},
		{"es", "fr", 2, "pricofy-translator-romance-en"},
		{"ca", "es", 2, "pricofy-translator-romance-en"},
		{"fr", "de", 2, "pricofy-translator-romance-en"},
		{"de", "ro", 2, "pricofy-translator-de-en"},
	}

	for _, tt := range tests {
		t.Run(tt.source+"→"+tt.target, func(t *testing.T) {
			route := b.getRoute(tt.source, tt.target)
			if route == nil {
				t.Fatalf("getRoute(%q, %q) returned nil", tt.source, tt.target)
			}
			if len(route) != tt.expectedSteps {
				t.Errorf("getRoute(%q, %q) returned %d steps, want %d", tt.source, tt.target, len(route), tt.expectedSteps)
			}
			if route[0].functionName != tt.firstFunction {
				t.Errorf("getRoute(%q, %q) first function = %q, want %q", tt.source, tt.target, route[0].functionName, tt.firstFunction)
			}
			last := route[len(route)-1]
			if last.functionName == "pricofy-translator-en-romance" && last.targetLang != tt.target {
				t.Errorf("en-romance step targetLang = %q, want %q", last.targetLang, tt.target)
			}
		})
	}

	if route := b.getRoute("ru", "en"); route != nil {
		t.Errorf("getRoute(ru, en) = %v, want nil", route)
	}
}

func TestLambdaBackendTranslate(t *testing.T) {
	t.Run("single step", func(t *testing.T) {
		inv := &fakeInvoker{}
		b := NewLambdaBackendWithClient(inv, "en", "tr")

		out, err := b.Translate(context.Background(), "hello", "ES")
		if err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
		if out != "hello|tr-en-romance" {
			t.Errorf("Translate() = %q", out)
		}
		if len(inv.requests) != 1 || inv.requests[0].TargetLang != "es" {
			t.Errorf("unexpected requests: %+v", inv.requests)
		}
	})

	t.Run("pivot through english", func(t *testing.T) {
		inv := &fakeInvoker{}
		b := NewLambdaBackendWithClient(inv, "es", "tr")

		out, err := b.Translate(context.Background(), "hola", "fr-ca")
		if err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
		if out != "hola|tr-romance-en|tr-en-romance" {
			t.Errorf("Translate() = %q", out)
		}
		if inv.requests[1].TargetLang != "fr_CA" {
			t.Errorf("second step targetLang = %q, want fr_CA", inv.requests[1].TargetLang)
		}
	})

	t.Run("same language is identity", func(t *testing.T) {
		inv := &fakeInvoker{}
		b := NewLambdaBackendWithClient(inv, "en", "")

		out, err := b.Translate(context.Background(), "hello", "EN")
		if err != nil || out != "hello" {
			t.Errorf("Translate() = %q, %v", out, err)
		}
		if len(inv.calls) != 0 {
			t.Errorf("expected no invocations, got %v", inv.calls)
		}
	})

	t.Run("unsupported pair is rejected", func(t *testing.T) {
		tests := []struct {
			source string
			target string
		}{
			{"en", "ja"},
			{"en", "nl"},
			{"ru", "es"},
			{"zh", "en"},
		}
		for _, tt := range tests {
			inv := &fakeInvoker{}
			b := NewLambdaBackendWithClient(inv, tt.source, "")

			_, err := b.Translate(context.Background(), "hello", tt.target)
			if !errors.Is(err, ErrRejected) {
				t.Errorf("Translate(%s→%s) error = %v, want ErrRejected", tt.source, tt.target, err)
			}
			if len(inv.calls) != 0 {
				t.Errorf("Translate(%s→%s) invoked %v, want no invocations", tt.source, tt.target, inv.calls)
			}
		}
	})

	t.Run("function error is transient", func(t *testing.T) {
		fnErr := "Unhandled"
		b := NewLambdaBackendWithClient(&fakeInvoker{fnErr: &fnErr}, "en", "")

		_, err := b.Translate(context.Background(), "hello", "es")
		if err == nil || errors.Is(err, ErrRejected) {
			t.Errorf("Translate() error = %v, want transient error", err)
		}
	})

	t.Run("translator error", func(t *testing.T) {
		b := NewLambdaBackendWithClient(&fakeInvoker{respErr: "model not loaded"}, "en", "")

		_, err := b.Translate(context.Background(), "hello", "es")
		if err == nil {
			t.Fatal("Translate() should fail")
		}
	})
}
