// Package main is the entry point for the translate gateway Lambda function.
// API Gateway proxy events are served by the same gin engine as the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/app"
	"github.com/pricofy/translate-gateway/internal/config"
	"github.com/pricofy/translate-gateway/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(viper.New(), "")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	h := &eventHandler{
		proxy:  ginadapter.New(a.Engine).ProxyWithContext,
		drain:  a.Service.Wait,
		warmer: newSelfInvoker(),
		logger: logger,
	}
	lambda.Start(h.handle)
}

// proxyFunc serves one API Gateway proxy event.
type proxyFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// eventHandler dispatches raw Lambda events.
type eventHandler struct {
	proxy  proxyFunc
	drain  func(context.Context) error
	warmer invoker
	logger *zap.Logger
}

func (h *eventHandler) handle(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, h.warmer, warmup)
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	resp, err := h.proxy(ctx, req)
	if err != nil {
		return nil, err
	}

	// The execution environment freezes after returning, so cache writes
	// must land first.
	if h.drain != nil {
		if err := h.drain(ctx); err != nil {
			h.logger.Warn("Pending cache writes abandoned", zap.Error(err))
		}
	}
	return resp, nil
}
