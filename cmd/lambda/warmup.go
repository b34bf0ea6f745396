package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"
)

const (
	// WarmupSource identifies warmup events from CloudWatch
	WarmupSource = "warmup"

	// WarmupDelay ensures instances overlap to create true concurrency
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent represents the CloudWatch Event payload for warmup
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is the response returned by warmup operations
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// invoker fires count asynchronous copies of payload at this function.
type invoker interface {
	InvokeSelf(ctx context.Context, count int, payload []byte) error
}

// IsWarmupEvent checks if the event is a warmup event. API Gateway events
// never carry a top-level "source" field.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var warmup WarmupEvent
	if err := json.Unmarshal(event, &warmup); err != nil {
		return nil, false
	}
	if warmup.Source != WarmupSource {
		return nil, false
	}
	if warmup.Concurrency < 0 {
		warmup.Concurrency = 0
	}
	return &warmup, true
}

// HandleWarmup processes a warmup event and optionally self-invokes
// to maintain multiple warm instances.
func HandleWarmup(ctx context.Context, inv invoker, warmup *WarmupEvent) (interface{}, error) {
	instancesWarmed := 1

	if warmup.Concurrency > 0 && inv != nil {
		// Children get concurrency=0 so they do not fan out again.
		payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
		if err == nil && inv.InvokeSelf(ctx, warmup.Concurrency, payload) == nil {
			instancesWarmed += warmup.Concurrency
		}
	}

	// Brief delay to ensure instances overlap
	select {
	case <-time.After(WarmupDelay):
	case <-ctx.Done():
	}

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}, nil
}

// selfInvoker invokes the running function through the Lambda API.
type selfInvoker struct {
	functionName string
	newClient    func(ctx context.Context) (functionInvoker, error)
}

type functionInvoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

func newSelfInvoker() *selfInvoker {
	return &selfInvoker{
		functionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		newClient: func(ctx context.Context) (functionInvoker, error) {
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, err
			}
			return lambdasdk.NewFromConfig(cfg), nil
		},
	}
}

// InvokeSelf invokes this Lambda function count times asynchronously and
// returns the first failure.
func (s *selfInvoker) InvokeSelf(ctx context.Context, count int, payload []byte) error {
	client, err := s.newClient(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(s.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
