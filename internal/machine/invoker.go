package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/regionsync/regionsync/internal/logger"
)

// Invoker calls the portal's helper Lambda functions: the VPC project
// factory, the VPC teardown function and the continuous-capture readiness
// probe.
type Invoker struct {
	client *lambda.Client
	log    *logger.Logger
}

// NewInvoker creates a Lambda invoker.
func NewInvoker(client *lambda.Client, log *logger.Logger) *Invoker {
	return &Invoker{client: client, log: log}
}

// Invoke calls the named function with a JSON-encoded payload and returns the
// raw response payload.
func (i *Invoker) Invoke(ctx context.Context, function string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload for %s: %w", function, err)
	}

	i.log.Debugf("Invoke %s", function)
	out, err := i.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(function),
		Payload:      body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke %s: %w", function, err)
	}
	if out.FunctionError != nil {
		return "", fmt.Errorf("function %s failed: %s", function, string(out.Payload))
	}
	return string(out.Payload), nil
}

// InvokeBool calls the named function and parses a boolean response.
func (i *Invoker) InvokeBool(ctx context.Context, function string, payload any) (bool, error) {
	out, err := i.Invoke(ctx, function, payload)
	if err != nil {
		return false, err
	}
	ready, err := strconv.ParseBool(out)
	if err != nil {
		return false, fmt.Errorf("function %s returned a non-boolean response %q: %w", function, out, err)
	}
	return ready, nil
}
