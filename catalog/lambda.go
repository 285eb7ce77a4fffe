package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaProvisioner invokes the provisioning routine as a Lambda
// function, synchronously.
type LambdaProvisioner struct {
	client *lambda.Client
}

// NewLambdaProvisioner wraps a configured Lambda client.
func NewLambdaProvisioner(client *lambda.Client) *LambdaProvisioner {
	return &LambdaProvisioner{client: client}
}

func (p *LambdaProvisioner) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	out, err := p.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(name),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", name, err)
	}
	if out.FunctionError != nil {
		return out.Payload, fmt.Errorf("invoke %s: function error %s", name, *out.FunctionError)
	}
	return out.Payload, nil
}
