// Command quality promotes consolidated procedure files from silver to
// gold and, when the patient gold table is fresh, kicks off the
// predictive run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

// lambdaStarter fires the predict function asynchronously.
type lambdaStarter struct {
	client   *lambda.Client
	function string
}

func (s *lambdaStarter) StartPredict(ctx context.Context) (string, error) {
	out, err := s.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(s.function),
		InvocationType: types.InvocationTypeEvent,
		Payload:        []byte("{}"),
	})
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", s.function, err)
	}
	return fmt.Sprintf("%s:%d", s.function, out.StatusCode), nil
}

func main() {
	region := flag.String("region", "us-east-1", "AWS region")
	predictFn := flag.String("predict-function", "", "Lambda function starting the predictive run (empty disables the trigger)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(*region))
	if err != nil {
		log.Fatal().Err(err).Msg("load aws config")
	}
	store := storage.NewS3Store(s3.NewFromConfig(awsCfg))
	cfg := transform.ConfigFromEnv()

	var starter transform.PredictStarter
	if *predictFn != "" {
		starter = &lambdaStarter{client: lambda.NewFromConfig(awsCfg), function: *predictFn}
	}

	r := transform.NewQuality(store, cfg, log, nil, starter).Run(ctx)
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("marshal result")
	}
	fmt.Println(string(out))
	if r.Status == transform.StatusError {
		os.Exit(1)
	}
}
