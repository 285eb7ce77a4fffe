// Command transform runs the three bronze-tier promotions: procedure
// batches, the patient export and the monthly summary workbook. Each
// family runs independently; one failing does not stop the others.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

func main() {
	region := flag.String("region", "us-east-1", "AWS region")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(*region))
	if err != nil {
		log.Fatal().Err(err).Msg("load aws config")
	}
	store := storage.NewS3Store(s3.NewFromConfig(awsCfg))
	cfg := transform.ConfigFromEnv()

	results := map[string]transform.Result{
		"procedimientos": runSafe(log, "procedimientos", func() transform.Result {
			return transform.NewProcedures(store, cfg, log, nil).Run(ctx)
		}),
		"pacientes": runSafe(log, "pacientes", func() transform.Result {
			return transform.NewPatients(store, cfg, log, nil).Run(ctx)
		}),
		"mensual": runSafe(log, "mensual", func() transform.Result {
			return transform.NewMonthly(store, cfg, log, nil).Run(ctx)
		}),
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("marshal results")
	}
	fmt.Println(string(out))

	for _, r := range results {
		if r.Status == transform.StatusError {
			os.Exit(1)
		}
	}
}

// runSafe converts a panicking family run into an ERROR result so the
// sibling families still execute.
func runSafe(log zerolog.Logger, family string, run func() transform.Result) (r transform.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("family", family).Msg("family run panicked")
			r = transform.Result{RunID: uuid.New(), Status: transform.StatusError, Message: fmt.Sprint(rec)}
		}
	}()
	return run()
}
