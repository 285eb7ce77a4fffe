// Command predict runs the join-train-predict engine over the gold
// tier, publishes the recommendation table and validates the query
// catalog afterwards.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/catalog"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/predict"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

func main() {
	region := flag.String("region", "us-east-1", "AWS region")
	pgConn := flag.String("pg", os.Getenv("CATALOG_PG"), "catalog PostgreSQL connection string (empty skips validation)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(*region))
	if err != nil {
		log.Fatal().Err(err).Msg("load aws config")
	}
	store := storage.NewS3Store(s3.NewFromConfig(awsCfg))
	cfg := transform.ConfigFromEnv()

	res, err := predict.NewEngine(store, cfg, log).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("state", string(res.State)).Msg("predictive run failed")
	}

	if *pgConn != "" {
		pool, err := pgxpool.New(ctx, *pgConn)
		if err != nil {
			log.Fatal().Err(err).Msg("connect catalog")
		}
		defer pool.Close()

		svc := catalog.NewPostgresService(pool, store, log)
		prov := catalog.NewLambdaProvisioner(lambda.NewFromConfig(awsCfg))
		validation, err := catalog.NewValidator(svc, prov, cfg, log).Validate(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("catalog validation failed")
		}
		log.Info().Bool("complete", validation.Complete).Bool("provisioned", validation.Provisioned).Msg("catalog validated")
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("marshal result")
	}
	fmt.Println(string(out))
}
