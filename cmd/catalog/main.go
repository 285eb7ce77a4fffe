// Command catalog provisions the query catalog: it creates the
// analytics database, registers one crawler per published dataset and
// optionally runs every crawl.
package main

import (
	"context"
	"flag"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/catalog"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

func main() {
	region := flag.String("region", "us-east-1", "AWS region")
	pgConn := flag.String("pg", os.Getenv("CATALOG_PG"), "catalog PostgreSQL connection string")
	crawl := flag.Bool("crawl", false, "start every crawler after provisioning")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	if *pgConn == "" {
		log.Fatal().Msg("-pg or CATALOG_PG is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(*region))
	if err != nil {
		log.Fatal().Err(err).Msg("load aws config")
	}
	store := storage.NewS3Store(s3.NewFromConfig(awsCfg))
	cfg := transform.ConfigFromEnv()

	pool, err := pgxpool.New(ctx, *pgConn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect catalog")
	}
	defer pool.Close()
	svc := catalog.NewPostgresService(pool, store, log)

	if err := svc.EnsureDatabase(ctx, catalog.DatabaseName); err != nil {
		log.Fatal().Err(err).Msg("ensure database")
	}
	for _, ds := range catalog.Datasets(cfg) {
		name := ds.CrawlerName()
		if err := svc.EnsureCrawler(ctx, name, ds); err != nil {
			log.Fatal().Err(err).Str("crawler", name).Msg("ensure crawler")
		}
		log.Info().Str("crawler", name).Str("dataset", ds.Name).Msg("crawler registered")

		if *crawl {
			if err := svc.StartCrawler(ctx, name); err != nil {
				log.Fatal().Err(err).Str("crawler", name).Msg("crawl failed")
			}
		}
	}
	log.Info().Msg("catalog provisioned")
}
