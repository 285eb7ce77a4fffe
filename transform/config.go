// Package transform moves records through the bronze, silver and gold
// storage tiers: per-family ingest, normalization, consolidation and
// promotion, plus the silver-to-gold quality pass.
package transform

import (
	"os"
	"time"
)

// Config carries every locator, prefix and the pipeline time zone.
// It is built once and injected; nothing reads module-level state.
type Config struct {
	BronzeBucket     string
	SilverBucket     string
	GoldBucket       string
	PredictiveBucket string

	// Procedures family (clinic exports, .xlsx batches).
	ProceduresRawPrefix        string // bronze, unprocessed
	ProceduresDonePrefix       string // bronze, consumed
	ProceduresSilverPrefix     string // silver, consolidated per run
	ProceduresSilverDonePrefix string // silver, consumed by the quality pass
	ProceduresGoldPrefix       string // gold, classified

	// Patients family (single delimited export).
	PatientsRawKey     string
	PatientsDoneKey    string
	PatientsGoldPrefix string

	// Monthly summary family (one 12-sheet workbook).
	MonthlyRawKey     string
	MonthlyDoneKey    string
	MonthlyGoldPrefix string

	// Prediction output.
	PredictionKey        string
	PredictionParquetKey string

	// TZ anchors output-name timestamps.
	TZ *time.Location
}

// DefaultConfig returns the production layout.
func DefaultConfig() Config {
	return Config{
		BronzeBucket:     "serverless-architecture-smes-analytics-bronze-zone",
		SilverBucket:     "serverless-architecture-smes-analytics-silver-zone",
		GoldBucket:       "serverless-architecture-smes-analytics-gold-zone",
		PredictiveBucket: "serverless-architecture-smes-analytics-predictive",

		ProceduresRawPrefix:        "bronze1/procedimientos/",
		ProceduresDonePrefix:       "bronze2/procedimientos/",
		ProceduresSilverPrefix:     "silver1/procedimientos/",
		ProceduresSilverDonePrefix: "silver2/procedimientos/",
		ProceduresGoldPrefix:       "gold1/procedimientos/",

		PatientsRawKey:     "bronze1/pacientes/pacientes.csv",
		PatientsDoneKey:    "bronze2/pacientes/pacientes.csv",
		PatientsGoldPrefix: "gold1/pacientes/",

		MonthlyRawKey:     "bronze1/mensual_proc/mensual_procedimientos.xlsx",
		MonthlyDoneKey:    "bronze2/mensual_proc/mensual_procedimientos.xlsx",
		MonthlyGoldPrefix: "gold1/mensual_proc/",

		PredictionKey:        "prediction/recomendacion_procedimientos/recomendacion.csv",
		PredictionParquetKey: "prediction/recomendacion_procedimientos/recomendacion.parquet",

		TZ: time.FixedZone("UTC-5", -5*60*60),
	}
}

// ConfigFromEnv returns the production layout with bucket names
// overridden from the environment when set.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	envOverride(&cfg.BronzeBucket, "PIPELINE_BRONZE_BUCKET")
	envOverride(&cfg.SilverBucket, "PIPELINE_SILVER_BUCKET")
	envOverride(&cfg.GoldBucket, "PIPELINE_GOLD_BUCKET")
	envOverride(&cfg.PredictiveBucket, "PIPELINE_PREDICTIVE_BUCKET")
	return cfg
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Stamp renders the artifact timestamp (DDMMYYYYHHmm) in the pipeline
// time zone. Minute resolution: two runs for the same family within one
// minute share a name and the later write wins.
func (c Config) Stamp(now time.Time) string {
	return now.In(c.TZ).Format("020120061504")
}
