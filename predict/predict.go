// Package predict joins the patient and procedure gold tables, fits a
// procedure-type classifier and publishes one recommendation per
// patient.
package predict

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

// Unknown is the prediction for patients missing a usable gender or
// age. Emitted verbatim in the output file.
const Unknown = "unknown"

// State tracks how far a run progressed. Runs advance strictly
// forward; a failed run reports the last state it reached.
type State string

const (
	StateLoaded    State = "LOADED"
	StateJoined    State = "JOINED"
	StateTrained   State = "TRAINED"
	StatePredicted State = "PREDICTED"
	StatePublished State = "PUBLISHED"
)

// Result summarizes one engine run.
type Result struct {
	RunID      uuid.UUID `json:"run_id"`
	State      State     `json:"state"`
	Patients   int       `json:"patients"`
	Procedures int       `json:"procedures"`
	Joined     int       `json:"joined"`
	Accuracy   float64   `json:"accuracy"`
	Output     string    `json:"output,omitempty"`
	Mirror     string    `json:"mirror,omitempty"`
}

// Engine runs the join-train-predict pipeline over the gold tier.
type Engine struct {
	store storage.Store
	cfg   transform.Config
	log   zerolog.Logger
}

// NewEngine builds the engine.
func NewEngine(store storage.Store, cfg transform.Config, log zerolog.Logger) *Engine {
	return &Engine{store: store, cfg: cfg, log: log}
}

// Run executes one full pass. The prediction write is the only fatal
// step after loading: model quality never gates publication, and the
// Parquet mirror is best-effort.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New()}

	patients, err := LoadPatients(ctx, e.store, e.cfg)
	if err != nil {
		return res, fmt.Errorf("load patients: %w", err)
	}
	procedures, err := LoadProcedures(ctx, e.store, e.cfg)
	if err != nil {
		return res, fmt.Errorf("load procedures: %w", err)
	}
	res.State = StateLoaded
	res.Patients = patients.Len()
	res.Procedures = procedures.Len()

	examples := Join(patients, procedures)
	res.State = StateJoined
	res.Joined = len(examples)
	e.log.Info().Int("patients", res.Patients).Int("procedures", res.Procedures).
		Int("with_history", res.Joined).Msg("gold tables joined")

	var model *Model
	if len(examples) > 0 {
		train, test := Split(examples, testFraction, splitSeed)
		model = Train(train)
		report := Evaluate(model, test)
		res.Accuracy = report.Accuracy
		logReport(e.log, report)
	} else {
		e.log.Warn().Msg("no trainable rows; every prediction falls back to unknown")
	}
	res.State = StateTrained

	out := buildPredictions(patients, model)
	res.State = StatePredicted

	body, err := table.EncodeCSV(out, ',')
	if err != nil {
		return res, fmt.Errorf("encode predictions: %w", err)
	}
	if err := e.store.Put(ctx, e.cfg.PredictiveBucket, e.cfg.PredictionKey, body, "text/csv"); err != nil {
		return res, fmt.Errorf("publish predictions: %w", err)
	}
	res.State = StatePublished
	res.Output = "s3://" + e.cfg.PredictiveBucket + "/" + e.cfg.PredictionKey
	e.log.Info().Int("rows", out.Len()).Str("output", res.Output).Msg("predictions published")

	if err := e.writeMirror(ctx, out); err != nil {
		e.log.Warn().Err(err).Msg("parquet mirror failed; csv output stands")
	} else {
		res.Mirror = "s3://" + e.cfg.PredictiveBucket + "/" + e.cfg.PredictionParquetKey
	}
	return res, nil
}

// buildPredictions scores every patient row. Rows that never made it
// into the training join still get a prediction as long as their
// features parse.
func buildPredictions(patients *table.Table, model *Model) *table.Table {
	out := table.New("Id Paciente", "nombre_completo", "genero", "age_years", "predicted_tipo_procedimiento")
	for r := 0; r < patients.Len(); r++ {
		gender := patients.Get(r, "genero")
		ageRaw := patients.Get(r, "age_years")
		age, ageErr := strconv.ParseFloat(ageRaw, 64)

		predicted := Unknown
		if model != nil && gender != "" && ageErr == nil {
			predicted = model.Predict(gender, age)
		}
		out.AppendRow(
			patients.Get(r, "Id Paciente"),
			patients.Get(r, "nombre_completo"),
			gender,
			ageRaw,
			predicted,
		)
	}
	return out
}

func logReport(log zerolog.Logger, r Report) {
	ev := log.Info().Float64("accuracy", r.Accuracy).Int("test_rows", r.TestRows)
	for _, c := range r.Classes {
		ev = ev.Str(c.Name, fmt.Sprintf("p=%.2f r=%.2f f1=%.2f n=%d", c.Precision, c.Recall, c.F1, c.Support))
	}
	ev.Msg("model evaluated")
}
