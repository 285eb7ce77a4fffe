package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// predictFreshness is the recency window on the patient gold artifact:
// a patient promotion within this window means the predict run should
// follow.
const predictFreshness = 600 * time.Second

// PredictStarter kicks off the downstream predict run asynchronously
// and returns its identifier. Fire-and-forget: the quality pass does
// not wait on it.
type PredictStarter interface {
	StartPredict(ctx context.Context) (string, error)
}

// Quality runs the silver-to-gold pass over consolidated procedure
// files: responsible-party splitting and procedure classification.
type Quality struct {
	store   storage.Store
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time
	starter PredictStarter
}

// NewQuality builds the quality promoter. starter may be nil to
// disable triggering; now defaults to time.Now when nil.
func NewQuality(store storage.Store, cfg Config, log zerolog.Logger, now func() time.Time, starter PredictStarter) *Quality {
	if now == nil {
		now = time.Now
	}
	return &Quality{store: store, cfg: cfg, log: log, now: now, starter: starter}
}

// Run triggers the predict run when patient gold data is fresh, then
// promotes silver procedure files to gold.
func (q *Quality) Run(ctx context.Context) Result {
	triggered := q.maybeTriggerPredict(ctx)

	infos, err := q.store.List(ctx, q.cfg.SilverBucket, q.cfg.ProceduresSilverPrefix)
	if err != nil {
		return errorResult(fmt.Errorf("list silver procedures: %w", err))
	}
	var keys []string
	for _, info := range infos {
		if strings.HasSuffix(strings.ToLower(info.Key), ".csv") {
			keys = append(keys, info.Key)
		}
	}
	if len(keys) == 0 {
		r := noData("no CSV files under " + q.cfg.ProceduresSilverPrefix)
		r.TriggeredRun = triggered
		return r
	}

	var frames []*table.Table
	for _, key := range keys {
		raw, err := q.store.Get(ctx, q.cfg.SilverBucket, key)
		if err != nil {
			return errorResult(fmt.Errorf("get silver procedures %s: %w", key, err))
		}
		t, err := table.ReadCSV(raw, ',')
		if err != nil {
			return errorResult(fmt.Errorf("parse silver procedures %s: %w", key, err))
		}
		EnrichProcedures(t)
		frames = append(frames, t)
	}

	gold := table.Concat(frames...)
	body, err := table.EncodeCSV(gold, ',')
	if err != nil {
		return errorResult(fmt.Errorf("encode gold procedures: %w", err))
	}
	outKey := q.cfg.ProceduresGoldPrefix + "procedimientos_gold_" + q.cfg.Stamp(q.now()) + ".csv"
	if err := q.store.Put(ctx, q.cfg.GoldBucket, outKey, body, "text/csv"); err != nil {
		return errorResult(fmt.Errorf("write gold procedures: %w", err))
	}

	moved, failed := relocate(ctx, q.store, q.log, q.cfg.SilverBucket, keys, q.cfg.ProceduresSilverDonePrefix)

	r := newResult(StatusSuccess)
	r.Rows = gold.Len()
	r.Output = "s3://" + q.cfg.GoldBucket + "/" + outKey
	r.Moved = moved
	r.MoveFailed = failed
	r.TriggeredRun = triggered
	q.log.Info().Int("rows", r.Rows).Int("moved", moved).Str("output", r.Output).Msg("procedures gold written")
	return r
}

// maybeTriggerPredict starts the predict run when the newest patient
// gold artifact was modified within the freshness window. An absent
// artifact or a failed start is logged and otherwise ignored.
func (q *Quality) maybeTriggerPredict(ctx context.Context) string {
	if q.starter == nil {
		return ""
	}
	latest, ok := LatestArtifact(ctx, q.store, q.cfg.GoldBucket, q.cfg.PatientsGoldPrefix, ".csv")
	if !ok {
		return ""
	}
	age := q.now().Sub(latest.LastModified)
	if age > predictFreshness {
		return ""
	}
	id, err := q.starter.StartPredict(ctx)
	if err != nil {
		q.log.Warn().Err(err).Msg("predict trigger failed")
		return ""
	}
	q.log.Info().Str("run", id).Dur("patient_gold_age", age).Msg("predict run started")
	return id
}

// LatestArtifact returns the most recently modified object with the
// given suffix under a prefix.
func LatestArtifact(ctx context.Context, store storage.Store, bucket, prefix, suffix string) (storage.ObjectInfo, bool) {
	infos, err := store.List(ctx, bucket, prefix)
	if err != nil {
		return storage.ObjectInfo{}, false
	}
	var latest storage.ObjectInfo
	found := false
	for _, info := range infos {
		if !strings.HasSuffix(strings.ToLower(info.Key), suffix) {
			continue
		}
		if !found || info.LastModified.After(latest.LastModified) {
			latest = info
			found = true
		}
	}
	return latest, found
}

// EnrichProcedures rewrites the responsible column as its clean name,
// adds the extracted registration number and the classified procedure
// type.
func EnrichProcedures(t *table.Table) {
	t.AppendColumn("rm", "")
	t.AppendColumn("tipo de procedimiento", "")
	for r := 0; r < t.Len(); r++ {
		name, rm := SplitResponsible(t.Get(r, "medico interno responsable"))
		t.Set(r, "medico interno responsable", name)
		t.Set(r, "rm", rm)
		t.Set(r, "tipo de procedimiento", ClassifyProcedure(t.Get(r, "actividad_servicio")))
	}
}
