package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// Name-part columns concatenated into nombre_completo, in order.
var patientNameParts = []string{
	"primer nombre",
	"segundo nombre",
	"primer apellido",
	"segundo apellido",
}

// Patients promotes the raw patient export straight from bronze to a
// timestamped gold artifact.
type Patients struct {
	store storage.Store
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewPatients builds the patients promoter. now defaults to time.Now
// when nil.
func NewPatients(store storage.Store, cfg Config, log zerolog.Logger, now func() time.Time) *Patients {
	if now == nil {
		now = time.Now
	}
	return &Patients{store: store, cfg: cfg, log: log, now: now}
}

// Run performs one bronze-to-gold promotion.
func (p *Patients) Run(ctx context.Context) Result {
	raw, err := p.store.Get(ctx, p.cfg.BronzeBucket, p.cfg.PatientsRawKey)
	if errors.Is(err, storage.ErrNotFound) {
		return noData(p.cfg.PatientsRawKey + " does not exist")
	}
	if err != nil {
		return errorResult(fmt.Errorf("get raw patients: %w", err))
	}

	t, err := table.ReadCSV(raw, ';')
	if err != nil {
		return errorResult(fmt.Errorf("parse raw patients: %w", err))
	}

	CleanPatients(t)

	body, err := table.EncodeCSV(t, ';')
	if err != nil {
		return errorResult(fmt.Errorf("encode patients csv: %w", err))
	}
	outKey := p.cfg.PatientsGoldPrefix + "pacientes_" + p.cfg.Stamp(p.now()) + ".csv"
	if err := p.store.Put(ctx, p.cfg.GoldBucket, outKey, body, "text/csv"); err != nil {
		return errorResult(fmt.Errorf("write gold patients: %w", err))
	}

	moved, failed := relocateSingle(ctx, p.store, p.log, p.cfg.BronzeBucket, p.cfg.PatientsRawKey, p.cfg.PatientsDoneKey)

	r := newResult(StatusSuccess)
	r.Rows = t.Len()
	r.Output = "s3://" + p.cfg.GoldBucket + "/" + outKey
	r.Moved = moved
	r.MovedFrom = p.cfg.PatientsRawKey
	r.MovedTo = p.cfg.PatientsDoneKey
	r.MoveFailed = failed
	p.log.Info().Int("rows", r.Rows).Str("output", r.Output).Msg("patients promoted")
	return r
}

// relocateSingle is relocate for families with a fixed raw key rather
// than a prefix of batch files.
func relocateSingle(ctx context.Context, store storage.Store, log zerolog.Logger, bucket, srcKey, dstKey string) (moved int, failed []string) {
	if err := store.Copy(ctx, bucket, srcKey, bucket, dstKey); err != nil {
		log.Warn().Err(err).Str("key", srcKey).Msg("relocate copy failed; input stays for reprocessing")
		return 0, []string{srcKey}
	}
	if err := store.Delete(ctx, bucket, srcKey); err != nil {
		log.Warn().Err(err).Str("key", srcKey).Msg("relocate delete failed; duplicate left in ingest area")
		return 0, []string{srcKey}
	}
	return 1, nil
}

// CleanPatients normalizes the raw patient table in place: full-name
// assembly, gender reconciliation and ingestion-date formatting.
func CleanPatients(t *table.Table) {
	for i := range t.Columns {
		t.Columns[i] = strings.TrimSpace(t.Columns[i])
	}

	buildFullName(t)
	reconcileGender(t)

	if t.HasColumn("Fecha Ingreso") {
		for r := 0; r < t.Len(); r++ {
			t.Set(r, "Fecha Ingreso", table.ReformatDate(t.Get(r, "Fecha Ingreso")))
		}
	}
}

// buildFullName concatenates up to four name-part columns into
// nombre_completo (whitespace collapsed) and drops the parts.
func buildFullName(t *table.Table) {
	// Resolve the real header behind each canonical part name.
	real := make([]string, 0, len(patientNameParts))
	for _, part := range patientNameParts {
		for _, col := range t.Columns {
			if table.NormalizeHeader(col) == part {
				real = append(real, col)
				break
			}
		}
	}

	full := make([]string, t.Len())
	for r := 0; r < t.Len(); r++ {
		parts := make([]string, 0, len(real))
		for _, col := range real {
			parts = append(parts, t.Get(r, col))
		}
		full[r] = table.CollapseSpaces(strings.Join(parts, " "))
	}

	remaining := t.Project(difference(t.Columns, real))
	*t = *remaining
	t.AppendColumn("nombre_completo", "")
	for r := 0; r < t.Len(); r++ {
		t.Set(r, "nombre_completo", full[r])
	}
}

// reconcileGender merges the two gender fields into canonical genero
// plus Sexo, each back-filling the other when one is blank or a
// numeric placeholder.
func reconcileGender(t *table.Table) {
	for i, col := range t.Columns {
		if table.NormalizeHeader(col) == "identidad de genero" && col != "genero" {
			t.Columns[i] = "genero"
			break
		}
	}
	t.AppendColumn("genero", "")
	t.AppendColumn("Sexo", "")

	for r := 0; r < t.Len(); r++ {
		sexo := strings.ToUpper(strings.TrimSpace(t.Get(r, "Sexo")))
		genero := strings.TrimSpace(t.Get(r, "genero"))
		if genero != "" {
			genero = table.TitleCase(genero)
		}

		if genero == "" {
			switch sexo {
			case "F":
				genero = "Femenino"
			case "M":
				genero = "Masculino"
			}
		}
		if sexo == "" || sexo == "0" {
			switch genero {
			case "Femenino":
				sexo = "F"
			case "Masculino":
				sexo = "M"
			}
		}

		t.Set(r, "Sexo", sexo)
		t.Set(r, "genero", genero)
	}
}

func difference(all, drop []string) []string {
	out := make([]string, 0, len(all))
	for _, c := range all {
		if !contains(drop, c) {
			out = append(out, c)
		}
	}
	return out
}
