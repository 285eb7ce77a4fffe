package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/excel"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// Canonical procedure schema. Output columns always appear in exactly
// this order regardless of what each source file carried.
var procedureColumns = []string{
	"fecha",
	"nombre del paciente",
	"numero de documento - historia clinica",
	"medico interno responsable",
	"medico externo responsable",
	"promotor de salud",
	"actividad_servicio",
}

// Header variants seen across clinic exports, normalized form.
var procedureHeaderRules = []table.HeaderRule{
	table.Rule("fecha", "fecha"),
	table.Rule("nombre del paciente", "nombre del paciente"),
	table.Rule("numero de documento - historia clinica", "numero de documento - historia clinica"),
	table.Rule("medico interno responsable", "medico interno responsable"),
	table.Rule("medico externo responsable", "medico externo responsable"),
	table.Rule("promotor de salud", "promotor de salud"),
	table.Rule("actividad/servicio", "actividad_servicio"),
	table.Rule("actividad / servicio", "actividad_servicio"),
	table.Rule("actividad servicio", "actividad_servicio"),
}

// Rows whose key cells are all empty never reach an output tier.
var procedureKeyColumns = []string{
	"nombre del paciente",
	"numero de documento - historia clinica",
	"actividad_servicio",
}

// Procedures consolidates raw clinic .xlsx exports from the bronze tier
// into one dated silver artifact per run.
type Procedures struct {
	store storage.Store
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewProcedures builds the procedures promoter. now defaults to
// time.Now when nil.
func NewProcedures(store storage.Store, cfg Config, log zerolog.Logger, now func() time.Time) *Procedures {
	if now == nil {
		now = time.Now
	}
	return &Procedures{store: store, cfg: cfg, log: log, now: now}
}

// Run performs one bronze-to-silver promotion.
func (p *Procedures) Run(ctx context.Context) Result {
	infos, err := p.store.List(ctx, p.cfg.BronzeBucket, p.cfg.ProceduresRawPrefix)
	if err != nil {
		return errorResult(fmt.Errorf("list raw procedures: %w", err))
	}
	var keys []string
	for _, info := range infos {
		if strings.HasSuffix(strings.ToLower(info.Key), ".xlsx") {
			keys = append(keys, info.Key)
		}
	}
	if len(keys) == 0 {
		return noData("no .xlsx files under " + p.cfg.ProceduresRawPrefix)
	}

	var frames []*table.Table
	var skipped []string
	for _, key := range keys {
		frame, err := p.loadFile(ctx, key)
		if err != nil {
			// One unreadable file must not abort the batch.
			p.log.Warn().Err(err).Str("key", key).Msg("skipping unreadable procedures file")
			skipped = append(skipped, key)
			continue
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return errorResult(fmt.Errorf("all %d procedure files unreadable", len(keys)))
	}

	consolidated := table.Concat(frames...)
	consolidated.DropEmptyKeyRows(procedureKeyColumns)

	body, err := table.EncodeCSV(consolidated, ',')
	if err != nil {
		return errorResult(fmt.Errorf("encode procedures csv: %w", err))
	}
	outKey := p.cfg.ProceduresSilverPrefix + "consolidado_procedimientos_" + p.cfg.Stamp(p.now()) + ".csv"
	if err := p.store.Put(ctx, p.cfg.SilverBucket, outKey, body, "text/csv"); err != nil {
		return errorResult(fmt.Errorf("write silver procedures: %w", err))
	}

	// Relocate only files that were actually consumed; skipped ones
	// stay in bronze for the next attempt.
	consumed := make([]string, 0, len(keys))
	for _, key := range keys {
		if !contains(skipped, key) {
			consumed = append(consumed, key)
		}
	}
	moved, failed := relocate(ctx, p.store, p.log, p.cfg.BronzeBucket, consumed, p.cfg.ProceduresDonePrefix)

	r := newResult(StatusSuccess)
	r.Rows = consolidated.Len()
	r.Output = "s3://" + p.cfg.SilverBucket + "/" + outKey
	r.Moved = moved
	r.MoveFailed = failed
	if len(skipped) > 0 {
		r.Message = fmt.Sprintf("%d unreadable files skipped", len(skipped))
	}
	p.log.Info().Int("rows", r.Rows).Int("moved", moved).Str("output", r.Output).Msg("procedures promoted")
	return r
}

// loadFile reads one raw export and reconciles it onto the canonical
// procedure schema.
func (p *Procedures) loadFile(ctx context.Context, key string) (*table.Table, error) {
	raw, err := p.store.Get(ctx, p.cfg.BronzeBucket, key)
	if err != nil {
		return nil, err
	}
	wb, err := excel.Open(raw)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.First()
	if err != nil {
		return nil, err
	}

	frame := table.Reconcile(sheet, procedureHeaderRules, procedureColumns)
	frame.TrimCells()

	// Dates arrive day-first in assorted layouts; some 2023 exports
	// carry last year's date on this year's data, so shift those.
	for r := 0; r < frame.Len(); r++ {
		d, ok := table.ParseDate(frame.Get(r, "fecha"))
		if !ok {
			frame.Set(r, "fecha", "")
			continue
		}
		if d.Year() == 2023 {
			d = d.AddDate(1, 0, 0)
		}
		frame.Set(r, "fecha", table.FormatDate(d))
	}
	return frame, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
