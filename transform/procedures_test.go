package transform

import (
	"context"
	"strings"
	"testing"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

func TestProceduresNoDataHasNoSideEffects(t *testing.T) {
	store := storage.NewMemStore()
	p := NewProcedures(store, DefaultConfig(), nopLog(), testClock)

	r := p.Run(context.Background())
	if r.Status != StatusNoData {
		t.Fatalf("status = %s, want NO_DATA", r.Status)
	}
	if store.MutationCount() != 0 {
		t.Fatalf("NO_DATA run performed %d store mutations: %v", store.MutationCount(), store.Calls)
	}
}

func TestProceduresPromotion(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	store := storage.NewMemStore()

	wb := buildXLSX(t, "Hoja1",
		[]string{"FECHA", "Nombre del Paciente", "Actividad / Servicio", "columna basura"},
		[][]string{
			{"5/3/2023", " Ana María López ", "Ozonoterapia lumbar", "x"},
			{"", "", "", "vacía"}, // all key cells empty: dropped
			{"01/02/2024", "José Díaz", "consulta", "y"},
		})
	store.Seed(cfg.BronzeBucket, cfg.ProceduresRawPrefix+"export1.xlsx", wb)

	r := NewProcedures(store, cfg, nopLog(), testClock).Run(ctx)
	if r.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", r.Status, r.Message)
	}
	if r.Rows != 2 {
		t.Errorf("rows = %d, want 2", r.Rows)
	}

	outKey := cfg.ProceduresSilverPrefix + "consolidado_procedimientos_010720241004.csv"
	body, err := store.Get(ctx, cfg.SilverBucket, outKey)
	if err != nil {
		t.Fatalf("silver artifact missing: %v", err)
	}
	out, err := table.ReadCSV(body, ',')
	if err != nil {
		t.Fatalf("parse silver artifact: %v", err)
	}

	want := strings.Join(procedureColumns, "|")
	if got := strings.Join(out.Columns, "|"); got != want {
		t.Errorf("columns = %q, want %q", got, want)
	}
	if got := out.Get(0, "fecha"); got != "05/03/2024" {
		t.Errorf("year-shifted fecha = %q, want 05/03/2024", got)
	}
	if got := out.Get(0, "nombre del paciente"); got != "Ana María López" {
		t.Errorf("trimmed name = %q", got)
	}
	if got := out.Get(0, "medico interno responsable"); got != "" {
		t.Errorf("synthesized column = %q, want empty", got)
	}

	// Raw input relocated: copy to done area, then deleted from ingest.
	if store.Has(cfg.BronzeBucket, cfg.ProceduresRawPrefix+"export1.xlsx") {
		t.Error("raw input still in ingest area")
	}
	if !store.Has(cfg.BronzeBucket, cfg.ProceduresDonePrefix+"export1.xlsx") {
		t.Error("raw input not in done area")
	}
}

func TestProceduresWriteThenRelocateOrdering(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	store := storage.NewMemStore()

	wb := buildXLSX(t, "Hoja1",
		[]string{"fecha", "nombre del paciente", "actividad servicio"},
		[][]string{{"01/02/2024", "Ana", "ozonoterapia"}})
	rawKey := cfg.ProceduresRawPrefix + "export1.xlsx"
	store.Seed(cfg.BronzeBucket, rawKey, wb)

	// Fail every relocation copy: the already-written artifact must
	// stand and the raw input must not be deleted.
	store.CopyHook = func(bucket, key string) error {
		return context.DeadlineExceeded
	}

	r := NewProcedures(store, cfg, nopLog(), testClock).Run(ctx)
	if r.Status != StatusSuccess {
		t.Fatalf("status = %s, want SUCCESS despite move failure", r.Status)
	}
	if len(r.MoveFailed) != 1 || r.MoveFailed[0] != rawKey {
		t.Errorf("MoveFailed = %v", r.MoveFailed)
	}
	if !store.Has(cfg.SilverBucket, cfg.ProceduresSilverPrefix+"consolidado_procedimientos_010720241004.csv") {
		t.Error("gold-bound artifact missing after move failure")
	}
	if !store.Has(cfg.BronzeBucket, rawKey) {
		t.Error("raw input deleted even though the copy failed")
	}
}

func TestProceduresMultiFileConcat(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	store := storage.NewMemStore()

	a := buildXLSX(t, "Hoja1",
		[]string{"fecha", "nombre del paciente", "actividad/servicio"},
		[][]string{{"01/02/2024", "Ana", "ozonoterapia"}})
	// Different header variants and order in the second file.
	b := buildXLSX(t, "Hoja1",
		[]string{"Actividad Servicio", "NOMBRE DEL PACIENTE"},
		[][]string{{"biopuntura", "Luis"}})
	store.Seed(cfg.BronzeBucket, cfg.ProceduresRawPrefix+"a.xlsx", a)
	store.Seed(cfg.BronzeBucket, cfg.ProceduresRawPrefix+"b.xlsx", b)

	r := NewProcedures(store, cfg, nopLog(), testClock).Run(ctx)
	if r.Status != StatusSuccess || r.Rows != 2 {
		t.Fatalf("result = %+v", r)
	}
	if r.Moved != 2 {
		t.Errorf("moved = %d, want 2", r.Moved)
	}
}
