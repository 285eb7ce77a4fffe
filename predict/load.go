package predict

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/transform"
)

// LoadPatients reads the newest patient gold artifact and derives the
// join key and numeric age. Unparseable ages come out empty, which
// later routes the row to the unknown fallback.
func LoadPatients(ctx context.Context, store storage.Store, cfg transform.Config) (*table.Table, error) {
	latest, ok := transform.LatestArtifact(ctx, store, cfg.GoldBucket, cfg.PatientsGoldPrefix, ".csv")
	if !ok {
		return nil, fmt.Errorf("no patient artifact under %s", cfg.PatientsGoldPrefix)
	}
	raw, err := store.Get(ctx, cfg.GoldBucket, latest.Key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", latest.Key, err)
	}
	t, err := table.ReadCSV(raw, ';')
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", latest.Key, err)
	}

	t.AppendColumn("name_norm", "")
	t.AppendColumn("age_years", "")
	for r := 0; r < t.Len(); r++ {
		t.Set(r, "name_norm", table.NormalizeKey(t.Get(r, "nombre_completo")))
		if years, ok := table.ParseAge(t.Get(r, "Edad actual")); ok {
			t.Set(r, "age_years", strconv.FormatFloat(years, 'f', -1, 64))
		}
	}
	return t, nil
}

// LoadProcedures reads every procedure gold CSV and concatenates them
// with the join key derived from the raw patient name.
func LoadProcedures(ctx context.Context, store storage.Store, cfg transform.Config) (*table.Table, error) {
	infos, err := store.List(ctx, cfg.GoldBucket, cfg.ProceduresGoldPrefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", cfg.ProceduresGoldPrefix, err)
	}

	var frames []*table.Table
	for _, info := range infos {
		if !strings.HasSuffix(strings.ToLower(info.Key), ".csv") {
			continue
		}
		raw, err := store.Get(ctx, cfg.GoldBucket, info.Key)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", info.Key, err)
		}
		t, err := table.ReadCSV(raw, ',')
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", info.Key, err)
		}
		frames = append(frames, t)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no procedure artifacts under %s", cfg.ProceduresGoldPrefix)
	}

	out := table.Concat(frames...)
	out.AppendColumn("name_norm", "")
	for r := 0; r < out.Len(); r++ {
		out.Set(r, "name_norm", table.NormalizeKey(out.Get(r, "nombre del paciente")))
	}
	return out, nil
}
