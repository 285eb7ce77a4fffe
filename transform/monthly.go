package transform

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/excel"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// monthlyYear pins the monthly workbook to its reporting year; sheet
// names and the synthesized fecha column both use it.
const monthlyYear = 2024

var spanishMonths = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4,
	"mayo": 5, "junio": 6, "julio": 7, "agosto": 8,
	"septiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
}

var monthSheetPattern = regexp.MustCompile(
	`(?i)^(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\s+2024$`)

// Target columns, normalized form. The "equipode" entry reproduces a
// long-standing header typo in the source workbook.
var monthlyColumns = []string{
	"procedimiento",
	"numero de eventos",
	"efectos adversos",
	"utilidad promedio",
	"ingresos promedio por procedimiento",
	"equipo de promocion procedimientos menores",
	"equipode promocion laboratorio",
	"equipo de promocion medicina estetica",
	"equipo de promocion examenes diagnosticos complementarios",
	"equipo de crecimiento y calidad procedimientos menores",
	"equipo de crecimiento y calidad laboratorio",
	"equipo de crecimiento y calidad medicina estetica",
	"equipo de crecimiento y calidad examenes diagnosticos complementarios",
}

const monthlySentinel = "numero total de eventos"

// Monthly consolidates the per-month sheets of the summary workbook
// into one gold artifact.
type Monthly struct {
	store storage.Store
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewMonthly builds the monthly promoter. now defaults to time.Now
// when nil.
func NewMonthly(store storage.Store, cfg Config, log zerolog.Logger, now func() time.Time) *Monthly {
	if now == nil {
		now = time.Now
	}
	return &Monthly{store: store, cfg: cfg, log: log, now: now}
}

// Run consumes the workbook in one pass.
func (m *Monthly) Run(ctx context.Context) Result {
	raw, err := m.store.Get(ctx, m.cfg.BronzeBucket, m.cfg.MonthlyRawKey)
	if errors.Is(err, storage.ErrNotFound) {
		return noData(m.cfg.MonthlyRawKey + " does not exist")
	}
	if err != nil {
		return errorResult(fmt.Errorf("get monthly workbook: %w", err))
	}

	wb, err := excel.Open(raw)
	if err != nil {
		return errorResult(fmt.Errorf("open monthly workbook: %w", err))
	}
	defer wb.Close()

	consolidated, err := ConsolidateMonthly(wb)
	if err != nil {
		return errorResult(err)
	}
	if consolidated == nil {
		return noData("no month sheets matched")
	}

	body, err := table.EncodeCSV(consolidated, ';')
	if err != nil {
		return errorResult(fmt.Errorf("encode monthly csv: %w", err))
	}
	outKey := m.cfg.MonthlyGoldPrefix + "consolidado_procedimientos_" + m.cfg.Stamp(m.now()) + ".csv"
	if err := m.store.Put(ctx, m.cfg.GoldBucket, outKey, body, "text/csv"); err != nil {
		return errorResult(fmt.Errorf("write gold monthly: %w", err))
	}

	moved, failed := relocateSingle(ctx, m.store, m.log, m.cfg.BronzeBucket, m.cfg.MonthlyRawKey, m.cfg.MonthlyDoneKey)

	r := newResult(StatusSuccess)
	r.Rows = consolidated.Len()
	r.Output = "s3://" + m.cfg.GoldBucket + "/" + outKey
	r.Moved = moved
	r.MovedFrom = m.cfg.MonthlyRawKey
	r.MovedTo = m.cfg.MonthlyDoneKey
	r.MoveFailed = failed
	m.log.Info().Int("rows", r.Rows).Str("output", r.Output).Msg("monthly summary promoted")
	return r
}

// ConsolidateMonthly extracts and unions every "<month> 2024" sheet.
// Sheets with other names are skipped silently. Returns nil when zero
// sheets matched.
func ConsolidateMonthly(wb *excel.Workbook) (*table.Table, error) {
	var frames []*table.Table
	for _, sheetName := range wb.Sheets() {
		match := monthSheetPattern.FindStringSubmatch(strings.TrimSpace(sheetName))
		if match == nil {
			continue
		}
		monthNum := spanishMonths[strings.ToLower(match[1])]

		sheet, err := wb.Sheet(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read month sheet %q: %w", sheetName, err)
		}

		frame := consolidateSheet(sheet)
		frame.AppendColumn("fecha", fmt.Sprintf("01/%02d/%d", monthNum, monthlyYear))
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return nil, nil
	}
	return table.Concat(frames...), nil
}

// consolidateSheet truncates at the totals sentinel, projects onto the
// target columns and fills sparse team columns.
func consolidateSheet(sheet *table.Table) *table.Table {
	// Truncate strictly above the first "numero total de eventos" row.
	cut := sheet.Len()
	for r := 0; r < sheet.Len(); r++ {
		var first string
		if len(sheet.Rows[r]) > 0 {
			first = sheet.Rows[r][0]
		}
		if strings.Contains(table.NormalizeHeader(first), monthlySentinel) {
			cut = r
			break
		}
	}
	trimmed := &table.Table{Columns: sheet.Columns, Rows: sheet.Rows[:cut]}

	frame := table.Reconcile(trimmed, table.IdentityRules(monthlyColumns), monthlyColumns)

	for _, col := range monthlyColumns {
		if strings.Contains(col, "equipo") {
			fillTeamColumn(frame, col)
		}
	}
	return frame
}

// fillTeamColumn enforces the team-assignment uniformity rule: one
// distinct non-empty value broadcasts to every row, otherwise gaps are
// forward-filled from the last non-empty value above.
func fillTeamColumn(t *table.Table, col string) {
	distinct := map[string]struct{}{}
	var single string
	for r := 0; r < t.Len(); r++ {
		if v := strings.TrimSpace(t.Get(r, col)); v != "" {
			distinct[v] = struct{}{}
			single = v
		}
	}
	switch len(distinct) {
	case 0:
		return
	case 1:
		for r := 0; r < t.Len(); r++ {
			t.Set(r, col, single)
		}
	default:
		last := ""
		for r := 0; r < t.Len(); r++ {
			if v := strings.TrimSpace(t.Get(r, col)); v != "" {
				last = v
			} else if last != "" {
				t.Set(r, col, last)
			}
		}
	}
}
