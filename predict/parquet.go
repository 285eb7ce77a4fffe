package predict

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// recommendationRow mirrors one prediction row for analytics engines.
// Age is optional so the unknown-fallback rows keep a null instead of
// a fake zero.
type recommendationRow struct {
	PatientID string   `parquet:"id_paciente"`
	FullName  string   `parquet:"nombre_completo"`
	Gender    string   `parquet:"genero"`
	AgeYears  *float64 `parquet:"age_years,optional"`
	Predicted string   `parquet:"predicted_tipo_procedimiento"`
}

// writeMirror writes the prediction table as Parquet next to the CSV.
func (e *Engine) writeMirror(ctx context.Context, predictions *table.Table) error {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[recommendationRow](&buf, parquet.Compression(&parquet.Snappy))

	rows := make([]recommendationRow, 0, predictions.Len())
	for r := 0; r < predictions.Len(); r++ {
		row := recommendationRow{
			PatientID: predictions.Get(r, "Id Paciente"),
			FullName:  predictions.Get(r, "nombre_completo"),
			Gender:    predictions.Get(r, "genero"),
			Predicted: predictions.Get(r, "predicted_tipo_procedimiento"),
		}
		if v, err := strconv.ParseFloat(predictions.Get(r, "age_years"), 64); err == nil {
			row.AgeYears = &v
		}
		rows = append(rows, row)
	}
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}

	if err := e.store.Put(ctx, e.cfg.PredictiveBucket, e.cfg.PredictionParquetKey, buf.Bytes(), "application/vnd.apache.parquet"); err != nil {
		return fmt.Errorf("put parquet mirror: %w", err)
	}
	return nil
}
