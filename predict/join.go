package predict

import (
	"strconv"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// Example is one trainable patient: features plus the procedure-type
// label taken from their history.
type Example struct {
	Name   string // normalized join key
	Gender string
	Age    float64
	Label  string
}

// Join inner-joins patients to procedures on name_norm. Rows missing
// gender, age or a procedure type are dropped, and duplicate patients
// collapse to their first occurrence, so each patient contributes at
// most one example labeled with one representative procedure.
func Join(patients, procedures *table.Table) []Example {
	// First labeled procedure per key, in row order. Rows without a
	// procedure type never label a patient.
	label := make(map[string]string, procedures.Len())
	for r := 0; r < procedures.Len(); r++ {
		key := procedures.Get(r, "name_norm")
		tipo := procedures.Get(r, "tipo de procedimiento")
		if key == "" || tipo == "" {
			continue
		}
		if _, seen := label[key]; !seen {
			label[key] = tipo
		}
	}

	var out []Example
	seen := make(map[string]bool, patients.Len())
	for r := 0; r < patients.Len(); r++ {
		key := patients.Get(r, "name_norm")
		if key == "" || seen[key] {
			continue
		}
		tipo, ok := label[key]
		if !ok {
			continue
		}
		gender := patients.Get(r, "genero")
		age, err := strconv.ParseFloat(patients.Get(r, "age_years"), 64)
		if gender == "" || err != nil {
			continue
		}
		seen[key] = true
		out = append(out, Example{Name: key, Gender: gender, Age: age, Label: tipo})
	}
	return out
}
