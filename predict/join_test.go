package predict

import (
	"testing"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

func patientTable(rows ...[]string) *table.Table {
	t := table.New("Id Paciente", "nombre_completo", "genero", "Edad actual", "name_norm", "age_years")
	for _, r := range rows {
		t.AppendRow(r...)
	}
	return t
}

func procedureTable(rows ...[]string) *table.Table {
	t := table.New("nombre del paciente", "tipo de procedimiento", "name_norm")
	for _, r := range rows {
		t.AppendRow(r...)
	}
	return t
}

func TestJoinMatchesOnNormalizedName(t *testing.T) {
	patients := patientTable(
		[]string{"1", "Ana María López", "Femenino", "30 años", "ANA MARIA LOPEZ", "30"},
		[]string{"2", "Luis Gil", "Masculino", "45", "LUIS GIL", "45"},
	)
	procedures := procedureTable(
		[]string{"ANA MARIA LOPEZ", "ozonoterapia", "ANA MARIA LOPEZ"},
	)

	got := Join(patients, procedures)
	if len(got) != 1 {
		t.Fatalf("joined %d rows, want 1", len(got))
	}
	want := Example{Name: "ANA MARIA LOPEZ", Gender: "Femenino", Age: 30, Label: "ozonoterapia"}
	if got[0] != want {
		t.Errorf("joined row = %+v, want %+v", got[0], want)
	}
}

func TestJoinDropsRowsMissingFeatures(t *testing.T) {
	patients := patientTable(
		[]string{"1", "Ana López", "", "30", "ANA LOPEZ", "30"},   // no gender
		[]string{"2", "Luis Gil", "Masculino", "", "LUIS GIL", ""}, // no age
		[]string{"3", "Eva Cruz", "Femenino", "52", "EVA CRUZ", "52"},
	)
	procedures := procedureTable(
		[]string{"Ana López", "ozonoterapia", "ANA LOPEZ"},
		[]string{"Luis Gil", "sueroterapia", "LUIS GIL"},
		[]string{"Eva Cruz", "biopuntura", "EVA CRUZ"},
	)

	got := Join(patients, procedures)
	if len(got) != 1 || got[0].Name != "EVA CRUZ" {
		t.Fatalf("joined = %+v, want only EVA CRUZ", got)
	}
}

func TestJoinSkipsUnlabeledProcedureRows(t *testing.T) {
	patients := patientTable(
		[]string{"1", "Ana López", "Femenino", "30", "ANA LOPEZ", "30"},
	)
	procedures := procedureTable(
		[]string{"Ana López", "", "ANA LOPEZ"},
		[]string{"Ana López", "sueroterapia", "ANA LOPEZ"},
	)

	got := Join(patients, procedures)
	if len(got) != 1 {
		t.Fatalf("joined %d rows, want 1", len(got))
	}
	if got[0].Label != "sueroterapia" {
		t.Errorf("label = %q, want the first labeled row", got[0].Label)
	}
}

func TestJoinKeepsFirstOccurrence(t *testing.T) {
	patients := patientTable(
		[]string{"1", "Ana López", "Femenino", "30", "ANA LOPEZ", "30"},
		[]string{"1b", "Ana López", "Femenino", "31", "ANA LOPEZ", "31"},
	)
	procedures := procedureTable(
		[]string{"Ana López", "ozonoterapia", "ANA LOPEZ"},
		[]string{"Ana López", "sueroterapia", "ANA LOPEZ"},
	)

	got := Join(patients, procedures)
	if len(got) != 1 {
		t.Fatalf("joined %d rows, want 1", len(got))
	}
	if got[0].Age != 30 || got[0].Label != "ozonoterapia" {
		t.Errorf("kept %+v, want first patient row and first procedure label", got[0])
	}
}
