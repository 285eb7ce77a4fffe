package transform

import (
	"strings"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// OtherProcedure is the catch-all category.
const OtherProcedure = "otro"

// procedureRule maps a keyword phrase to its procedure category.
// Rules are evaluated in order; the first contained keyword wins.
type procedureRule struct {
	keyword  string
	category string
}

var procedureRules = []procedureRule{
	{"biopuntura", "biopuntura"},
	{"ozonoterapia", "ozonoterapia"},
	{"sueroterapia", "sueroterapia"},
	{"terapia neural", "terapia neural"},
}

// ProcedureCategories lists every category the classifier can emit,
// catch-all included.
func ProcedureCategories() []string {
	out := make([]string, 0, len(procedureRules)+1)
	for _, r := range procedureRules {
		out = append(out, r.category)
	}
	return append(out, OtherProcedure)
}

// ClassifyProcedure maps a free-text activity description to a
// procedure category by accent-insensitive substring match. Total and
// deterministic: anything unrecognized is OtherProcedure.
func ClassifyProcedure(activity string) string {
	normalized := table.RemoveAccents(strings.ToLower(activity))
	for _, r := range procedureRules {
		if strings.Contains(normalized, r.keyword) {
			return r.category
		}
	}
	return OtherProcedure
}
