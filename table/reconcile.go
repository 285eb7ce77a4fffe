package table

// HeaderRule maps one known header variant (already in normalized form,
// see NormalizeHeader) to its canonical column name. Rules are evaluated
// in order and the first match wins.
type HeaderRule struct {
	Variant   string
	Canonical string
}

// Rule is a convenience constructor for HeaderRule.
func Rule(variant, canonical string) HeaderRule {
	return HeaderRule{Variant: variant, Canonical: canonical}
}

// Reconcile maps a source table onto the canonical schema. Every input
// header is normalized and looked up in the rule list; matched columns
// are renamed to canonical form, unmatched columns are dropped, and
// canonical columns with no source are synthesized empty. The output
// column order is always exactly the canonical list, so heterogeneous
// batches concatenate deterministically. Missing or extra source
// columns are blank data, never an error.
func Reconcile(t *Table, rules []HeaderRule, canonical []string) *Table {
	// canonical name -> source column index (first source wins)
	src := make(map[string]int, len(canonical))
	for i, h := range t.Columns {
		nh := NormalizeHeader(h)
		for _, r := range rules {
			if r.Variant == nh {
				if _, taken := src[r.Canonical]; !taken {
					src[r.Canonical] = i
				}
				break
			}
		}
	}

	out := New(canonical...)
	for r := range t.Rows {
		row := make([]string, len(canonical))
		for i, c := range canonical {
			if si, ok := src[c]; ok && si < len(t.Rows[r]) {
				row[i] = t.Rows[r][si]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// IdentityRules builds a rule per canonical name mapping the normalized
// name to itself, for sources whose headers already carry the canonical
// names modulo accents and case.
func IdentityRules(canonical []string) []HeaderRule {
	rules := make([]HeaderRule, 0, len(canonical))
	for _, c := range canonical {
		rules = append(rules, Rule(NormalizeHeader(c), c))
	}
	return rules
}
