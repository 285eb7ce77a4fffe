package predict

// ClassMetrics is one class's row in the evaluation report. Undefined
// ratios (no predictions or no support) report as zero.
type ClassMetrics struct {
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is the held-out evaluation of a trained model. Recorded for
// observability only; publication never depends on it.
type Report struct {
	Accuracy float64
	TestRows int
	Classes  []ClassMetrics
}

// Evaluate scores the model on held-out examples. An empty test set
// (every class too small to stratify) yields an all-zero report.
func Evaluate(m *Model, test []Example) Report {
	r := Report{TestRows: len(test)}

	truePos := make(map[string]int)
	falsePos := make(map[string]int)
	support := make(map[string]int)
	correct := 0
	for _, ex := range test {
		got := m.Predict(ex.Gender, ex.Age)
		support[ex.Label]++
		if got == ex.Label {
			truePos[got]++
			correct++
		} else {
			falsePos[got]++
		}
	}
	if len(test) > 0 {
		r.Accuracy = float64(correct) / float64(len(test))
	}

	for _, class := range m.Classes() {
		cm := ClassMetrics{Name: class, Support: support[class]}
		if predicted := truePos[class] + falsePos[class]; predicted > 0 {
			cm.Precision = float64(truePos[class]) / float64(predicted)
		}
		if cm.Support > 0 {
			cm.Recall = float64(truePos[class]) / float64(cm.Support)
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		r.Classes = append(r.Classes, cm)
	}
	return r
}
