package predict

import "testing"

func TestTrainPredictSeparable(t *testing.T) {
	var examples []Example
	for i := 0; i < 8; i++ {
		examples = append(examples,
			Example{Gender: "Femenino", Age: float64(25 + i), Label: "ozonoterapia"},
			Example{Gender: "Masculino", Age: float64(55 + i), Label: "sueroterapia"},
		)
	}
	m := Train(examples)

	if got := m.Predict("Femenino", 28); got != "ozonoterapia" {
		t.Errorf("Predict(Femenino, 28) = %q", got)
	}
	if got := m.Predict("Masculino", 60); got != "sueroterapia" {
		t.Errorf("Predict(Masculino, 60) = %q", got)
	}
}

func TestPredictUnknownGenderCategory(t *testing.T) {
	m := Train([]Example{
		{Gender: "Femenino", Age: 30, Label: "ozonoterapia"},
		{Gender: "Masculino", Age: 50, Label: "sueroterapia"},
	})
	// A category never seen in training encodes to all zeros; the
	// model still returns some known class rather than failing.
	got := m.Predict("No binario", 40)
	if got != "ozonoterapia" && got != "sueroterapia" {
		t.Errorf("Predict(unseen gender) = %q, not a known class", got)
	}
}

func TestTrainSingleClass(t *testing.T) {
	m := Train([]Example{{Gender: "Femenino", Age: 30, Label: "ozonoterapia"}})
	if got := m.Predict("Femenino", 30); got != "ozonoterapia" {
		t.Errorf("single-class predict = %q", got)
	}
	if got := m.Predict("Masculino", 80); got != "ozonoterapia" {
		t.Errorf("single-class predict off-sample = %q", got)
	}
}

func TestEvaluateReport(t *testing.T) {
	var examples []Example
	for i := 0; i < 8; i++ {
		examples = append(examples,
			Example{Gender: "Femenino", Age: float64(25 + i), Label: "ozonoterapia"},
			Example{Gender: "Masculino", Age: float64(55 + i), Label: "sueroterapia"},
		)
	}
	m := Train(examples)
	r := Evaluate(m, examples)

	if r.Accuracy != 1.0 {
		t.Errorf("accuracy on separable training data = %v", r.Accuracy)
	}
	if r.TestRows != 16 {
		t.Errorf("test rows = %d", r.TestRows)
	}
	if len(r.Classes) != 2 {
		t.Fatalf("classes = %d", len(r.Classes))
	}
	for _, c := range r.Classes {
		if c.Precision != 1.0 || c.Recall != 1.0 || c.F1 != 1.0 || c.Support != 8 {
			t.Errorf("metrics for %s = %+v", c.Name, c)
		}
	}
}

func TestEvaluateEmptyTestSet(t *testing.T) {
	m := Train([]Example{{Gender: "Femenino", Age: 30, Label: "ozonoterapia"}})
	r := Evaluate(m, nil)
	if r.Accuracy != 0 || r.TestRows != 0 {
		t.Errorf("empty report = %+v", r)
	}
}
