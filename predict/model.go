package predict

import (
	"math"
	"sort"
)

const (
	gdEpochs       = 500
	gdLearningRate = 0.1
)

// Model is a multinomial logistic classifier over gender and age.
// Gender is one-hot encoded against the categories seen at training
// time; an unseen gender encodes to all zeros instead of failing. Age
// is standardized with the training mean and deviation.
type Model struct {
	classes []string
	genders []string
	ageMean float64
	ageStd  float64
	// weights[class] = one weight per feature plus a trailing bias.
	weights [][]float64
}

// Classes returns the label set in training order.
func (m *Model) Classes() []string {
	return m.classes
}

// Train fits the model by full-batch gradient descent on the softmax
// cross-entropy. Zero initialization, sorted categories and a fixed
// epoch count make repeated runs bit-identical.
func Train(examples []Example) *Model {
	m := &Model{
		classes: sortedUnique(examples, func(e Example) string { return e.Label }),
		genders: sortedUnique(examples, func(e Example) string { return e.Gender }),
	}

	var sum, sumSq float64
	for _, ex := range examples {
		sum += ex.Age
		sumSq += ex.Age * ex.Age
	}
	n := float64(len(examples))
	m.ageMean = sum / n
	m.ageStd = math.Sqrt(sumSq/n - m.ageMean*m.ageMean)
	if m.ageStd == 0 {
		m.ageStd = 1
	}

	nFeat := len(m.genders) + 2 // one-hot + age + bias
	m.weights = make([][]float64, len(m.classes))
	for i := range m.weights {
		m.weights[i] = make([]float64, nFeat)
	}

	classIdx := make(map[string]int, len(m.classes))
	for i, c := range m.classes {
		classIdx[c] = i
	}
	features := make([][]float64, len(examples))
	for i, ex := range examples {
		features[i] = m.encode(ex.Gender, ex.Age)
	}

	grad := make([][]float64, len(m.classes))
	for i := range grad {
		grad[i] = make([]float64, nFeat)
	}
	for epoch := 0; epoch < gdEpochs; epoch++ {
		for i := range grad {
			for j := range grad[i] {
				grad[i][j] = 0
			}
		}
		for i, ex := range examples {
			probs := m.probs(features[i])
			target := classIdx[ex.Label]
			for c := range m.classes {
				delta := probs[c]
				if c == target {
					delta -= 1
				}
				for j, f := range features[i] {
					grad[c][j] += delta * f
				}
			}
		}
		for c := range m.weights {
			for j := range m.weights[c] {
				m.weights[c][j] -= gdLearningRate * grad[c][j] / n
			}
		}
	}
	return m
}

// Predict returns the most probable class for one patient. Ties break
// toward the lexically first class.
func (m *Model) Predict(gender string, age float64) string {
	probs := m.probs(m.encode(gender, age))
	best := 0
	for c := 1; c < len(probs); c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return m.classes[best]
}

func (m *Model) encode(gender string, age float64) []float64 {
	x := make([]float64, len(m.genders)+2)
	for i, g := range m.genders {
		if g == gender {
			x[i] = 1
			break
		}
	}
	x[len(m.genders)] = (age - m.ageMean) / m.ageStd
	x[len(m.genders)+1] = 1 // bias
	return x
}

// probs computes the softmax over class scores, shifted by the max
// score for numeric stability.
func (m *Model) probs(x []float64) []float64 {
	scores := make([]float64, len(m.weights))
	maxScore := math.Inf(-1)
	for c, w := range m.weights {
		var s float64
		for j, f := range x {
			s += w[j] * f
		}
		scores[c] = s
		if s > maxScore {
			maxScore = s
		}
	}
	var total float64
	for c, s := range scores {
		scores[c] = math.Exp(s - maxScore)
		total += scores[c]
	}
	for c := range scores {
		scores[c] /= total
	}
	return scores
}

func sortedUnique(examples []Example, key func(Example) string) []string {
	set := make(map[string]struct{}, len(examples))
	for _, ex := range examples {
		set[key(ex)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
