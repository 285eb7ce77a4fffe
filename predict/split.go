package predict

import (
	"math/rand"
	"sort"
)

const (
	testFraction = 0.20
	splitSeed    = 42
)

// Split partitions examples into train and test sets, stratified by
// label: each class contributes floor(frac * n) rows to the test set.
// Classes are visited in sorted order off a single seeded source, so
// the split is fully reproducible. Classes too small to yield a test
// row go entirely to training.
func Split(examples []Example, frac float64, seed int64) (train, test []Example) {
	byLabel := make(map[string][]Example)
	for _, ex := range examples {
		byLabel[ex.Label] = append(byLabel[ex.Label], ex)
	}
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	for _, l := range labels {
		group := append([]Example(nil), byLabel[l]...)
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		nTest := int(frac * float64(len(group)))
		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}
	return train, test
}
