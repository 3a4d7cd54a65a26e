package preprocess

import (
	"go-ml.dev/pkg/zorros"
	"math"
	"math/rand"
	"sort"
)

/*
StratifiedSplit partitions row indices into train and test so that every class
keeps its proportion within one row. The same labels, size and seed always
produce the same partitions.
*/
func StratifiedSplit(labels []string, testSize float64, seed int64) (train, test []int, err error) {
	n := len(labels)
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, zorros.Errorf("test size must be in (0,1), got %v", testSize)
	}
	rows := map[string][]int{}
	for i, l := range labels {
		rows[l] = append(rows[l], i)
	}
	classes := make([]string, 0, len(rows))
	for c := range rows {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for _, c := range classes {
		if len(rows[c]) < 2 {
			return nil, nil, zorros.Errorf("class `%v` has %d rows, at least 2 are required to stratify", c, len(rows[c]))
		}
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < len(classes) || nTrain < len(classes) {
		return nil, nil, zorros.Errorf("can't stratify %d classes into %d train and %d test rows", len(classes), nTrain, nTest)
	}

	alloc := allocate(classes, rows, nTest, n)
	rnd := rand.New(rand.NewSource(seed))
	for i, c := range classes {
		perm := rnd.Perm(len(rows[c]))
		for j, k := range perm {
			if j < alloc[i] {
				test = append(test, rows[c][k])
			} else {
				train = append(train, rows[c][k])
			}
		}
	}
	rnd.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rnd.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return
}

// allocate distributes total test rows by largest remainder, every class keeps at least one training row
func allocate(classes []string, rows map[string][]int, total, n int) []int {
	alloc := make([]int, len(classes))
	rem := make([]float64, len(classes))
	left := total
	for i, c := range classes {
		exact := float64(len(rows[c])) * float64(total) / float64(n)
		alloc[i] = int(math.Floor(exact))
		if alloc[i] > len(rows[c])-1 {
			alloc[i] = len(rows[c]) - 1
		}
		rem[i] = exact - float64(alloc[i])
		left -= alloc[i]
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for left > 0 {
		moved := false
		for _, i := range order {
			if left == 0 {
				break
			}
			if alloc[i] < len(rows[classes[i]])-1 {
				alloc[i]++
				left--
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return alloc
}
