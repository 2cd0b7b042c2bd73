package data

import (
	"hash/fnv"
	"strconv"

	"github.com/zjgaokao/major-advisor/internal/major"
)

// probabilityBands maps an estimated ranking ceiling to a percentage band.
var probabilityBands = []struct {
	maxRank int
	base    int
	width   int
}{
	{50, 95, 5},
	{100, 90, 5},
	{250, 85, 5},
	{500, 80, 5},
	{1000, 70, 10},
	{2000, 60, 10},
	{5000, 45, 15},
	{10000, 30, 15},
	{20000, 15, 15},
}

// Probability estimates an admission percentage from the projected ranking.
// The position inside a band is derived from seed and key, so the same
// dataset always yields the same numbers. A nil ranking yields nil.
func Probability(seed int64, key major.Key, estimated *int) *int {
	if estimated == nil {
		return nil
	}
	rank := *estimated
	for _, b := range probabilityBands {
		if rank <= b.maxRank {
			p := b.base + int(jitter(seed, key)%uint32(b.width))
			return &p
		}
	}
	p := max(1, 15-rank/5000)
	return &p
}

func jitter(seed int64, key major.Key) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(seed, 10)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.University))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.MajorCode))
	return h.Sum32()
}
