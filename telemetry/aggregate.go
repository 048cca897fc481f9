package telemetry

import (
	"math"
	"sort"
)

// Stats summarizes one samples buffer. All values are microseconds.
type Stats struct {
	Count  int
	Min    uint32
	Max    uint32
	Mean   float64
	StdDev float64
	P50    uint32
	P90    uint32
	P95    uint32
	P99    uint32
}

// Aggregate computes the read-side summary over raw samples. The chain
// stores only the raw buffer; consumers call this off-chain.
func Aggregate(samples []uint32) Stats {
	if len(samples) == 0 {
		return Stats{}
	}
	sorted := append([]uint32(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum float64
	for _, s := range sorted {
		sum += float64(s)
	}
	mean := sum / float64(len(sorted))
	var sq float64
	for _, s := range sorted {
		d := float64(s) - mean
		sq += d * d
	}

	return Stats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(len(sorted))),
		P50:    percentile(sorted, 50),
		P90:    percentile(sorted, 90),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
	}
}

// percentile uses the nearest-rank method on a sorted buffer.
func percentile(sorted []uint32, p int) uint32 {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
