package palette

import (
	"math"
	"math/rand"
)

const (
	maxIterations = 10
	attempts      = 10
	// epsilon is the minimum compactness improvement that keeps an attempt iterating.
	epsilon = 1.0
)

type sample [3]float64

func (s sample) distance2(o sample) float64 {
	dr := s[0] - o[0]
	dg := s[1] - o[1]
	db := s[2] - o[2]
	return dr*dr + dg*dg + db*db
}

func (s sample) rgb() RGB {
	return RGB{R: channel(s[0]), G: channel(s[1]), B: channel(s[2])}
}

func channel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

type kmeansResult struct {
	centers     []sample
	counts      []int
	compactness float64
}

// kmeans runs several randomly seeded Lloyd attempts and keeps the most compact one.
func kmeans(samples []sample, k int, rng *rand.Rand) kmeansResult {
	best := kmeansResult{compactness: math.Inf(1)}
	labels := make([]int, len(samples))
	for a := 0; a < attempts; a++ {
		centers := initialCenters(samples, k, rng)
		compact := lloyd(samples, centers, labels)
		if compact < best.compactness {
			best = kmeansResult{
				centers:     centers,
				counts:      population(labels, k),
				compactness: compact,
			}
		}
	}
	return best
}

// initialCenters picks k distinct sample indices at random.
func initialCenters(samples []sample, k int, rng *rand.Rand) []sample {
	centers := make([]sample, 0, k)
	used := make(map[int]bool, k)
	for len(centers) < k {
		idx := rng.Intn(len(samples))
		if used[idx] {
			continue
		}
		used[idx] = true
		centers = append(centers, samples[idx])
	}
	return centers
}

// lloyd refines centers in place and leaves labels consistent with them.
func lloyd(samples []sample, centers []sample, labels []int) float64 {
	compact := assign(samples, centers, labels)
	for iter := 0; iter < maxIterations; iter++ {
		update(samples, centers, labels)
		next := assign(samples, centers, labels)
		improved := compact - next
		compact = next
		if improved < epsilon {
			break
		}
	}
	return compact
}

// assign labels every sample with its nearest center and returns the compactness.
func assign(samples []sample, centers []sample, labels []int) float64 {
	var total float64
	for i, s := range samples {
		bestIdx := 0
		bestDist := math.MaxFloat64
		for j, c := range centers {
			if d := s.distance2(c); d < bestDist {
				bestDist = d
				bestIdx = j
			}
		}
		labels[i] = bestIdx
		total += bestDist
	}
	return total
}

// update moves each center to the mean of its samples. Empty clusters keep their center.
func update(samples []sample, centers []sample, labels []int) {
	sums := make([]sample, len(centers))
	counts := make([]int, len(centers))
	for i, s := range samples {
		l := labels[i]
		sums[l][0] += s[0]
		sums[l][1] += s[1]
		sums[l][2] += s[2]
		counts[l]++
	}
	for j := range centers {
		if counts[j] == 0 {
			continue
		}
		n := float64(counts[j])
		centers[j] = sample{sums[j][0] / n, sums[j][1] / n, sums[j][2] / n}
	}
}

func population(labels []int, k int) []int {
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
