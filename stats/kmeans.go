package stats

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// ErrTooFewPoints is returned when there are fewer points than clusters.
var ErrTooFewPoints = errors.New("kmeans: fewer points than clusters")

// KMeansConfig controls a k-means run.
type KMeansConfig struct {
	K int
	// Inits is the number of independent k-means++ seedings; the lowest
	// inertia solution is kept.
	Inits   int
	MaxIter int
	// Tol is relative to the mean per-feature variance of the data.
	Tol  float64
	Seed uint64
}

// KMeansResult is the chosen partition.
type KMeansResult struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// KMeans clusters points with Lloyd's algorithm. The same points, config and
// seed always produce the same labels and inertia.
func KMeans(points [][]float64, cfg KMeansConfig) (*KMeansResult, error) {
	if cfg.K < 1 {
		return nil, fmt.Errorf("kmeans: invalid cluster count %d", cfg.K)
	}
	if len(points) < cfg.K {
		return nil, ErrTooFewPoints
	}
	if cfg.Inits < 1 {
		cfg.Inits = 1
	}
	if cfg.MaxIter < 1 {
		cfg.MaxIter = 300
	}

	tol := cfg.Tol * meanVariance(points)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	var best *KMeansResult
	for i := 0; i < cfg.Inits; i++ {
		centroids := seedPlusPlus(points, cfg.K, rng)
		res := lloyd(points, centroids, cfg.MaxIter, tol)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

func meanVariance(points [][]float64) float64 {
	dims := len(points[0])
	col := make([]float64, len(points))
	var total float64
	for j := 0; j < dims; j++ {
		for i, p := range points {
			col[i] = p[j]
		}
		_, v := stat.PopMeanVariance(col, nil)
		total += v
	}
	return total / float64(dims)
}

// seedPlusPlus picks k initial centroids with greedy k-means++: each new
// centroid is the best of a few candidates sampled proportionally to the
// squared distance from the centroids chosen so far.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	trials := 2 + int(math.Log(float64(k)))

	centroids := make([][]float64, 0, k)
	first := rng.IntN(n)
	centroids = append(centroids, clone(points[first]))

	closest := make([]float64, n)
	var potential float64
	for i, p := range points {
		closest[i] = SquaredDistance(p, centroids[0])
		potential += closest[i]
	}

	for c := 1; c < k; c++ {
		bestCandidate := -1
		bestPotential := math.Inf(1)
		var bestDist []float64

		for t := 0; t < trials; t++ {
			cand := sampleWeighted(closest, potential, rng)
			dist := make([]float64, n)
			var pot float64
			for i, p := range points {
				d := SquaredDistance(p, points[cand])
				if d > closest[i] {
					d = closest[i]
				}
				dist[i] = d
				pot += d
			}
			if pot < bestPotential {
				bestCandidate, bestPotential, bestDist = cand, pot, dist
			}
		}

		centroids = append(centroids, clone(points[bestCandidate]))
		closest, potential = bestDist, bestPotential
	}
	return centroids
}

func sampleWeighted(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	target := rng.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if acc > target {
			return i
		}
	}
	return len(weights) - 1
}

func lloyd(points [][]float64, centroids [][]float64, maxIter int, tol float64) *KMeansResult {
	k := len(centroids)
	dims := len(points[0])
	labels := make([]int, len(points))

	iter := 0
	for iter < maxIter {
		iter++
		assign(points, centroids, labels)

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for j, v := range p {
				next[c][j] += v
			}
		}
		relocateEmpty(points, centroids, labels, next, counts)
		for c := range next {
			if counts[c] == 0 {
				copy(next[c], centroids[c])
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}

		var shift float64
		for c := range centroids {
			shift += SquaredDistance(centroids[c], next[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	inertia := assign(points, centroids, labels)
	return &KMeansResult{Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}
}

// assign labels every point with its nearest centroid (lowest index on ties)
// and returns the resulting inertia.
func assign(points [][]float64, centroids [][]float64, labels []int) float64 {
	var inertia float64
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for c, ctr := range centroids {
			if d := SquaredDistance(p, ctr); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		inertia += bestDist
	}
	return inertia
}

// relocateEmpty moves each empty cluster onto the point farthest from its
// current centroid, taking that point out of its old cluster's sums.
func relocateEmpty(points [][]float64, centroids [][]float64, labels []int, sums [][]float64, counts []int) {
	taken := make(map[int]bool)
	for c := range counts {
		if counts[c] != 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, p := range points {
			if taken[i] || counts[labels[i]] <= 1 {
				continue
			}
			if d := SquaredDistance(p, centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}
		taken[far] = true
		old := labels[far]
		for j, v := range points[far] {
			sums[old][j] -= v
			sums[c][j] = v
		}
		counts[old]--
		counts[c] = 1
		labels[far] = c
	}
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
