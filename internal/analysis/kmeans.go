package analysis

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KMeans partitions rows into K clusters. Each of NInit k-means++ seeded runs iterates
// Lloyd steps until the total centroid shift drops below Tol (relative to the mean
// feature variance) or MaxIter is reached; the run with the lowest inertia wins.
type KMeans struct {
	K       int
	NInit   int
	MaxIter int
	Tol     float64
	Seed    int64

	Centroids  [][]float64
	Inertia    float64 // sum of squared distances to the assigned centroid
	Iterations int
}

// NewKMeans creates a k-means model with the default iteration limits
func NewKMeans(k, nInit int, seed int64) *KMeans {
	return &KMeans{
		K:       k,
		NInit:   nInit,
		MaxIter: 300,
		Tol:     1e-4,
		Seed:    seed,
	}
}

// FitPredict clusters the rows of x and returns one label in [0, K) per row.
// Identical input and seed give identical labels.
func (m *KMeans) FitPredict(ctx context.Context, x *mat.Dense) ([]int, error) {
	n, p := x.Dims()
	if n == 0 || p == 0 {
		return nil, errors.New("input data cannot be empty")
	}
	if m.K < 1 {
		return nil, errors.New("number of clusters must be positive")
	}
	if n < m.K {
		return nil, errors.New("number of data points is less than K")
	}

	points := make([][]float64, n)
	for i := range points {
		points[i] = x.RawRowView(i)
	}
	tol := m.Tol * meanVariance(x)

	rng := rand.New(rand.NewSource(m.Seed))
	runs := m.NInit
	if runs < 1 {
		runs = 1
	}

	var bestLabels []int
	bestInertia := math.Inf(1)
	for run := 0; run < runs; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		centroids := initPlusPlus(points, m.K, rng)
		labels, inertia, iters := lloyd(points, centroids, m.MaxIter, tol)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
			m.Centroids = centroids
			m.Iterations = iters
		}
	}
	m.Inertia = bestInertia
	return bestLabels, nil
}

// initPlusPlus picks the first centroid uniformly and every next one with probability
// proportional to its squared distance from the closest centroid chosen so far
func initPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(n)]))

	closest := make([]float64, n)
	for i, pt := range points {
		closest[i] = sqDist(pt, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(closest)
		next := 0
		if total <= 0 {
			next = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			acc := 0.0
			next = n - 1
			for i, d := range closest {
				acc += d
				if acc >= target {
					next = i
					break
				}
			}
		}
		c := clone(points[next])
		centroids = append(centroids, c)
		for i, pt := range points {
			if d := sqDist(pt, c); d < closest[i] {
				closest[i] = d
			}
		}
	}
	return centroids
}

// lloyd refines centroids in place and returns the final labels, inertia and iteration count
func lloyd(points [][]float64, centroids [][]float64, maxIter int, tol float64) ([]int, float64, int) {
	n, k, p := len(points), len(centroids), len(points[0])
	labels := make([]int, n)
	dists := make([]float64, n)
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, p)
	}
	counts := make([]int, k)

	iters := 0
	for iters < maxIter {
		iters++
		assign(points, centroids, labels, dists)

		for c := range sums {
			for j := range sums[c] {
				sums[c][j] = 0
			}
			counts[c] = 0
		}
		for i, pt := range points {
			counts[labels[i]]++
			floats.Add(sums[labels[i]], pt)
		}

		// An empty cluster takes over the point farthest from its centroid
		for c := range counts {
			if counts[c] > 0 {
				continue
			}
			far := floats.MaxIdx(dists)
			counts[labels[far]]--
			floats.Sub(sums[labels[far]], points[far])
			labels[far] = c
			counts[c] = 1
			copy(sums[c], points[far])
			dists[far] = -1
		}

		shift := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			next := make([]float64, p)
			floats.ScaleTo(next, 1/float64(counts[c]), sums[c])
			shift += sqDist(next, centroids[c])
			centroids[c] = next
		}
		if shift <= tol {
			break
		}
	}

	inertia := assign(points, centroids, labels, dists)
	return labels, inertia, iters
}

// assign labels every point with its nearest centroid and returns the inertia
func assign(points [][]float64, centroids [][]float64, labels []int, dists []float64) float64 {
	inertia := 0.0
	for i, pt := range points {
		best, bestD := 0, math.MaxFloat64
		for c, centroid := range centroids {
			if d := sqDist(pt, centroid); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i], dists[i] = best, bestD
		inertia += bestD
	}
	return inertia
}

func meanVariance(x *mat.Dense) float64 {
	rows, cols := x.Dims()
	column := make([]float64, rows)
	total := 0.0
	for j := 0; j < cols; j++ {
		mat.Col(column, j, x)
		_, v := stat.PopMeanVariance(column, nil)
		total += v
	}
	return total / float64(cols)
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
