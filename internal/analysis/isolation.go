package analysis

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const eulerGamma = 0.5772156649015329

// IsolationForest scores rows by how quickly random axis-aligned splits isolate them.
// Scores lie in (0, 1]; larger means more anomalous.
type IsolationForest struct {
	Trees         int
	MaxSamples    int // subsample size cap per tree
	Contamination float64
	Seed          int64

	Threshold float64 // rows scoring strictly above are flagged

	trees      []*isoNode
	sampleSize int
}

// NewIsolationForest creates a forest with the usual 256-row subsample cap
func NewIsolationForest(trees int, contamination float64, seed int64) *IsolationForest {
	return &IsolationForest{
		Trees:         trees,
		MaxSamples:    256,
		Contamination: contamination,
		Seed:          seed,
	}
}

type isoNode struct {
	feature     int
	split       float64
	left, right *isoNode
	size        int // rows reaching a leaf
}

func (n *isoNode) leaf() bool { return n.left == nil }

// Fit grows the trees and sets the flagging threshold from the training scores
func (f *IsolationForest) Fit(ctx context.Context, x *mat.Dense) error {
	n, p := x.Dims()
	if n < 2 || p == 0 {
		return errors.New("isolation forest needs at least 2 rows and 1 feature")
	}
	if f.Trees < 1 {
		return errors.New("isolation forest needs at least 1 tree")
	}
	if f.Contamination <= 0 || f.Contamination > 0.5 {
		return errors.New("contamination must be in (0, 0.5]")
	}

	f.sampleSize = n
	if f.MaxSamples > 0 && f.MaxSamples < n {
		f.sampleSize = f.MaxSamples
	}
	heightLimit := int(math.Ceil(math.Log2(float64(f.sampleSize))))

	// Per-tree seeds are drawn up front so the forest does not depend on scheduling
	master := rand.New(rand.NewSource(f.Seed))
	seeds := make([]int64, f.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	f.trees = make([]*isoNode, f.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range f.trees {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[t]))
			rows := rng.Perm(n)[:f.sampleSize]
			f.trees[t] = growTree(x, rows, 0, heightLimit, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.Threshold = quantile(f.Score(x), 1-f.Contamination)
	return nil
}

// growTree splits on a random non-constant feature at a uniform point between its
// minimum and maximum over the rows at hand
func growTree(x *mat.Dense, rows []int, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(rows) <= 1 {
		return &isoNode{size: len(rows)}
	}

	_, p := x.Dims()
	for _, feature := range rng.Perm(p) {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, r := range rows {
			v := x.At(r, feature)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi <= lo {
			continue
		}

		split := lo + rng.Float64()*(hi-lo)
		var left, right []int
		for _, r := range rows {
			if x.At(r, feature) < split {
				left = append(left, r)
			} else {
				right = append(right, r)
			}
		}
		return &isoNode{
			feature: feature,
			split:   split,
			left:    growTree(x, left, depth+1, limit, rng),
			right:   growTree(x, right, depth+1, limit, rng),
		}
	}
	// every feature is constant on these rows
	return &isoNode{size: len(rows)}
}

// Score returns the anomaly score s(x) = 2^(-E[h(x)] / c(ψ)) of every row
func (f *IsolationForest) Score(x *mat.Dense) []float64 {
	n, _ := x.Dims()
	scores := make([]float64, n)
	norm := averagePathLength(f.sampleSize)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		total := 0.0
		for _, tree := range f.trees {
			total += pathLength(tree, row, 0)
		}
		mean := total / float64(len(f.trees))
		scores[i] = math.Pow(2, -mean/norm)
	}
	return scores
}

// FitPredict fits the forest on x and flags its rows
func (f *IsolationForest) FitPredict(ctx context.Context, x *mat.Dense) ([]bool, []float64, error) {
	if err := f.Fit(ctx, x); err != nil {
		return nil, nil, err
	}
	scores := f.Score(x)
	flags := make([]bool, len(scores))
	for i, s := range scores {
		flags[i] = s > f.Threshold
	}
	return flags, scores, nil
}

func pathLength(node *isoNode, row []float64, depth int) float64 {
	for !node.leaf() {
		if row[node.feature] < node.split {
			node = node.left
		} else {
			node = node.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(node.size)
}

// averagePathLength is c(n), the mean path length of an unsuccessful BST search
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		m := float64(n - 1)
		return 2*(math.Log(m)+eulerGamma) - 2*m/float64(n)
	}
}

// quantile uses linear interpolation between closest ranks: position (n-1)q
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// FlaggedCount counts true flags
func FlaggedCount(flags []bool) int {
	count := 0
	for _, f := range flags {
		if f {
			count++
		}
	}
	return count
}
