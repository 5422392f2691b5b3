// Package forest fits bagged regression-tree ensembles.
//
// Each tree is a CART regressor grown on a bootstrap sample of the training
// rows, splitting on the threshold that most reduces squared error. A forest
// predicts the mean of its trees. Fitting is deterministic for a given seed.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Config controls ensemble shape.
type Config struct {
	Trees          int    // number of bootstrap trees
	MaxDepth       int    // 0 grows until leaves are pure or too small to split
	MinSamplesLeaf int    // minimum rows on each side of a split
	Seed           uint64 // bootstrap seed
}

// DefaultConfig mirrors a conventional random forest regressor.
func DefaultConfig() Config {
	return Config{Trees: 100, MinSamplesLeaf: 1, Seed: 42}
}

// ErrNoData is returned when Fit is given no rows.
var ErrNoData = errors.New("no training data")

// Forest is a fitted ensemble. It is safe for concurrent prediction.
type Forest struct {
	trees     []tree
	nFeatures int
}

type node struct {
	feature   int
	threshold float64
	left      int // index into tree; -1 marks a leaf
	right     int
	value     float64
}

type tree []node

// Fit grows cfg.Trees trees over the rows of X with targets y.
// It stops early and returns ctx.Err() when ctx is done.
func Fit(ctx context.Context, X [][]float64, y []float64, cfg Config) (*Forest, error) {
	if len(X) == 0 {
		return nil, ErrNoData
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature rows (%d) and targets (%d) differ", len(X), len(y))
	}
	if cfg.Trees < 1 {
		return nil, fmt.Errorf("trees must be positive, got %d", cfg.Trees)
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return nil, errors.New("rows have no features")
	}
	for i, row := range X {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), nFeatures)
		}
		if floats.HasNaN(row) {
			return nil, fmt.Errorf("row %d contains NaN", i)
		}
	}
	if floats.HasNaN(y) {
		return nil, errors.New("targets contain NaN")
	}

	f := &Forest{trees: make([]tree, cfg.Trees), nFeatures: nFeatures}
	var wg sync.WaitGroup
	for t := range cfg.Trees {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(t)))
			rows := make([]int, len(X))
			for i := range rows {
				rows[i] = rng.IntN(len(X))
			}
			b := builder{ctx: ctx, X: X, y: y, cfg: cfg}
			b.grow(rows, 0)
			f.trees[t] = b.nodes
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// Predict returns the ensemble mean for one feature row.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != f.nFeatures {
		return 0, fmt.Errorf("got %d features, model expects %d", len(x), f.nFeatures)
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees)), nil
}

// PredictBatch predicts every row of X.
func (f *Forest) PredictBatch(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		p, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// Size returns the number of trees.
func (f *Forest) Size() int { return len(f.trees) }

func (t tree) predict(x []float64) float64 {
	i := 0
	for t[i].left >= 0 {
		if x[t[i].feature] <= t[i].threshold {
			i = t[i].left
		} else {
			i = t[i].right
		}
	}
	return t[i].value
}

type builder struct {
	ctx   context.Context
	X     [][]float64
	y     []float64
	cfg   Config
	nodes tree
}

// grow appends the subtree for rows and returns its root index.
func (b *builder) grow(rows []int, depth int) int {
	targets := make([]float64, len(rows))
	for i, r := range rows {
		targets[i] = b.y[r]
	}
	idx := len(b.nodes)
	if floats.Min(targets) == floats.Max(targets) {
		b.nodes = append(b.nodes, node{left: -1, right: -1, value: targets[0]})
		return idx
	}
	b.nodes = append(b.nodes, node{left: -1, right: -1, value: stat.Mean(targets, nil)})

	if b.ctx.Err() != nil {
		return idx
	}
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return idx
	}
	if len(rows) < 2*b.cfg.MinSamplesLeaf {
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.X[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx].feature = feature
	b.nodes[idx].threshold = threshold
	b.nodes[idx].left = l
	b.nodes[idx].right = r
	return idx
}

// bestSplit scans every feature for the threshold with the lowest summed
// squared error of the two children.
func (b *builder) bestSplit(rows []int) (feature int, threshold float64, ok bool) {
	n := len(rows)
	minLeaf := b.cfg.MinSamplesLeaf

	var total, totalSq float64
	for _, r := range rows {
		total += b.y[r]
		totalSq += b.y[r] * b.y[r]
	}
	bestScore := totalSq - total*total/float64(n)

	sorted := make([]int, n)
	for f := range b.X[rows[0]] {
		copy(sorted, rows)
		slices.SortStableFunc(sorted, func(a, c int) int {
			switch va, vc := b.X[a][f], b.X[c][f]; {
			case va < vc:
				return -1
			case va > vc:
				return 1
			}
			return 0
		})

		var leftSum, leftSq float64
		for i := 0; i < n-1; i++ {
			yi := b.y[sorted[i]]
			leftSum += yi
			leftSq += yi * yi

			cur, next := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
			if cur == next {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			score := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if score < bestScore-1e-12 {
				bestScore = score
				feature = f
				threshold = cur + (next-cur)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// MAE returns the mean absolute error between predictions and targets.
func MAE(pred, y []float64) float64 {
	if len(pred) == 0 {
		return math.NaN()
	}
	diff := make([]float64, len(pred))
	floats.SubTo(diff, pred, y)
	for i := range diff {
		diff[i] = math.Abs(diff[i])
	}
	return stat.Mean(diff, nil)
}

// R2 returns the coefficient of determination of pred against y.
func R2(pred, y []float64) float64 {
	if len(pred) == 0 {
		return math.NaN()
	}
	return stat.RSquaredFrom(pred, y, nil)
}
