package ml

import (
	"sort"
)

// MaxBins bounds the number of histogram bins per feature.
const MaxBins = 255

// Node is one node of a regression tree. Leaves have Feature == -1.
type Node struct {
	Feature   int32
	Threshold float64
	Left      int32
	Right     int32
	Value     float64
}

// Tree is a fitted CART regression tree stored as a flat node slice; Nodes[0] is the root.
type Tree struct {
	Nodes []Node
}

// PredictRow walks the tree for one encoded row.
// Rows go left when x[Feature] <= Threshold.
func (t *Tree) PredictRow(x []float64) float64 {
	i := int32(0)
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int32) int
	walk = func(i int32) int {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// binnedMatrix is a column-major, histogram-binned copy of a training matrix.
// For feature f, a value v maps to bin b where edges[f][b-1] < v <= edges[f][b].
type binnedMatrix struct {
	bins  [][]uint8
	edges [][]float64
}

// newBinnedMatrix bins every feature of X into at most MaxBins bins.
// Features with few distinct values get one bin per value with midpoints as edges.
func newBinnedMatrix(X [][]float64) *binnedMatrix {
	if len(X) == 0 {
		return &binnedMatrix{}
	}
	nFeatures := len(X[0])
	m := &binnedMatrix{
		bins:  make([][]uint8, nFeatures),
		edges: make([][]float64, nFeatures),
	}
	col := make([]float64, len(X))
	for f := 0; f < nFeatures; f++ {
		for i := range X {
			col[i] = X[i][f]
		}
		edges := binEdges(col)
		bins := make([]uint8, len(X))
		for i, v := range col {
			bins[i] = uint8(sort.SearchFloat64s(edges, v))
		}
		m.bins[f] = bins
		m.edges[f] = edges
	}
	return m
}

func binEdges(col []float64) []float64 {
	sorted := append([]float64(nil), col...)
	sort.Float64s(sorted)

	uniq := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			uniq = append(uniq, v)
		}
	}

	if len(uniq) <= MaxBins {
		edges := make([]float64, 0, len(uniq)-1)
		for i := 1; i < len(uniq); i++ {
			edges = append(edges, uniq[i-1]+(uniq[i]-uniq[i-1])/2)
		}
		return edges
	}

	edges := make([]float64, 0, MaxBins-1)
	for b := 1; b < MaxBins; b++ {
		e := Quantile(sorted, float64(b)/float64(MaxBins))
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	// The largest value must fall in a bin above the last edge.
	for len(edges) > 0 && edges[len(edges)-1] >= uniq[len(uniq)-1] {
		edges = edges[:len(edges)-1]
	}
	return edges
}

// treeParams bounds tree growth. MaxDepth <= 0 means unlimited.
type treeParams struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// treeBuilder grows one tree over a shared binned matrix.
type treeBuilder struct {
	data   *binnedMatrix
	y      []float64
	params treeParams
	nodes  []Node

	counts []int
	sums   []float64
}

func newTreeBuilder(data *binnedMatrix, y []float64, params treeParams) *treeBuilder {
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}
	return &treeBuilder{
		data:   data,
		y:      y,
		params: params,
		counts: make([]int, MaxBins),
		sums:   make([]float64, MaxBins),
	}
}

// fit grows a tree on the given sample indices. Repeated indices act as weights.
func (b *treeBuilder) fit(idx []int) *Tree {
	b.nodes = b.nodes[:0]
	b.grow(idx, 0)
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	return &Tree{Nodes: nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int32 {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	n := len(idx)
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{Feature: -1, Value: sum / float64(n)})

	if n < b.params.MinSamplesSplit || n < 2*b.params.MinSamplesLeaf {
		return id
	}
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return id
	}

	feature, bin, ok := b.bestSplit(idx, sum)
	if !ok {
		return id
	}

	bins := b.data.bins[feature]
	lo, hi := 0, n-1
	for lo <= hi {
		if int(bins[idx[lo]]) <= bin {
			lo++
		} else {
			idx[lo], idx[hi] = idx[hi], idx[lo]
			hi--
		}
	}

	left := b.grow(idx[:lo], depth+1)
	right := b.grow(idx[lo:], depth+1)

	b.nodes[id].Feature = int32(feature)
	b.nodes[id].Threshold = b.data.edges[feature][bin]
	b.nodes[id].Left = left
	b.nodes[id].Right = right
	return id
}

// bestSplit returns the feature and bin maximising the reduction of squared error.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, int, bool) {
	n := len(idx)
	parent := total * total / float64(n)
	bestGain := 1e-12 * (1 + parent)
	bestFeature, bestBin := -1, -1
	minLeaf := b.params.MinSamplesLeaf

	for f, bins := range b.data.bins {
		nb := len(b.data.edges[f]) + 1
		if nb < 2 {
			continue
		}
		counts, sums := b.counts[:nb], b.sums[:nb]
		for k := range counts {
			counts[k] = 0
			sums[k] = 0
		}
		for _, i := range idx {
			k := bins[i]
			counts[k]++
			sums[k] += b.y[i]
		}

		nl, sl := 0, 0.0
		for k := 0; k < nb-1; k++ {
			nl += counts[k]
			sl += sums[k]
			if counts[k] == 0 || nl < minLeaf {
				continue
			}
			nr := n - nl
			if nr < minLeaf {
				break
			}
			sr := total - sl
			gain := sl*sl/float64(nl) + sr*sr/float64(nr) - parent
			if gain > bestGain {
				bestGain, bestFeature, bestBin = gain, f, k
			}
		}
	}
	return bestFeature, bestBin, bestFeature >= 0
}
