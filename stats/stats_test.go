package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
		ok   bool
	}{
		{nil, 0, false},
		{[]float64{7}, 7, true},
		{[]float64{3, 1, 2}, 2, true},
		{[]float64{4, 1, 3, 2}, 2.5, true},
		{[]float64{10, 10, 20, 20}, 15, true},
	}
	for _, tt := range tests {
		got, ok := Median(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Median(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMedianDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, _ = Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestSampleStd(t *testing.T) {
	_, ok := SampleStd([]float64{5})
	assert.False(t, ok, "std of one value is undefined")

	got, ok := SampleStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	// population std is 2, sample std is sqrt(32/7)
	assert.InDelta(t, math.Sqrt(32.0/7.0), got, 1e-12)
}

func TestMean(t *testing.T) {
	_, ok := Mean(nil)
	assert.False(t, ok)

	got, ok := Mean([]float64{1, 2, 3, 4})
	require.True(t, ok)
	assert.Equal(t, 2.5, got)
}

func TestCountWithinIsClosed(t *testing.T) {
	assert.Equal(t, 3, CountWithin([]float64{1, 2, 3, 4}, 1, 3))
	assert.Equal(t, 0, CountWithin([]float64{1, 2}, math.NaN(), math.NaN()))
}

func TestStandardize(t *testing.T) {
	rows := [][]float64{{1, 10, 5}, {2, 20, 5}, {3, 30, 5}}
	z := Standardize(rows)
	require.Len(t, z, 3)

	for j := 0; j < 2; j++ {
		var sum, sq float64
		for i := range z {
			sum += z[i][j]
			sq += z[i][j] * z[i][j]
		}
		assert.InDelta(t, 0, sum/3, 1e-12, "column %d mean", j)
		assert.InDelta(t, 1, sq/3, 1e-12, "column %d population variance", j)
	}
	for i := range z {
		assert.Equal(t, 0.0, z[i][2], "constant column is only centered")
	}
	assert.Equal(t, 1.0, rows[0][0], "input untouched")
}

func TestSquaredDistance(t *testing.T) {
	assert.InDelta(t, 25, SquaredDistance([]float64{0, 0}, []float64{3, 4}), 1e-12)
}

func blobs() [][]float64 {
	var pts [][]float64
	centers := [][]float64{{0, 0, 0}, {10, 10, 10}, {-10, 10, -10}}
	offsets := [][]float64{{0.1, 0, 0}, {-0.1, 0, 0}, {0, 0.1, 0}, {0, -0.1, 0}, {0, 0, 0.1}, {0, 0, -0.1}}
	for _, c := range centers {
		for _, o := range offsets {
			pts = append(pts, []float64{c[0] + o[0], c[1] + o[1], c[2] + o[2]})
		}
	}
	return pts
}

func TestKMeansRecoversSeparatedBlobs(t *testing.T) {
	pts := blobs()
	res, err := KMeans(pts, KMeansConfig{K: 3, Inits: 20, MaxIter: 300, Tol: 1e-4, Seed: 42})
	require.NoError(t, err)

	for b := 0; b < 3; b++ {
		label := res.Labels[b*6]
		for i := b * 6; i < b*6+6; i++ {
			assert.Equal(t, label, res.Labels[i], "point %d should share its blob's label", i)
		}
	}
	assert.NotEqual(t, res.Labels[0], res.Labels[6])
	assert.NotEqual(t, res.Labels[6], res.Labels[12])
	assert.NotEqual(t, res.Labels[0], res.Labels[12])
	// each blob contributes 6 * 0.01 to the inertia
	assert.InDelta(t, 0.18, res.Inertia, 1e-9)
}

func TestKMeansDeterministic(t *testing.T) {
	pts := Standardize([][]float64{
		{45000, 80000, 9}, {52000, 60000, 7}, {61000, 45000, 6}, {75000, 30000, 4},
		{98000, 20000, 3}, {120000, 15000, 2}, {150000, 9000, 1}, {39000, 120000, 12},
		{33000, 150000, 14}, {240000, 5000, 1}, {88000, 40000, 5}, {47000, 95000, 10},
	})
	cfg := KMeansConfig{K: 3, Inits: 20, MaxIter: 300, Tol: 1e-4, Seed: 42}

	a, err := KMeans(pts, cfg)
	require.NoError(t, err)
	b, err := KMeans(pts, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)
}

func TestKMeansInertiaMatchesLabels(t *testing.T) {
	pts := blobs()
	res, err := KMeans(pts, KMeansConfig{K: 2, Inits: 5, Seed: 7})
	require.NoError(t, err)

	var inertia float64
	for i, p := range pts {
		inertia += SquaredDistance(p, res.Centroids[res.Labels[i]])
	}
	assert.InDelta(t, inertia, res.Inertia, 1e-9)
}

func TestKMeansTooFewPoints(t *testing.T) {
	_, err := KMeans([][]float64{{1}, {2}}, KMeansConfig{K: 3, Inits: 20})
	assert.True(t, errors.Is(err, ErrTooFewPoints))
}

func TestKMeansIdenticalPoints(t *testing.T) {
	pts := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	res, err := KMeans(pts, KMeansConfig{K: 3, Inits: 3, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Inertia)
	assert.Len(t, res.Labels, 4)
}
