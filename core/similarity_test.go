package core

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]float64
		b    map[string]float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    map[string]float64{"go": 1.0, "concurrency": 0.5},
			b:    map[string]float64{"go": 1.0, "concurrency": 0.5},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    map[string]float64{"go": 1.0},
			b:    map[string]float64{"python": 1.0},
			want: 0.0,
		},
		{
			name: "partial overlap",
			a:    map[string]float64{"go": 1.0, "concurrency": 1.0},
			b:    map[string]float64{"go": 1.0},
			want: 1.0 / math.Sqrt2,
		},
		{
			name: "empty first vector",
			a:    map[string]float64{},
			b:    map[string]float64{"go": 1.0},
			want: 0.0,
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: 0.0,
		},
		{
			name: "all-zero weights",
			a:    map[string]float64{"go": 0},
			b:    map[string]float64{"go": 1.0},
			want: 0.0,
		},
		{
			name: "scaled vector keeps similarity 1",
			a:    map[string]float64{"go": 0.2, "beginner": 0.1},
			b:    map[string]float64{"go": 2.0, "beginner": 1.0},
			want: 1.0,
		},
		{
			// skip 累积出的负权重不能把结果带出 [0,1]
			name: "negative weight clamps to zero",
			a:    map[string]float64{"math": -0.2},
			b:    map[string]float64{"math": 1.0},
			want: 0.0,
		},
		{
			name: "mixed sign vectors clamp to zero",
			a:    map[string]float64{"go": 1.0, "math": -0.4},
			b:    map[string]float64{"math": 1.0},
			want: 0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
			// 对称性
			if rev := CosineSimilarity(tt.b, tt.a); math.Abs(rev-got) > 1e-9 {
				t.Errorf("CosineSimilarity not symmetric: %v vs %v", got, rev)
			}
			if got < 0 || got > 1+1e-9 {
				t.Errorf("CosineSimilarity out of [0,1]: %v", got)
			}
		})
	}
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]float64
		b    map[string]float64
		want float64
	}{
		{
			name: "identical",
			a:    map[string]float64{"go": 1.0, "concurrency": 0.5},
			b:    map[string]float64{"go": 1.0, "concurrency": 0.5},
			want: 1.0,
		},
		{
			name: "disjoint",
			a:    map[string]float64{"go": 1.0},
			b:    map[string]float64{"python": 1.0},
			want: 0.0,
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: 0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JaccardSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("JaccardSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
