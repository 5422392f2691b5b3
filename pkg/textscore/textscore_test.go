package textscore

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Weight Training", []string{"weight", "training"}},
		{"yoga, pilates & HIIT", []string{"yoga", "pilates", "hiit"}},
		{"a b cd", []string{"cd"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.in)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestFitAndTransform(t *testing.T) {
	vs := Fit([]string{"yoga", "weight training", "cardio training"})
	if diff := cmp.Diff([]string{"yoga", "weight", "training", "cardio"}, vs.Terms()); diff != "" {
		t.Errorf("Terms() mismatch (-want +got):\n%s", diff)
	}
	if got := vs.Transform("Training training swimming"); !cmp.Equal(got, []float64{0, 0, 2, 0}) {
		t.Errorf("Transform() = %v", got)
	}
	if !vs.Contains("Yoga") || vs.Contains("pilates") {
		t.Error("Contains() wrong")
	}
}

func TestSimilarity(t *testing.T) {
	vs := Fit([]string{"yoga", "weight training", "cardio training"})
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "weight training", "weight training", 1},
		{"case-insensitive", "Weight Training", "weight training", 1},
		{"disjoint", "yoga", "cardio training", 0},
		{"partial", "training", "weight training", 1 / math.Sqrt2},
		{"unknown terms", "pilates", "yoga", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(vs, tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineEdges(t *testing.T) {
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("Cosine(nil) = %v", got)
	}
	if got := Cosine([]float64{1}, []float64{1, 2}); got != 0 {
		t.Errorf("Cosine(mismatched) = %v", got)
	}
	if got := Cosine([]float64{3, 4}, []float64{6, 8}); math.Abs(got-1) > 1e-12 {
		t.Errorf("Cosine(parallel) = %v", got)
	}
}

func TestIdenticalTextIsExactlyOne(t *testing.T) {
	texts := []string{"weight training", "strength and conditioning coach", "yoga yoga pilates"}
	vs := Fit(append(texts, "cardio"))
	for _, text := range texts {
		if got := Similarity(vs, text, text); got != 1 {
			t.Errorf("Similarity(%q, %q) = %v, want exactly 1", text, text, got)
		}
	}
}

func TestVaderPolarity(t *testing.T) {
	v := NewVader()
	ctx := context.Background()

	pos, err := v.Score(ctx, "Amazing trainer, I love every session! Great results.")
	if err != nil {
		t.Fatal(err)
	}
	neg, err := v.Score(ctx, "Terrible, rude and useless. Worst trainer ever.")
	if err != nil {
		t.Fatal(err)
	}
	neutral, err := v.Score(ctx, "The session was on Tuesday.")
	if err != nil {
		t.Fatal(err)
	}
	if pos <= 0.5 || neg >= -0.5 {
		t.Errorf("pos = %v, neg = %v", pos, neg)
	}
	if math.Abs(neutral) > 0.1 {
		t.Errorf("neutral = %v", neutral)
	}
	for _, s := range []float64{pos, neg, neutral} {
		if s < -1 || s > 1 {
			t.Errorf("score %v out of range", s)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := v.Score(cancelled, "fine"); err == nil {
		t.Error("expected error on cancelled context")
	}
}
