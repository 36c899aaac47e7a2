package cluster

import "testing"

func TestEstimateEpsilonEmpty(t *testing.T) {
	if got := EstimateEpsilon(nil); got != 0 {
		t.Fatalf("empty input: got %f", got)
	}
}

func TestEstimateEpsilonDeterministic(t *testing.T) {
	in := []float64{5, 1, 2, 1.5, 40, 42, 1.2, 2.2, 45}
	a := EstimateEpsilon(in)
	b := EstimateEpsilon(in)
	if a != b {
		t.Fatalf("non-deterministic: %f vs %f", a, b)
	}
}

func TestEstimateEpsilonKnee(t *testing.T) {
	// flat curve with a sharp jump: the knee sits at the jump
	in := []float64{1, 1, 1, 1, 1, 1, 10, 11, 12}
	eps := EstimateEpsilon(in)
	if eps < 1 || eps > 10 {
		t.Fatalf("knee estimate %f outside [1, 10]", eps)
	}
}

func TestEstimateEpsilonDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_ = EstimateEpsilon(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Fatalf("input mutated: %v", in)
	}
}
