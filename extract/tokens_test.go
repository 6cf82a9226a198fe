package extract

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 0},
		{-5, 0},
		{1, 2},   // ceil(1.3)
		{10, 13},
		{100, 130},
		{3, 4}, // ceil(3.9)
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.words); got != tt.want {
			t.Errorf("EstimateTokens(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}
