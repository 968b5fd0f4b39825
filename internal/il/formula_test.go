package il

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestILFromPriceRatioKnownValues(t *testing.T) {
	cases := []struct {
		ratio float64
		want  float64
	}{
		{ratio: 1, want: 0},
		{ratio: 1.5, want: (1 - 2*math.Sqrt(1.5)/2.5) * 100},
		{ratio: 2, want: 5.7191},
		{ratio: 4, want: 20},
		{ratio: 0.5, want: 5.7191},
		{ratio: 0.25, want: 20},
	}
	for _, tc := range cases {
		got, err := ILFromPriceRatio(tc.ratio)
		require.NoError(t, err)
		require.InDelta(t, tc.want, got, 1e-3, "ratio %v", tc.ratio)
	}

	got, err := ILFromPriceRatio(1.5)
	require.NoError(t, err)
	require.InDelta(t, 2.02, got, 0.01)
}

func TestILFromPriceRatioReciprocalSymmetry(t *testing.T) {
	for _, ratio := range []float64{1.1, 1.5, 2, 3, 10, 100} {
		up, err := ILFromPriceRatio(ratio)
		require.NoError(t, err)
		down, err := ILFromPriceRatio(1 / ratio)
		require.NoError(t, err)
		require.InDelta(t, up, down, 1e-9, "ratio %v", ratio)
	}
}

func TestILFromPriceRatioMonotonicDivergence(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 60; i++ {
		ratio := math.Exp(float64(i) * 0.1)
		up, err := ILFromPriceRatio(ratio)
		require.NoError(t, err)
		down, err := ILFromPriceRatio(1 / ratio)
		require.NoError(t, err)
		require.Greater(t, up, prev)
		require.Greater(t, down, prev-1e-9)
		require.GreaterOrEqual(t, up, 0.0)
		require.Less(t, up, 100.0)
		prev = up
	}
}

func TestILFromPriceRatioRejectsNonPositive(t *testing.T) {
	for _, ratio := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := ILFromPriceRatio(ratio)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrInvalidPriceRatio), "ratio %v", ratio)
	}
}
