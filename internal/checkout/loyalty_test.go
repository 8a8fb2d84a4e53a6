package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointsEarned(t *testing.T) {
	require.Equal(t, int64(900), PointsEarned(90, 1.0))
	require.Equal(t, int64(1800), PointsEarned(90, 2.0))
	require.Equal(t, int64(450), PointsEarned(90, 0.5))
}

func TestPointsEarned_Floors(t *testing.T) {
	require.Equal(t, int64(124), PointsEarned(12.49, 1.0))
}

func TestPointsEarned_ZeroAmountOrMultiplier(t *testing.T) {
	require.Zero(t, PointsEarned(0, 1.0))
	require.Zero(t, PointsEarned(-5, 1.0))
	require.Zero(t, PointsEarned(90, 0))
}
