package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatturi/soxstream/internal/testutil"
)

func TestTableShapeStrategies(t *testing.T) {
	t.Parallel()

	const taps = 189

	phases, interp := tableShape(RuntimeRec{}, taps)
	assert.True(t, interp, "auto interpolates at the default budget")
	assert.GreaterOrEqual(t, phases, minPhases)
	assert.LessOrEqual(t, phases, maxPhases)

	phases, interp = tableShape(RuntimeRec{Flags: InterpLow}, taps)
	assert.False(t, interp)
	assert.GreaterOrEqual(t, phases, minPhases)

	phases, interp = tableShape(RuntimeRec{Flags: InterpHigh}, taps)
	assert.True(t, interp)
	assert.LessOrEqual(t, phases, highInterpPhases)
}

func TestTableShapeHonorsBudget(t *testing.T) {
	t.Parallel()

	const taps = 101
	small, _ := tableShape(RuntimeRec{CoefSizeKbytes: 50}, taps)
	large, _ := tableShape(RuntimeRec{CoefSizeKbytes: 800}, taps)
	assert.Less(t, small, large, "a bigger budget buys more phases")
	assert.LessOrEqual(t, small*taps*bytesPerCoef, 50*1024)
}

func TestDesignPolyFilterShape(t *testing.T) {
	t.Parallel()

	q := QualityRec{Precision: 20, PhaseResponse: 50, PassbandEnd: 0.913, StopbandBegin: 1}
	poly, err := designPolyFilter(q, RuntimeRec{}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, poly.phases+1, len(poly.branches), "one extra row for phase interpolation wrap")
	for _, row := range poly.branches {
		require.Len(t, row, poly.taps)
		testutil.AssertNoNaNOrInf(t, row)
	}

	// Each branch is a fractional-delay lowpass at unity DC gain; the
	// normalization spreads the prototype's gain across the phases.
	for p := 0; p < poly.phases; p += poly.phases / 8 {
		testutil.AssertDCGain(t, poly.branches[p], 1.0, 0.01)
	}
}

func TestDesignPrecisionGrowsFilter(t *testing.T) {
	t.Parallel()

	low, err := designPolyFilter(QualityRec{Precision: 16, StopbandBegin: 1}, RuntimeRec{}, 1.0)
	require.NoError(t, err)
	high, err := designPolyFilter(QualityRec{Precision: 28, StopbandBegin: 1}, RuntimeRec{}, 1.0)
	require.NoError(t, err)

	assert.Greater(t, high.taps, low.taps, "more precision needs a longer filter")
}

func TestMediumRolloffShortensFilter(t *testing.T) {
	t.Parallel()

	small, err := designPolyFilter(QualityRec{Precision: 20, StopbandBegin: 1, Flags: RolloffSmall}, RuntimeRec{}, 1.0)
	require.NoError(t, err)
	medium, err := designPolyFilter(QualityRec{Precision: 20, StopbandBegin: 1, Flags: RolloffMedium}, RuntimeRec{}, 1.0)
	require.NoError(t, err)

	assert.Less(t, medium.taps, small.taps)
}

func TestVariableRateReservesGuardBand(t *testing.T) {
	t.Parallel()

	plain, err := designPolyFilter(QualityRec{Precision: 20, StopbandBegin: 1}, RuntimeRec{}, 1.0)
	require.NoError(t, err)
	vr, err := designPolyFilter(QualityRec{Precision: 20, StopbandBegin: 1, Flags: VariableRate}, RuntimeRec{}, 1.0)
	require.NoError(t, err)

	// The guard band narrows the transition, which costs taps.
	assert.Greater(t, vr.taps, plain.taps)
}

func TestDownsampleDesignScalesWithRatio(t *testing.T) {
	t.Parallel()

	unity, err := designPolyFilter(QualityRec{Precision: 20, StopbandBegin: 1}, RuntimeRec{}, 1.0)
	require.NoError(t, err)
	half, err := designPolyFilter(QualityRec{Precision: 20, StopbandBegin: 1}, RuntimeRec{}, 2.0)
	require.NoError(t, err)

	assert.Greater(t, half.taps, unity.taps, "downsampling needs a proportionally narrower filter")
}
