package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccelCombinerSingleMoveMatchesPlainAccelGroup(t *testing.T) {
	move := NewQMove(10, 1e9, 1e9, AccelOrder4, 3000, 1500, 60000, 0.02, 0)
	move.AccelGroup.SetMaxStartV2(0)

	c := NewAccelCombiner()
	c.ProcessNextAccel(move, move.AccelGroup, 1e9)

	want := NewAccelGroup(AccelOrder4, 3000, 60000, 0.02, 0)
	want.SetMaxStartV2(0)
	want.CombinedD = 10
	wantV2 := want.CalcMaxV2()

	require.InDelta(t, wantV2, move.AccelGroup.MaxEndV2, 1e-6)
	require.InDelta(t, 10, move.AccelGroup.CombinedD, 1e-9)
}

func TestAccelCombinerResetsOnOrderMismatch(t *testing.T) {
	c := NewAccelCombiner()

	m1 := NewQMove(5, 1e9, 1e9, AccelOrder4, 3000, 1500, 60000, 0.02, 0)
	m1.AccelGroup.SetMaxStartV2(0)
	c.ProcessNextAccel(m1, m1.AccelGroup, 1e9)
	require.Len(t, c.points, 1)

	m2 := NewQMove(5, 1e9, 1e9, AccelOrder2, 3000, 1500, 60000, 0.02, 0)
	m2.AccelGroup.SetMaxStartV2(m1.AccelGroup.MaxEndV2)
	c.ProcessNextAccel(m2, m2.AccelGroup, 1e9)
	// Order 2 never chains, so the combiner must have been reset to just
	// the new candidate.
	require.Len(t, c.points, 1)
}

func TestAccelCombinerResetsOnAccelCompMismatch(t *testing.T) {
	c := NewAccelCombiner()

	m1 := NewQMove(5, 1e9, 1e9, AccelOrder6, 3000, 1500, 60000, 0.02, 0)
	m1.AccelGroup.SetMaxStartV2(0)
	c.ProcessNextAccel(m1, m1.AccelGroup, 1e9)

	m2 := NewQMove(5, 1e9, 1e9, AccelOrder6, 3000, 1500, 60000, 0.02, 0.5)
	m2.AccelGroup.SetMaxStartV2(m1.AccelGroup.MaxEndV2)
	c.ProcessNextAccel(m2, m2.AccelGroup, 1e9)
	require.Len(t, c.points, 1)
}

func TestAccelCombinerChainsAcrossCombinableMoves(t *testing.T) {
	c := NewAccelCombiner()

	m1 := NewQMove(3, 1e9, 1e9, AccelOrder6, 3000, 1500, 60000, 0.02, 0)
	m1.AccelGroup.SetMaxStartV2(0)
	c.ProcessNextAccel(m1, m1.AccelGroup, 1e9)
	require.Len(t, c.points, 1)

	m2 := NewQMove(3, 1e9, 1e9, AccelOrder6, 3000, 1500, 60000, 0.02, 0)
	m2.AccelGroup.SetMaxStartV2(m1.AccelGroup.MaxEndV2)
	c.ProcessNextAccel(m2, m2.AccelGroup, 1e9)
	// Combinable: the candidate list should have grown by one (new
	// candidate appended; old one retained unless dominated).
	require.GreaterOrEqual(t, len(c.points), 1)
	require.Greater(t, m2.AccelGroup.CombinedD, m1.AccelGroup.CombinedD)
}

func TestAccelCombinerNeverExceedsJunctionCap(t *testing.T) {
	c := NewAccelCombiner()
	move := NewQMove(100, 1e9, 1e9, AccelOrder4, 3000, 1500, 60000, 0.02, 0)
	// The junction cap bounds the velocity the ramp starts this move at.
	move.AccelGroup.SetMaxStartV2(2500)
	const cap2 = 400.0 // v = 20
	c.ProcessNextAccel(move, move.AccelGroup, cap2)
	require.LessOrEqual(t, move.AccelGroup.StartAccel.MaxStartV2, cap2+1e-6)
}

func TestAccelCombinerFallbackDecelMirrorsForward(t *testing.T) {
	c := NewAccelCombiner()
	move := NewQMove(10, 1e9, 1e9, AccelOrder4, 3000, 1500, 60000, 0.02, 0)
	move.DecelGroup.SetMaxStartV2(0)
	c.ProcessFallbackDecel(move, 1e9)
	require.Greater(t, move.DecelGroup.MaxEndV2, 0.0)
}
