package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQMoveSeedsAccelAndDecelGroups(t *testing.T) {
	m := NewQMove(12, 900, 2500, AccelOrder6, 3000, 1500, 60000, 0.02, 0.1)
	require.Equal(t, AccelOrder6, m.AccelGroup.Order)
	require.Equal(t, AccelOrder6, m.DecelGroup.Order)
	require.Equal(t, 3000.0, m.AccelGroup.MaxAccel)
	require.Equal(t, 3000.0, m.DecelGroup.MaxAccel)
	require.Equal(t, 0.1, m.AccelGroup.AccelComp)
	require.NotSame(t, m.AccelGroup, m.DecelGroup)
}

func TestNewQMovePrecomputesSmoothDeltaV2(t *testing.T) {
	m := NewQMove(5, 900, 2500, AccelOrder4, 3000, 1200, 60000, 0.02, 0)
	require.InDelta(t, 2*1200*5, m.SmoothDeltaV2, 1e-9)
}

func TestQMoveJunctionPointStartsInactive(t *testing.T) {
	m := NewQMove(5, 900, 2500, AccelOrder4, 3000, 1200, 60000, 0.02, 0)
	require.False(t, m.Junction.active)
	require.Nil(t, m.Junction.Group)
}
