package arm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armsim/pkg/errors"
)

func newTestArm(t *testing.T) *Arm {
	t.Helper()
	a, err := New(100, 80, 0, 0)
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	a := newTestArm(t)
	assert.Equal(t, 100.0, a.L1)
	assert.Equal(t, 80.0, a.L2)
	assert.Equal(t, 180.0, a.MaxReach())
	assert.Equal(t, 20.0, a.MinReach())
}

func TestNewInvalidLengths(t *testing.T) {
	_, err := New(0, 80, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidParameter(err))

	_, err = New(100, 0, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidParameter(err))

	_, err = New(-5, 80, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidParameter(err))
}

func TestForwardKinematicsStraight(t *testing.T) {
	a := newTestArm(t)

	// Arm fully extended along the X axis
	x, y := a.ForwardKinematics(0, 0)
	assert.InDelta(t, 180, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestForwardKinematicsFolded(t *testing.T) {
	a := newTestArm(t)

	// Arm folded back on itself
	x, y := a.ForwardKinematics(0, math.Pi)
	assert.InDelta(t, 20, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestForwardKinematicsOffsetBase(t *testing.T) {
	a, err := New(100, 80, 10, -5)
	require.NoError(t, err)

	x, y := a.ForwardKinematics(0, 0)
	assert.InDelta(t, 190, x, 1e-9)
	assert.InDelta(t, -5, y, 1e-9)
}

func TestJointPositions(t *testing.T) {
	a := newTestArm(t)

	jx, jy, ex, ey := a.JointPositions(0, math.Pi/2)
	assert.InDelta(t, 100, jx, 1e-9)
	assert.InDelta(t, 0, jy, 1e-9)
	assert.InDelta(t, 100, ex, 1e-9)
	assert.InDelta(t, 80, ey, 1e-9)
}

func TestIsReachableInsideBounds(t *testing.T) {
	a := newTestArm(t)

	assert.True(t, a.IsReachable(150, 0), "well within range")
	assert.True(t, a.IsReachable(180, 0), "outer boundary")
	assert.True(t, a.IsReachable(20, 0), "inner boundary")
}

func TestIsReachableOutsideBounds(t *testing.T) {
	a := newTestArm(t)

	assert.False(t, a.IsReachable(200, 0), "beyond outer radius")
	assert.False(t, a.IsReachable(10, 0), "inside inner radius")
	assert.False(t, a.IsReachable(0, 0), "base itself is inside the annulus hole")
}

func TestIsReachableBoundaryTolerance(t *testing.T) {
	a := newTestArm(t)

	// Exactly on the boundaries at an arbitrary bearing: rounding in the
	// distance computation must not cause rejection.
	for _, angle := range []float64{0, 0.3, 1.0, 2.5, -1.7} {
		outerX := 180 * math.Cos(angle)
		outerY := 180 * math.Sin(angle)
		assert.True(t, a.IsReachable(outerX, outerY), "outer boundary at angle %v", angle)

		innerX := 20 * math.Cos(angle)
		innerY := 20 * math.Sin(angle)
		assert.True(t, a.IsReachable(innerX, innerY), "inner boundary at angle %v", angle)
	}

	// Clearly off the boundary in either direction
	assert.False(t, a.IsReachable(180.001, 0))
	assert.False(t, a.IsReachable(19.999, 0))
}

func TestInverseKinematicsKnownPoints(t *testing.T) {
	a := newTestArm(t)

	cfg, err := a.InverseKinematics(180, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, cfg.Theta1, 1e-9)
	assert.InDelta(t, 0, cfg.Theta2, 1e-9)

	cfg, err = a.InverseKinematics(20, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, cfg.Theta1, 1e-9)
	assert.InDelta(t, math.Pi, cfg.Theta2, 1e-9)
}

func TestInverseKinematicsRoundTrip(t *testing.T) {
	a := newTestArm(t)

	cfg, err := a.InverseKinematics(120, 50)
	require.NoError(t, err)

	x, y := a.ForwardKinematics(cfg.Theta1, cfg.Theta2)
	assert.InDelta(t, 120, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
}

func TestInverseKinematicsBranchRoundTrip(t *testing.T) {
	a := newTestArm(t)

	// For configurations already on the selected branch (theta2 in
	// [0, pi]), inverse(forward(...)) must recover the same pair.
	for theta1 := -3.0; theta1 <= 3.0; theta1 += 0.5 {
		for theta2 := 0.1; theta2 <= 3.0; theta2 += 0.4 {
			x, y := a.ForwardKinematics(theta1, theta2)
			cfg, err := a.InverseKinematics(x, y)
			require.NoError(t, err, "theta1=%v theta2=%v", theta1, theta2)
			assert.InDelta(t, theta1, cfg.Theta1, 1e-8, "theta1 at %v/%v", theta1, theta2)
			assert.InDelta(t, theta2, cfg.Theta2, 1e-8, "theta2 at %v/%v", theta1, theta2)
		}
	}
}

func TestInverseKinematicsTheta1Normalized(t *testing.T) {
	a := newTestArm(t)

	// Targets whose bearing sits near the atan2 cut push the raw
	// alpha - beta difference below -pi; the solver must bring the
	// result back into (-pi, pi] while still hitting the target.
	for _, target := range [][2]float64{{-150, 0}, {-120, -5}, {-100, 30}, {-170, -20}} {
		cfg, err := a.InverseKinematics(target[0], target[1])
		require.NoError(t, err, "target %v", target)
		assert.Greater(t, cfg.Theta1, -math.Pi, "target %v", target)
		assert.LessOrEqual(t, cfg.Theta1, math.Pi, "target %v", target)

		x, y := a.ForwardKinematics(cfg.Theta1, cfg.Theta2)
		assert.InDelta(t, target[0], x, 1e-9)
		assert.InDelta(t, target[1], y, 1e-9)
	}
}

func TestInverseKinematicsSelectsNonNegativeElbow(t *testing.T) {
	a := newTestArm(t)

	for _, target := range [][2]float64{{120, 50}, {150, 0}, {-40, 90}, {0, -100}} {
		cfg, err := a.InverseKinematics(target[0], target[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cfg.Theta2, 0.0, "target %v", target)
		assert.LessOrEqual(t, cfg.Theta2, math.Pi+1e-12, "target %v", target)
	}
}

func TestInverseKinematicsOffsetBase(t *testing.T) {
	a, err := New(70, 50, -30, 40)
	require.NoError(t, err)

	cfg, err := a.InverseKinematics(50, 60)
	require.NoError(t, err)

	x, y := a.ForwardKinematics(cfg.Theta1, cfg.Theta2)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 60, y, 1e-9)
}

func TestInverseKinematicsUnreachable(t *testing.T) {
	a := newTestArm(t)

	_, err := a.InverseKinematics(200, 0)
	require.Error(t, err)
	assert.True(t, errors.IsOutOfReach(err))

	simErr := errors.AsSimError(err)
	require.NotNil(t, simErr)
	assert.True(t, simErr.HasPoint)
	assert.Equal(t, 200.0, simErr.PointX)
	assert.Equal(t, 20.0, simErr.MinReach)
	assert.Equal(t, 180.0, simErr.MaxReach)

	_, err = a.InverseKinematics(10, 0)
	require.Error(t, err)
	assert.True(t, errors.IsOutOfReach(err))
}

func TestInverseKinematicsDegenerateAtBase(t *testing.T) {
	// Equal link lengths make the base itself reachable (the arm folds
	// flat), but the joint angles are then not unique.
	a, err := New(50, 50, 0, 0)
	require.NoError(t, err)
	require.True(t, a.IsReachable(0, 0))

	_, err = a.InverseKinematics(0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsDegenerate(err))
}

func TestInverseKinematicsEqualLinksNearBase(t *testing.T) {
	// Close to the base but not on it: still a unique solution.
	a, err := New(50, 50, 0, 0)
	require.NoError(t, err)

	cfg, err := a.InverseKinematics(0.5, 0)
	require.NoError(t, err)

	x, y := a.ForwardKinematics(cfg.Theta1, cfg.Theta2)
	assert.InDelta(t, 0.5, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}
