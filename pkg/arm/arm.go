// Package arm models a two-link planar robotic arm: forward kinematics,
// inverse kinematics with a fixed configuration branch, and workspace
// reachability over the annulus the end effector can cover.
package arm

import (
	"math"

	"armsim/pkg/errors"
)

// reachTolerance is the relative tolerance applied at the annulus
// boundaries so that points exactly on the inner or outer radius are not
// rejected by floating-point rounding.
const reachTolerance = 1e-9

// Arm represents a two-link planar arm. Link 1 is anchored at the base;
// link 2 carries the end effector. Immutable once constructed.
type Arm struct {
	L1    float64 // Length of the first link
	L2    float64 // Length of the second link
	BaseX float64 // X coordinate of the fixed base
	BaseY float64 // Y coordinate of the fixed base
}

// JointConfig holds one joint-space solution.
// Theta1 is the angle of link 1 from the horizontal, Theta2 the angle of
// link 2 relative to link 1, both in radians measured counter-clockwise.
type JointConfig struct {
	Theta1 float64
	Theta2 float64
}

// New creates an Arm and validates its geometry.
// Both link lengths must be strictly positive.
func New(l1, l2, baseX, baseY float64) (*Arm, error) {
	if l1 <= 0 {
		return nil, errors.InvalidParameterError("l1", "link length must be positive")
	}
	if l2 <= 0 {
		return nil, errors.InvalidParameterError("l2", "link length must be positive")
	}
	return &Arm{L1: l1, L2: l2, BaseX: baseX, BaseY: baseY}, nil
}

// MaxReach returns the outer radius of the reachable annulus.
func (a *Arm) MaxReach() float64 {
	return a.L1 + a.L2
}

// MinReach returns the inner radius of the reachable annulus.
func (a *Arm) MinReach() float64 {
	return math.Abs(a.L1 - a.L2)
}

// ForwardKinematics computes the end-effector position for the given joint
// angles. Total over all real angle inputs.
func (a *Arm) ForwardKinematics(theta1, theta2 float64) (x, y float64) {
	jointX := a.BaseX + a.L1*math.Cos(theta1)
	jointY := a.BaseY + a.L1*math.Sin(theta1)

	x = jointX + a.L2*math.Cos(theta1+theta2)
	y = jointY + a.L2*math.Sin(theta1+theta2)
	return x, y
}

// JointPositions returns the intermediate joint and end-effector positions
// for the given joint angles, for renderers drawing successive arm poses.
func (a *Arm) JointPositions(theta1, theta2 float64) (jointX, jointY, endX, endY float64) {
	jointX = a.BaseX + a.L1*math.Cos(theta1)
	jointY = a.BaseY + a.L1*math.Sin(theta1)
	endX = jointX + a.L2*math.Cos(theta1+theta2)
	endY = jointY + a.L2*math.Sin(theta1+theta2)
	return jointX, jointY, endX, endY
}

// IsReachable reports whether the target point lies within the reachable
// annulus. Points exactly on either boundary are reachable.
func (a *Arm) IsReachable(x, y float64) bool {
	dx := x - a.BaseX
	dy := y - a.BaseY
	dist := math.Hypot(dx, dy)

	tol := a.boundaryTolerance()
	return dist <= a.MaxReach()+tol && dist >= a.MinReach()-tol
}

// InverseKinematics computes the joint angles that place the end effector
// at the target point.
//
// Of the two possible configurations the solver always selects the branch
// with non-negative Theta2 (the "elbow-down" solution under this package's
// counter-clockwise angle convention). Applying the same branch to every
// query keeps sampled trajectories free of configuration flips.
func (a *Arm) InverseKinematics(x, y float64) (JointConfig, error) {
	if !a.IsReachable(x, y) {
		return JointConfig{}, errors.OutOfReachError(x, y, a.MinReach(), a.MaxReach())
	}

	dx := x - a.BaseX
	dy := y - a.BaseY
	d2 := dx*dx + dy*dy
	dist := math.Sqrt(d2)

	// Reachable targets can only coincide with the base when L1 == L2.
	// Every bearing of the elbow then satisfies the target, so there is
	// no unique solution and the beta term below would divide by zero.
	if dist <= reachTolerance*a.MaxReach() {
		return JointConfig{}, errors.DegenerateConfigurationError(x, y,
			"target coincides with the base; joint angles are not unique")
	}

	// Law of cosines for the elbow angle. The argument is clamped to
	// [-1, 1] to absorb floating-point overshoot at the boundary.
	cosTheta2 := clamp((d2-a.L1*a.L1-a.L2*a.L2)/(2*a.L1*a.L2), -1.0, 1.0)
	theta2 := math.Acos(cosTheta2)

	// Shoulder angle: bearing of the target minus the offset angle
	// between the base-target line and link 1. The raw difference can
	// leave (-pi, pi] when the bearing sits near the atan2 cut, so it
	// is normalized back into that range.
	alpha := math.Atan2(dy, dx)
	cosBeta := clamp((a.L1*a.L1+d2-a.L2*a.L2)/(2*a.L1*dist), -1.0, 1.0)
	beta := math.Acos(cosBeta)
	theta1 := normalizeAngle(alpha - beta)

	return JointConfig{Theta1: theta1, Theta2: theta2}, nil
}

// normalizeAngle maps an angle into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// boundaryTolerance returns the absolute tolerance used at the annulus
// boundaries, scaled to the arm's size.
func (a *Arm) boundaryTolerance() float64 {
	scale := a.MaxReach()
	if scale < 1.0 {
		scale = 1.0
	}
	return reachTolerance * scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
