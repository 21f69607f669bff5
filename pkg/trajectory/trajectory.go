// Package trajectory generates joint-space trajectories for a two-link arm
// tracing a circle at constant tangential speed. The circle is sampled at a
// uniform time step, each sample is solved through inverse kinematics, and
// the resulting joint-angle sequences are numerically differentiated to
// produce angular velocities and accelerations.
package trajectory

import (
	"math"

	"armsim/pkg/arm"
	"armsim/pkg/errors"
)

// Circle describes the target path of the end effector.
// A radius of zero is a degenerate single-point path and is accepted.
type Circle struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"radius"`
}

// Validate checks the circle parameters.
func (c Circle) Validate() error {
	if c.Radius < 0 {
		return errors.InvalidParameterError("radius", "circle radius must be non-negative")
	}
	return nil
}

// PointAt returns the point on the circle at the given angle from the
// positive X axis, measured counter-clockwise about the center.
func (c Circle) PointAt(angle float64) (x, y float64) {
	return c.CenterX + c.Radius*math.Cos(angle), c.CenterY + c.Radius*math.Sin(angle)
}

// Sampling describes how the path is traversed and discretized.
type Sampling struct {
	// Speed is the tangential speed of the end effector along the circle
	Speed float64 `json:"speed"`

	// TimeStep is the sampling interval
	TimeStep float64 `json:"time_step"`
}

// Validate checks the sampling parameters. Zero or negative values are
// configuration errors, never silently clamped.
func (s Sampling) Validate() error {
	if s.Speed <= 0 {
		return errors.InvalidParameterError("speed", "tangential speed must be positive")
	}
	if s.TimeStep <= 0 {
		return errors.InvalidParameterError("time_step", "time step must be positive")
	}
	return nil
}

// Sample is one time-stamped trajectory record.
type Sample struct {
	T      float64 // Sample time
	Theta1 float64 // Shoulder angle
	Theta2 float64 // Elbow angle relative to link 1
	Omega1 float64 // Shoulder angular velocity
	Omega2 float64 // Elbow angular velocity
	Alpha1 float64 // Shoulder angular acceleration
	Alpha2 float64 // Elbow angular acceleration
}

// Trajectory is an ordered, time-increasing sequence of samples. It is
// produced in one shot by Generate and never mutated afterwards.
type Trajectory []Sample

// Duration returns the time of the final sample, or 0 for an empty
// trajectory.
func (tr Trajectory) Duration() float64 {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].T
}

// Series holds the trajectory as parallel arrays for plotting consumers.
type Series struct {
	T      []float64 `json:"t"`
	Theta1 []float64 `json:"theta1"`
	Theta2 []float64 `json:"theta2"`
	Omega1 []float64 `json:"omega1"`
	Omega2 []float64 `json:"omega2"`
	Alpha1 []float64 `json:"alpha1"`
	Alpha2 []float64 `json:"alpha2"`
}

// Extract converts the trajectory into parallel series.
func (tr Trajectory) Extract() Series {
	s := Series{
		T:      make([]float64, len(tr)),
		Theta1: make([]float64, len(tr)),
		Theta2: make([]float64, len(tr)),
		Omega1: make([]float64, len(tr)),
		Omega2: make([]float64, len(tr)),
		Alpha1: make([]float64, len(tr)),
		Alpha2: make([]float64, len(tr)),
	}
	for i, smp := range tr {
		s.T[i] = smp.T
		s.Theta1[i] = smp.Theta1
		s.Theta2[i] = smp.Theta2
		s.Omega1[i] = smp.Omega1
		s.Omega2[i] = smp.Omega2
		s.Alpha1[i] = smp.Alpha1
		s.Alpha2[i] = smp.Alpha2
	}
	return s
}

// ValidateCircle reports whether the whole circle lies inside the arm's
// reachable annulus.
//
// The check is closed form and conservative: the farthest point of the
// circle from the base is at distance(base, center) + radius, the nearest
// is taken as max(0, distance(base, center) - radius). The circle is fully
// reachable iff farthest <= MaxReach and nearest >= MinReach, with the same
// boundary tolerance the kinematics solver applies. Constant time,
// independent of how many samples a later Generate call will request.
func ValidateCircle(a *arm.Arm, c Circle) bool {
	nearest, farthest := reachExtremes(a, c)

	tol := reachTolerance(a)
	return farthest <= a.MaxReach()+tol && nearest >= a.MinReach()-tol
}

// Generate produces the full trajectory for one traversal of the circle.
//
// Sample times are t_k = k*TimeStep; the final step is clamped to land
// exactly on the total duration T = 2*pi*radius/speed so the path always
// closes at the start point. On any failure no partial trajectory is
// returned.
func Generate(a *arm.Arm, c Circle, s Sampling) (Trajectory, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !ValidateCircle(a, c) {
		return nil, circleReachError(a, c)
	}

	// Degenerate single-point path: the traversal covers no arc length,
	// so there is no angular speed to derive. One stationary sample.
	if c.Radius == 0 {
		cfg, err := a.InverseKinematics(c.CenterX, c.CenterY)
		if err != nil {
			return nil, err
		}
		return Trajectory{{T: 0, Theta1: cfg.Theta1, Theta2: cfg.Theta2}}, nil
	}

	// Constant-speed traversal: omega is the angular rate of progress
	// around the circle, T the time for one full revolution.
	omega := s.Speed / c.Radius
	total := 2 * math.Pi * c.Radius / s.Speed

	times := sampleTimes(total, s.TimeStep)

	theta1 := make([]float64, len(times))
	theta2 := make([]float64, len(times))
	for i, t := range times {
		x, y := c.PointAt(omega * t)
		cfg, err := a.InverseKinematics(x, y)
		if err != nil {
			return nil, err
		}
		theta1[i] = cfg.Theta1
		theta2[i] = cfg.Theta2
	}

	// The solver returns angles in (-pi, pi]; a path whose bearing from
	// the base crosses the negative X axis wraps at that cut even though
	// the configuration branch never changes. Unwrap the sequences so
	// adjacent samples stay within pi of each other and the finite
	// differences see the true angular motion.
	theta1 = unwrap(theta1)
	theta2 = unwrap(theta2)

	omega1 := differentiate(theta1, times)
	omega2 := differentiate(theta2, times)
	alpha1 := differentiate(omega1, times)
	alpha2 := differentiate(omega2, times)

	tr := make(Trajectory, len(times))
	for i := range times {
		tr[i] = Sample{
			T:      times[i],
			Theta1: theta1[i],
			Theta2: theta2[i],
			Omega1: omega1[i],
			Omega2: omega2[i],
			Alpha1: alpha1[i],
			Alpha2: alpha2[i],
		}
	}
	return tr, nil
}

// sampleTimes returns t_k = k*step for t_k <= total, appending a final
// clamped sample at exactly total unless the last uniform step already
// lands there.
func sampleTimes(total, step float64) []float64 {
	n := int(total / step)
	times := make([]float64, 0, n+2)
	for k := 0; k <= n; k++ {
		t := float64(k) * step
		if t > total {
			break
		}
		times = append(times, t)
	}
	if total-times[len(times)-1] > 1e-12*step {
		times = append(times, total)
	}
	return times
}

// reachExtremes returns the conservative nearest and farthest distances
// from the base to the circle.
func reachExtremes(a *arm.Arm, c Circle) (nearest, farthest float64) {
	dist := math.Hypot(c.CenterX-a.BaseX, c.CenterY-a.BaseY)
	farthest = dist + c.Radius
	nearest = math.Max(0, dist-c.Radius)
	return nearest, farthest
}

// circleReachError builds the OUT_OF_REACH error for an unreachable
// circle, carrying the worst offending point on the circle.
func circleReachError(a *arm.Arm, c Circle) error {
	dx := c.CenterX - a.BaseX
	dy := c.CenterY - a.BaseY
	dist := math.Hypot(dx, dy)

	// Unit vector from the base towards the center. Any bearing serves
	// when the base sits on the center.
	ux, uy := 1.0, 0.0
	if dist > 0 {
		ux, uy = dx/dist, dy/dist
	}

	nearest, _ := reachExtremes(a, c)
	tol := reachTolerance(a)

	var px, py float64
	if nearest < a.MinReach()-tol {
		px = c.CenterX - c.Radius*ux
		py = c.CenterY - c.Radius*uy
	} else {
		px = c.CenterX + c.Radius*ux
		py = c.CenterY + c.Radius*uy
	}
	return errors.OutOfReachError(px, py, a.MinReach(), a.MaxReach())
}

// reachTolerance mirrors the boundary tolerance the kinematics solver
// applies, so validation and per-sample solving agree on boundary points.
func reachTolerance(a *arm.Arm) float64 {
	scale := a.MaxReach()
	if scale < 1.0 {
		scale = 1.0
	}
	return 1e-9 * scale
}
