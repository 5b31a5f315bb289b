// Package movement implements the declarative movement patterns (fixed,
// waypoints, circle, spiral, spline, arc) and the per-tick step driver that
// advances an agent toward each pattern's current target.
package movement

import (
	"math"

	"dtnsim/internal/geometry"
)

// Pattern produces a stream of target positions for an agent to walk
// toward. ShouldTeleport reports whether the engine should reposition the
// agent directly to Next() rather than walking toward it (used when a
// waypoint loop wraps around).
type Pattern interface {
	// Next advances the pattern's internal cursor and returns the new target.
	Next() geometry.Position
	// ShouldTeleport is sampled once after the most recent Next() call.
	ShouldTeleport() bool
}

// Fixed never moves; Next always returns the same position.
type Fixed struct {
	Pos geometry.Position
}

func NewFixed(pos geometry.Position) *Fixed { return &Fixed{Pos: pos} }

func (f *Fixed) Next() geometry.Position { return f.Pos }
func (f *Fixed) ShouldTeleport() bool     { return false }

// Waypoints walks a fixed list of points in order, optionally bouncing
// back and forth or repeating (wrapping, which teleports back to the
// first point rather than walking the long way around).
type Waypoints struct {
	Points []geometry.Position
	Bounce bool
	Repeat bool

	idx       int
	dir       int
	teleports bool
	wrapped   bool
}

func NewWaypoints(points []geometry.Position, bounce, repeat bool) *Waypoints {
	return &Waypoints{Points: points, Bounce: bounce, Repeat: repeat, dir: 1}
}

func (w *Waypoints) Next() geometry.Position {
	w.teleports = false
	if len(w.Points) == 0 {
		return geometry.Position{}
	}
	if len(w.Points) == 1 {
		return w.Points[0]
	}

	cur := w.Points[w.idx]

	switch {
	case w.Bounce:
		next := w.idx + w.dir
		if next < 0 || next >= len(w.Points) {
			w.dir = -w.dir
			next = w.idx + w.dir
		}
		w.idx = next
	case w.Repeat:
		w.teleports = w.wrapped
		w.wrapped = false
		w.idx++
		if w.idx >= len(w.Points) {
			w.idx = 0
			w.wrapped = true
		}
	default:
		if w.idx < len(w.Points)-1 {
			w.idx++
		}
	}

	return cur
}

func (w *Waypoints) ShouldTeleport() bool { return w.teleports }

// Circle steps uniformly around a circle of fixed radius, angularStep
// radians per call to Next().
type Circle struct {
	Center      geometry.Position
	Radius      float64
	AngularStep float64
	angle       float64
}

func NewCircle(center geometry.Position, radius, angularStep float64) *Circle {
	return &Circle{Center: center, Radius: radius, AngularStep: angularStep}
}

func (c *Circle) Next() geometry.Position {
	c.angle += c.AngularStep
	return geometry.Position{
		X: c.Center.X + c.Radius*math.Cos(c.angle),
		Y: c.Center.Y + c.Radius*math.Sin(c.angle),
	}
}

func (c *Circle) ShouldTeleport() bool { return false }

// Spiral is an Archimedean spiral: radius grows linearly with angle.
type Spiral struct {
	Center      geometry.Position
	GrowthRate  float64
	AngularStep float64
	angle       float64
}

func NewSpiral(center geometry.Position, growthRate, angularStep float64) *Spiral {
	return &Spiral{Center: center, GrowthRate: growthRate, AngularStep: angularStep}
}

func (s *Spiral) Next() geometry.Position {
	s.angle += s.AngularStep
	r := s.GrowthRate * s.angle
	return geometry.Position{
		X: s.Center.X + r*math.Cos(s.angle),
		Y: s.Center.Y + r*math.Sin(s.angle),
	}
}

func (s *Spiral) ShouldTeleport() bool { return false }

// Arc walks a quadratic Bezier curve through three control points,
// resampled at a constant parametric step.
type Arc struct {
	P0, P1, P2 geometry.Position
	Step       float64
	t          float64
}

func NewArc(p0, p1, p2 geometry.Position, step float64) *Arc {
	return &Arc{P0: p0, P1: p1, P2: p2, Step: step}
}

func (a *Arc) Next() geometry.Position {
	a.t += a.Step
	if a.t > 1 {
		a.t = 1
	}
	u := 1 - a.t
	x := u*u*a.P0.X + 2*u*a.t*a.P1.X + a.t*a.t*a.P2.X
	y := u*u*a.P0.Y + 2*u*a.t*a.P1.Y + a.t*a.t*a.P2.Y
	return geometry.Position{X: x, Y: y}
}

func (a *Arc) ShouldTeleport() bool { return false }

// Spline resamples a Catmull-Rom curve through a set of control points at a
// fixed arc-length step (the configured speed). Catmull-Rom plus fixed-step
// resampling avoids depending on an external numerical library.
type Spline struct {
	points   []geometry.Position
	samples  []geometry.Position
	idx      int
	teleport bool
	wrapped  bool
}

// NewSpline resamples the Catmull-Rom curve through points at intervals of
// approximately step (tolerance on waypoint distance is the configured
// speed).
func NewSpline(points []geometry.Position, step float64) *Spline {
	s := &Spline{points: points}
	s.samples = resampleCatmullRom(points, step)
	return s
}

func (s *Spline) Next() geometry.Position {
	s.teleport = false
	if len(s.samples) == 0 {
		return geometry.Position{}
	}
	s.teleport = s.wrapped
	s.wrapped = false
	cur := s.samples[s.idx]
	s.idx++
	if s.idx >= len(s.samples) {
		s.idx = 0
		s.wrapped = true
	}
	return cur
}

func (s *Spline) ShouldTeleport() bool { return s.teleport }

// resampleCatmullRom fits a Catmull-Rom spline through points and resamples
// it at approximately constant arc-length intervals of step.
func resampleCatmullRom(points []geometry.Position, step float64) []geometry.Position {
	if len(points) < 2 || step <= 0 {
		return points
	}

	// Pad the control point list so the first/last segments have a usable
	// neighbor, by duplicating the endpoints (clamped spline).
	padded := make([]geometry.Position, 0, len(points)+2)
	padded = append(padded, points[0])
	padded = append(padded, points...)
	padded = append(padded, points[len(points)-1])

	const subSamplesPerSegment = 64
	var dense []geometry.Position
	for seg := 0; seg+3 < len(padded); seg++ {
		p0, p1, p2, p3 := padded[seg], padded[seg+1], padded[seg+2], padded[seg+3]
		for i := 0; i < subSamplesPerSegment; i++ {
			t := float64(i) / float64(subSamplesPerSegment)
			dense = append(dense, catmullRomPoint(p0, p1, p2, p3, t))
		}
	}
	dense = append(dense, points[len(points)-1])

	// Resample dense polyline at constant arc-length intervals of step.
	resampled := []geometry.Position{dense[0]}
	acc := 0.0
	for i := 1; i < len(dense); i++ {
		segLen := geometry.Distance(dense[i-1], dense[i])
		acc += segLen
		if acc >= step {
			resampled = append(resampled, dense[i])
			acc = 0
		}
	}
	if last := dense[len(dense)-1]; geometry.Distance(resampled[len(resampled)-1], last) > 1e-9 {
		resampled = append(resampled, last)
	}
	return resampled
}

func catmullRomPoint(p0, p1, p2, p3 geometry.Position, t float64) geometry.Position {
	t2 := t * t
	t3 := t2 * t
	x := 0.5 * ((2 * p1.X) +
		(-p0.X+p2.X)*t +
		(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
		(-p0.X+3*p1.X-3*p2.X+p3.X)*t3)
	y := 0.5 * ((2 * p1.Y) +
		(-p0.Y+p2.Y)*t +
		(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
		(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)
	return geometry.Position{X: x, Y: y}
}
