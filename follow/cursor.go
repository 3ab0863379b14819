package follow

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/parameter"
)

// Cursor walks an agent along a waypoint sequence
// Not safe for concurrent use; each agent owns its cursor
type Cursor struct {
	waypoints []mgl64.Vec2
	index     int

	// Tolerance is the arrival distance at which a waypoint is consumed
	Tolerance float64
}

// NewCursor creates a cursor over waypoints with the default tolerance
func NewCursor(waypoints []mgl64.Vec2) *Cursor {
	return &Cursor{
		waypoints: waypoints,
		Tolerance: parameter.NavWaypointTolerance,
	}
}

// Next returns the waypoint to steer toward from pos
// Waypoints within Tolerance are consumed first; ok is false once the path is exhausted
func (c *Cursor) Next(pos mgl64.Vec2) (target mgl64.Vec2, ok bool) {
	tol2 := c.Tolerance * c.Tolerance
	for c.index < len(c.waypoints) {
		wp := c.waypoints[c.index]
		if d := wp.Sub(pos); d.Dot(d) > tol2 {
			return wp, true
		}
		c.index++
	}
	return pos, false
}

// Done reports whether every waypoint has been reached
func (c *Cursor) Done() bool {
	return c.index >= len(c.waypoints)
}

// Remaining returns the unreached waypoints; callers must not modify them
func (c *Cursor) Remaining() []mgl64.Vec2 {
	return c.waypoints[c.index:]
}

// Reset replaces the path, typically after a re-query
func (c *Cursor) Reset(waypoints []mgl64.Vec2) {
	c.waypoints = waypoints
	c.index = 0
}
