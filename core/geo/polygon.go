package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is a closed boundary polygon over lat/lon vertices. The ring is
// closed implicitly: the last vertex connects back to the first.
type Polygon struct {
	vertices []Location
	ring     orb.Ring
}

// NewPolygon builds a polygon from its vertices. At least three vertices are
// required.
func NewPolygon(vertices []Location) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(vertices))
	}
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, v.Point())
	}
	ring = append(ring, vertices[0].Point())
	return &Polygon{vertices: vertices, ring: ring}, nil
}

// Vertices returns the polygon's vertices in input order.
func (p *Polygon) Vertices() []Location { return p.vertices }

// boundaryTolKM treats anything within a millimetre of the boundary as on
// it, absorbing round-off in the spherical projections.
const boundaryTolKM = 1e-6

// Contains reports whether l lies inside the polygon. Points on the boundary
// count as inside.
func (p *Polygon) Contains(l Location) bool {
	if planar.RingContains(p.ring, l.Point()) {
		return true
	}
	_, d := p.ClosestBoundaryPoint(l)
	return d <= boundaryTolKM
}

// ClosestBoundaryPoint returns the point on the polygon's boundary closest to
// l and its distance in km.
func (p *Polygon) ClosestBoundaryPoint(l Location) (Location, float64) {
	best := p.vertices[0]
	bestDist := math.Inf(1)
	prev := p.vertices[len(p.vertices)-1]
	for _, v := range p.vertices {
		c := closestOnSegment(l, prev, v)
		if d := Distance(l, c); d < bestDist {
			best, bestDist = c, d
		}
		prev = v
	}
	return best, bestDist
}

// closestOnSegment projects l onto the segment a-b in local planar
// coordinates and returns the closest point on the segment.
func closestOnSegment(l, a, b Location) Location {
	ax, ay := PlanarDelta(l, a)
	bx, by := PlanarDelta(l, b)
	dx, dy := bx-ax, by-ay
	segLen2 := dx*dx + dy*dy
	if segLen2 == 0 {
		return a
	}
	// t is the projection of the origin (l) onto the segment.
	t := -(ax*dx + ay*dy) / segLen2
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Intermediate(a, b, t)
}
