package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKM is the radius of the spherical Earth model used for all
// distance computations.
const EarthRadiusKM = 6371.0

// Location is a position in worldwide latitude and longitude coordinates,
// in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts the location to an orb.Point (lon, lat order).
func (l Location) Point() orb.Point {
	return orb.Point{l.Lon, l.Lat}
}

// FromPoint converts an orb.Point (lon, lat order) back to a Location.
func FromPoint(p orb.Point) Location {
	return Location{Lat: p.Y(), Lon: p.X()}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle distance between a and b in km.
func Distance(a, b Location) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLon := math.Sin((lon2 - lon1) / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bearing returns the initial bearing from a to b in degrees, normalised to
// [0, 360).
func Bearing(a, b Location) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(degrees(math.Atan2(y, x))+360, 360)
}

// Intermediate returns the point a fraction f of the way from a to b along
// the great circle connecting them. f outside [0, 1] is clamped.
func Intermediate(a, b Location, f float64) Location {
	if f <= 0 {
		return a
	}
	if f >= 1 {
		return b
	}
	d := Distance(a, b) / EarthRadiusKM
	if d == 0 {
		return a
	}
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	sinD := math.Sin(d)
	p := math.Sin((1-f)*d) / sinD
	q := math.Sin(f*d) / sinD
	x := p*math.Cos(lat1)*math.Cos(lon1) + q*math.Cos(lat2)*math.Cos(lon2)
	y := p*math.Cos(lat1)*math.Sin(lon1) + q*math.Cos(lat2)*math.Sin(lon2)
	z := p*math.Sin(lat1) + q*math.Sin(lat2)
	return Location{
		Lat: degrees(math.Atan2(z, math.Hypot(x, y))),
		Lon: degrees(math.Atan2(y, x)),
	}
}

// PositionAt returns the interpolated position of an object travelling from a
// (departing at tStart) to b (arriving at tEnd) at time t. Times outside the
// interval clamp to the endpoints.
func PositionAt(a, b Location, tStart, tEnd, t float64) Location {
	if tEnd <= tStart {
		return b
	}
	return Intermediate(a, b, (t-tStart)/(tEnd-tStart))
}

// Nearest returns the index of the point closest to p, breaking ties in
// favour of the lowest index. It returns -1 for an empty slice.
func Nearest(points []Location, p Location) int {
	best := -1
	bestDist := math.Inf(1)
	for i, pt := range points {
		if d := Distance(pt, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// PlanarDelta returns the local east/north displacement in km from a to b,
// using an equirectangular approximation around a. It is only meaningful for
// nearby points and is used by the force-field controller.
func PlanarDelta(a, b Location) (east, north float64) {
	east = radians(b.Lon-a.Lon) * math.Cos(radians(a.Lat)) * EarthRadiusKM
	north = radians(b.Lat-a.Lat) * EarthRadiusKM
	return east, north
}

// Offset returns the location displaced from l by the given east/north
// distances in km, using the same planar approximation as PlanarDelta.
func Offset(l Location, east, north float64) Location {
	lat := l.Lat + degrees(north/EarthRadiusKM)
	lon := l.Lon + degrees(east/(EarthRadiusKM*math.Cos(radians(l.Lat))))
	return Location{Lat: lat, Lon: lon}
}
