package utils

import "math"

const (
	// EarthRadiusInMeters is the mean earth radius used for all great-circle math.
	EarthRadiusInMeters = 6371000.0
)

// CoordinateBounds represents a bounding box with min/max latitude and longitude
type CoordinateBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// GreatCircleDistance returns the exact spherical distance in meters between two points.
// Identical points always yield 0.
func GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLon := toRadians(math.Abs(lon1 - lon2))

	cosAngle := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)
	// Rounding can push the cosine just outside [-1, 1] for near-identical or antipodal points.
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return math.Acos(cosAngle) * EarthRadiusInMeters
}

// Distance calculates the distance between two points on the Earth.
// For short distances (under ~22km) it uses an equirectangular approximation,
// which is accurate enough for radius filtering. Longer distances use GreatCircleDistance.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		x := toRadians(lon2-lon1) * math.Cos((toRadians(lat1)+toRadians(lat2))/2)
		y := toRadians(lat2 - lat1)
		return EarthRadiusInMeters * math.Sqrt(x*x+y*y)
	}

	return GreatCircleDistance(lat1, lon1, lat2, lon2)
}

// CalculateBounds returns the box enclosing a circle of the given radius (meters) around a point.
func CalculateBounds(lat, lon, radius float64) CoordinateBounds {
	latRadians := toRadians(lat)

	latOffset := radius / EarthRadiusInMeters
	lonOffset := radius / (math.Cos(latRadians) * EarthRadiusInMeters)

	return CoordinateBounds{
		MinLat: lat - latOffset*180/math.Pi,
		MaxLat: lat + latOffset*180/math.Pi,
		MinLon: lon - lonOffset*180/math.Pi,
		MaxLon: lon + lonOffset*180/math.Pi,
	}
}
