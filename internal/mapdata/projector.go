package mapdata

import (
	"math"

	"catalogue.onebusaway.org/internal/catalogue"
)

const epsilon = 1e-6

// Point is a position on the canvas in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SphereProjector maps geographic coordinates onto a padded canvas. The westmost point
// lands on the left padding edge and the northmost on the top padding edge; the zoom is
// the largest one that keeps every point inside the canvas.
type SphereProjector struct {
	padding float64
	minLon  float64
	maxLat  float64
	zoom    float64
}

func NewSphereProjector(points []catalogue.Coordinates, width, height, padding float64) SphereProjector {
	p := SphereProjector{padding: padding}
	if len(points) == 0 {
		return p
	}

	minLon, maxLon := points[0].Lng, points[0].Lng
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, c := range points[1:] {
		minLon = math.Min(minLon, c.Lng)
		maxLon = math.Max(maxLon, c.Lng)
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
	}
	p.minLon = minLon
	p.maxLat = maxLat

	var widthZoom, heightZoom float64
	hasWidth := math.Abs(maxLon-minLon) >= epsilon
	hasHeight := math.Abs(maxLat-minLat) >= epsilon
	if hasWidth {
		widthZoom = (width - 2*padding) / (maxLon - minLon)
	}
	if hasHeight {
		heightZoom = (height - 2*padding) / (maxLat - minLat)
	}

	switch {
	case hasWidth && hasHeight:
		p.zoom = math.Min(widthZoom, heightZoom)
	case hasWidth:
		p.zoom = widthZoom
	case hasHeight:
		p.zoom = heightZoom
	}
	return p
}

func (p SphereProjector) Project(c catalogue.Coordinates) Point {
	return Point{
		X: (c.Lng-p.minLon)*p.zoom + p.padding,
		Y: (p.maxLat-c.Lat)*p.zoom + p.padding,
	}
}
