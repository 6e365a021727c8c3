package catalogue

import (
	"sort"

	"catalogue.onebusaway.org/internal/utils"
)

// NearbyStop is a stop found by a radius search together with its distance from the center.
type NearbyStop struct {
	Stop     Stop
	Distance float64
}

// StopsWithin returns the stops within radius meters of a point, nearest first.
// Ties are ordered by stop name so results are stable.
func (s *Store) StopsWithin(lat, lon, radius float64) []NearbyStop {
	bounds := utils.CalculateBounds(lat, lon, radius)

	var found []NearbyStop
	s.spatial.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(_, _ [2]float64, id StopID) bool {
			stop := s.stops[id]
			d := utils.Distance(lat, lon, stop.Coordinates.Lat, stop.Coordinates.Lng)
			if d <= radius {
				found = append(found, NearbyStop{Stop: stop, Distance: d})
			}
			return true
		})

	sort.Slice(found, func(i, j int) bool {
		if found[i].Distance != found[j].Distance {
			return found[i].Distance < found[j].Distance
		}
		return found[i].Stop.Name < found[j].Stop.Name
	})

	return found
}
