package geo

import (
	"math"
	"time"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinates using the Haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ETA estimates travel time for a distance in kilometers at the given
// average speed in km/h.
func ETA(distanceKm, avgSpeedKmh float64) time.Duration {
	if avgSpeedKmh <= 0 {
		return 0
	}
	hours := distanceKm / avgSpeedKmh
	return time.Duration(hours * float64(time.Hour))
}

// DeliveryFee estimates the delivery fee for a distance in kilometers.
func DeliveryFee(distanceKm, baseFee, perKm float64) float64 {
	fee := baseFee + distanceKm*perKm
	return math.Round(fee*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
