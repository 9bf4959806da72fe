package shipping

import "time"

// City is a courier delivery city. ID is the courier's own identifier.
type City struct {
	ID        int
	Name      string
	UpdatedAt time.Time
}

// Zone is a delivery zone inside a city
type Zone struct {
	ID        int
	CityID    int
	Name      string
	UpdatedAt time.Time
}

// IsFresh reports whether a location refreshed at updatedAt may still be
// served from the local cache at now
func IsFresh(updatedAt, now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(updatedAt) < ttl
}

// AllFresh reports whether every city is still fresh. An empty list is stale.
func AllFresh(cities []City, now time.Time, ttl time.Duration) bool {
	if len(cities) == 0 {
		return false
	}
	for _, c := range cities {
		if !IsFresh(c.UpdatedAt, now, ttl) {
			return false
		}
	}
	return true
}

// ZonesFresh is AllFresh for zones
func ZonesFresh(zones []Zone, now time.Time, ttl time.Duration) bool {
	if len(zones) == 0 {
		return false
	}
	for _, z := range zones {
		if !IsFresh(z.UpdatedAt, now, ttl) {
			return false
		}
	}
	return true
}
