package cache

import (
	"fmt"
	"math"
	"strconv"
)

// CoordKey builds a cache key from coordinates truncated to 2 decimal
// places (about 1.1 km), so nearby lookups collapse into one entry. This is
// a deliberate precision/cost trade-off.
func CoordKey(lat, lon float64) string {
	return fmt.Sprintf("%s,%s", truncateCoord(lat), truncateCoord(lon))
}

func truncateCoord(v float64) string {
	return strconv.FormatFloat(math.Trunc(v*100)/100, 'f', 2, 64)
}
