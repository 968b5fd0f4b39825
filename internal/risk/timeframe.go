package risk

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// maxCount keeps count * multiplier within int.
const maxCount = math.MaxInt / 30

var unitDays = map[byte]int{
	'd': 1,
	'w': 7,
	'm': 30,
}

// ParseTimeframe converts "<n><unit>" with unit d, w or m into days.
// An unknown or missing unit counts as days; a missing count is one day.
// Counts too large to represent are clamped.
func ParseTimeframe(timeframe string) int {
	timeframe = strings.ToLower(strings.TrimSpace(timeframe))

	end := 0
	for end < len(timeframe) && timeframe[end] >= '0' && timeframe[end] <= '9' {
		end++
	}
	if end == 0 {
		return 1
	}
	count, err := strconv.Atoi(timeframe[:end])
	if errors.Is(err, strconv.ErrRange) {
		count = maxCount
	} else if err != nil || count <= 0 {
		return 1
	}
	count = min(count, maxCount)

	multiplier := 1
	if end < len(timeframe) {
		if days, ok := unitDays[timeframe[end]]; ok {
			multiplier = days
		}
	}
	return count * multiplier
}
