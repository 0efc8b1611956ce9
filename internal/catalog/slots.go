package catalog

import "aircheck/internal/content"

// TimeSlots expands the configured minute marks into a full day of
// announcement slots. Two marks yield 48 slots.
func TimeSlots(minutes []int) []content.TimeKey {
	slots := make([]content.TimeKey, 0, 24*len(minutes))
	for hour := 0; hour < 24; hour++ {
		for _, minute := range minutes {
			slots = append(slots, content.TimeKey{Hour: hour, Minute: minute})
		}
	}
	return slots
}

// WeatherSlots builds every hour/condition pairing of the forecast
// schedule.
func WeatherSlots(hours []int, conditions []string) []content.WeatherKey {
	slots := make([]content.WeatherKey, 0, len(hours)*len(conditions))
	for _, hour := range hours {
		for _, condition := range conditions {
			slots = append(slots, content.WeatherKey{Hour: hour, Condition: condition})
		}
	}
	return slots
}
