package energa

import (
	"strconv"
	"time"

	"ppeagent/lib/timezone"
)

// ZoneConsumption splits a reading across the tariff's billing
// time-windows.
type ZoneConsumption struct {
	RoundTheClock float64 `json:"roundTheClock"`
	Daily         float64 `json:"daily"`
	Nightly       float64 `json:"nightly"`
}

// Measurement is the normalized view of one chart record.
type Measurement struct {
	Timestamp   string          `json:"timestamp"`
	Consumption ZoneConsumption `json:"consumption"`
}

const measurementTimeFormat = "2006-01-02 15:04:05"

// ExtractMeasurements converts raw chart records into ordered domain
// measurements. At most `limit` leading records are considered (zero or
// negative means all). Records missing the zone sequence or the
// timestamp, or carrying an unparseable timestamp, are dropped silently.
// Input order is preserved, nothing is deduplicated.
func ExtractMeasurements(records []ChartRecord, coefficient float64, limit int) []Measurement {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	measurements := make([]Measurement, 0, limit)
	for _, record := range records[:limit] {
		if record.Zones == nil || record.Timestamp == nil {
			continue
		}
		epochMs, err := strconv.ParseInt(*record.Timestamp, 10, 64)
		if err != nil {
			continue
		}

		measurements = append(measurements, Measurement{
			Timestamp: time.UnixMilli(epochMs).In(timezone.Location).Format(measurementTimeFormat),
			Consumption: ZoneConsumption{
				RoundTheClock: zoneValue(record.Zones, 0, coefficient),
				Daily:         zoneValue(record.Zones, 1, coefficient),
				Nightly:       zoneValue(record.Zones, 2, coefficient),
			},
		})
	}
	return measurements
}

// zoneValue reproduces the portal app's own arithmetic: the coefficient
// scales only the fallback zero, never a genuine reading. Keep it this
// way until the upstream product decides otherwise, our numbers must
// match what the portal reports.
func zoneValue(zones []float64, index int, coefficient float64) float64 {
	if index < len(zones) && zones[index] != 0 {
		return zones[index]
	}
	return 0.0 * coefficient
}
