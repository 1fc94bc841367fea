package energa

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"ppeagent/lib/retry"
	"ppeagent/lib/timezone"
)

// ChartRecord is one datapoint of the portal's main chart, decoded as
// loosely as the portal emits it. Pointer and slice fields distinguish
// absent keys so the extractor can drop malformed entries.
type ChartRecord struct {
	// Timestamp is epoch milliseconds encoded as a string.
	Timestamp *string `json:"tm"`
	// TariffAvg is the average consumption across the tariff.
	TariffAvg float64 `json:"tarAvg"`
	// Zones holds per-tariff-zone readings, expected order:
	// round-the-clock, daily, nightly.
	Zones []float64 `json:"zones"`
	// Estimated is set when the value was simulated rather than read.
	Estimated bool `json:"est"`
	// Complete is carried through unused, its upstream meaning is
	// undocumented.
	Complete bool `json:"cplt"`
}

type chartResponse struct {
	Response struct {
		MainChart []ChartRecord `json:"mainChart"`
	} `json:"response"`
}

// DateToEpoch converts a DD-MM-YYYY calendar date to the epoch
// milliseconds of its midnight in the portal timezone.
func DateToEpoch(date string) (int64, error) {
	t, err := time.ParseInLocation("02-01-2006", date, timezone.Location)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// FetchMainChart queries the charting endpoint for the interval data
// starting at the given date. The period granularity is forwarded to the
// query string verbatim. The timeout applies to each attempt separately;
// zero falls back to the client default. Records are returned exactly as
// decoded, zone-shape validation is the extractor's job.
func (c *Client) FetchMainChart(ctx context.Context, date string, period string, timeout time.Duration) ([]ChartRecord, error) {
	epochMs, err := DateToEpoch(date)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = c.timeout
	}

	var body []byte
	err = retry.Do(retry.Policy{MaxAttempts: c.maxAttempts}, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		res, err := c.Http.R().
			SetContext(attemptCtx).
			SetQueryParams(map[string]string{
				"mainChartDate": strconv.FormatInt(epochMs, 10),
				"type":          period,
				"meterPoint":    strconv.FormatInt(c.meterId, 10),
				"mo":            "A+",
			}).
			Get(chartPath)
		if err != nil {
			return err
		}
		if !res.IsSuccess() {
			return &DataUnavailableError{Reason: "chart query failed", Status: res.StatusCode()}
		}
		body = res.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DataUnavailableError{Reason: "malformed chart payload"}
	}
	if len(payload.Response.MainChart) == 0 {
		return nil, ErrNoData
	}
	return payload.Response.MainChart, nil
}
