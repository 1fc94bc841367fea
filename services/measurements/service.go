// Package measurements exposes the normalized energy-consumption query
// on top of an authenticated portal session.
package measurements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ppeagent/lib/scrapers/energa"
)

// BadRequestError reports a structurally invalid inbound query. It is
// detected before any upstream call and never consumes retry budget.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type Service struct {
	client  *energa.Client
	timeout time.Duration
}

func NewService(client *energa.Client, timeout time.Duration) Service {
	return Service{
		client:  client,
		timeout: timeout,
	}
}

type QueryRequest struct {
	// Date is the starting calendar date, DD-MM-YYYY.
	Date string
	// Period is the aggregation window (day/week/month/year), forwarded
	// upper-cased to the portal.
	Period string
	// Limit caps how many leading records are considered, zero or
	// negative means all.
	Limit int
	// Cost is the conversion coefficient applied by the extractor.
	Cost float64
}

// Query fetches the chart starting at the requested date and converts
// it into ordered measurements.
func (s Service) Query(ctx context.Context, req QueryRequest) ([]energa.Measurement, error) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, &BadRequestError{Message: "Missing date parameter"}
	}
	period := strings.ToUpper(strings.TrimSpace(req.Period))
	if period == "" {
		return nil, &BadRequestError{Message: "Missing period parameter"}
	}
	if _, err := energa.DateToEpoch(req.Date); err != nil {
		return nil, &BadRequestError{Message: fmt.Sprintf("Invalid date parameter: %q", req.Date)}
	}

	records, err := s.client.FetchMainChart(ctx, req.Date, period, s.timeout)
	if err != nil {
		return nil, err
	}
	return energa.ExtractMeasurements(records, req.Cost, req.Limit), nil
}
