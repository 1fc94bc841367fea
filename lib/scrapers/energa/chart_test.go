package energa

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ppeagent/lib/retry"
	"ppeagent/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestDateToEpoch(t *testing.T) {
	expected := time.Date(2021, 1, 1, 0, 0, 0, 0, timezone.Location).UnixMilli()
	got, err := DateToEpoch("01-01-2021")
	require.NoError(t, err)
	require.Equal(t, expected, got)
}

func TestDateToEpochRejectsMalformedDate(t *testing.T) {
	for _, date := range []string{"", "2021-01-01", "32-01-2021", "junk"} {
		_, err := DateToEpoch(date)
		require.Error(t, err, "date %q should be rejected", date)
	}
}

func TestFetchMainChart(t *testing.T) {
	epochMs, err := DateToEpoch("01-06-2024")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /dp/resources/chart", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		require.Equal(t, fmt.Sprint(epochMs), query.Get("mainChartDate"))
		require.Equal(t, "DAY", query.Get("type"))
		require.Equal(t, "12345678", query.Get("meterPoint"))
		require.Equal(t, "A+", query.Get("mo"))

		fmt.Fprint(w, `{
			"response": {
				"mainChart": [
					{"tm": "1717192800000", "tarAvg": 2.0, "zones": [1.0, 2.0, 3.0], "est": false, "cplt": true},
					{"tm": "1717196400000", "tarAvg": 1.5, "zones": [4.0, 5.0, 6.0], "est": true, "cplt": true}
				]
			}
		}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client, _ := newTestClient(t, ts.URL)
	client.meterId = 12345678

	records, err := client.FetchMainChart(context.Background(), "01-06-2024", "DAY", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, []float64{1.0, 2.0, 3.0}, records[0].Zones)
	require.True(t, records[1].Estimated)
}

func TestFetchMainChartEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dp/resources/chart", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": {"mainChart": []}}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client, _ := newTestClient(t, ts.URL)
	_, err := client.FetchMainChart(context.Background(), "01-06-2024", "DAY", 0)
	require.ErrorIs(t, err, ErrNoData)
}

func TestFetchMainChartUpstreamFailureExhaustsRetries(t *testing.T) {
	var fetches int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dp/resources/chart", func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.WriteHeader(http.StatusBadGateway)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client, _ := newTestClient(t, ts.URL)
	_, err := client.FetchMainChart(context.Background(), "01-06-2024", "DAY", 0)

	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 3, exhausted.Attempts)
	require.Equal(t, 3, fetches)

	var unavailable *DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, http.StatusBadGateway, unavailable.Status)
}
