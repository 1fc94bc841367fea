package measurements

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ppeagent/lib/scrapers/energa"
	"ppeagent/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const loginPageFixture = `<html><body>
<form method="post">
	<input type="hidden" name="_antixsrf" value="token-abc123"/>
</form>
</body></html>`

const userDataFixture = `<html><body>
<script type="text/javascript">
	meters.list.push({
		id: 12345678,
		ppe: '****',
	})
</script>
</body></html>`

// upstreamFixture fakes just enough of the portal to log in and serve
// one chart query.
func upstreamFixture(t *testing.T, chartBody string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dp/UserLogin.do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPageFixture)
	})
	mux.HandleFunc("POST /dp/UserLogin.do", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("GET /dp/UserData.do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, userDataFixture)
	})
	mux.HandleFunc("GET /dp/UserLogout.do", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("GET /dp/resources/chart", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func setupService(t *testing.T, chartBody string) Service {
	cleanup := telemetry.SetupForTesting(t, "test:measurements")
	t.Cleanup(cleanup)

	upstream := upstreamFixture(t, chartBody)

	creds, err := energa.NewCredentials("user@example.com", "hunter2")
	require.NoError(t, err)

	client, err := energa.NewClient(context.Background(), energa.ClientOptions{
		BaseUrl:     upstream.URL,
		Credentials: creds,
		MaxAttempts: 2,
	})
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background()))

	return NewService(client, time.Second*5)
}

func doQuery(t *testing.T, service Service, target string) (int, queryResponse) {
	mux := http.NewServeMux()
	service.RegisterRoutes(mux, "assets")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestQueryEndToEnd(t *testing.T) {
	service := setupService(t, `{
		"response": {
			"mainChart": [
				{"tm": "1717192800000", "tarAvg": 2.0, "zones": [1.0, 2.0, 3.0], "est": false, "cplt": true}
			]
		}
	}`)

	status, body := doQuery(t, service, "/energy/query?date=01-06-2024&period=day")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "success", body.Status)
	require.Len(t, body.Data, 1)
	require.Equal(t, energa.ZoneConsumption{
		RoundTheClock: 1.0,
		Daily:         2.0,
		Nightly:       3.0,
	}, body.Data[0].Consumption)
}

func TestQueryEmptyChart(t *testing.T) {
	service := setupService(t, `{"response": {"mainChart": []}}`)

	status, body := doQuery(t, service, "/energy/query?date=01-06-2024&period=day")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "error", body.Status)
	require.Equal(t, "No data available", body.Message)
}

func TestQueryLimitAndCost(t *testing.T) {
	service := setupService(t, `{
		"response": {
			"mainChart": [
				{"tm": "1717192800000", "zones": [1.0, 0.0, 3.0]},
				{"tm": "1717196400000", "zones": [4.0, 5.0, 6.0]},
				{"tm": "1717200000000", "zones": [7.0, 8.0, 9.0]}
			]
		}
	}`)

	status, body := doQuery(t, service, "/energy/query?date=01-06-2024&period=day&limit=2&cost=2.5")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Data, 2)
	// genuine readings stay unscaled, only the fallback zero is
	// multiplied by the coefficient
	require.Equal(t, 1.0, body.Data[0].Consumption.RoundTheClock)
	require.Equal(t, 0.0, body.Data[0].Consumption.Daily)
}

func TestQueryValidation(t *testing.T) {
	service := setupService(t, `{"response": {"mainChart": []}}`)

	testCases := []struct {
		target  string
		message string
	}{
		{"/energy/query?period=day", "Missing date parameter"},
		{"/energy/query?date=01-06-2024", "Missing period parameter"},
		{"/energy/query?date=2024-06-01&period=day", `Invalid date parameter: "2024-06-01"`},
		{"/energy/query?date=01-06-2024&period=day&limit=x", "Invalid limit parameter"},
		{"/energy/query?date=01-06-2024&period=day&cost=x", "Invalid cost parameter"},
	}

	for _, test := range testCases {
		status, body := doQuery(t, service, test.target)
		require.Equal(t, http.StatusBadRequest, status, test.target)
		require.Equal(t, "error", body.Status)
		require.Equal(t, test.message, body.Message)
	}
}

func TestQueryUpstreamFailure(t *testing.T) {
	upstream := upstreamFixture(t, "")
	creds, err := energa.NewCredentials("user@example.com", "hunter2")
	require.NoError(t, err)

	client, err := energa.NewClient(context.Background(), energa.ClientOptions{
		BaseUrl:     upstream.URL,
		Credentials: creds,
		MaxAttempts: 2,
	})
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background()))

	// a dead upstream after login
	upstream.Close()

	service := NewService(client, time.Second*2)
	status, body := doQuery(t, service, "/energy/query?date=01-06-2024&period=day")
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "error", body.Status)
	require.Equal(t, "Failed to fetch data", body.Message)
}
