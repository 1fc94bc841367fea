package commands

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	queryAgent  *string
	queryDate   *string
	queryPeriod *string
	queryLimit  *int
	queryCost   *float64
)

func init() {
	queryAgent = queryCmd.Flags().String("agent", "http://localhost:8000", "Base URL of the running ppe-agent.")
	queryDate = queryCmd.Flags().String("date", "", "Starting date, DD-MM-YYYY.")
	queryPeriod = queryCmd.Flags().String("period", "day", "Aggregation window: day/week/month/year.")
	queryLimit = queryCmd.Flags().Int("limit", 0, "Cap on the number of records, 0 for all.")
	queryCost = queryCmd.Flags().Float64("cost", 1.0, "Conversion coefficient.")
	queryCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(queryCmd)
}

type zoneConsumption struct {
	RoundTheClock float64 `json:"roundTheClock"`
	Daily         float64 `json:"daily"`
	Nightly       float64 `json:"nightly"`
}

type measurement struct {
	Timestamp   string          `json:"timestamp"`
	Consumption zoneConsumption `json:"consumption"`
}

type queryResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Data    []measurement `json:"data"`
}

var queryCmd = &cobra.Command{
	Use:   "query --date <DD-MM-YYYY> [--period day] [--limit N] [--cost C]",
	Short: "Queries measurements from a running agent and prints them as a table.",
	Run: func(cmd *cobra.Command, args []string) {
		var body queryResponse
		res, err := resty.New().R().
			SetContext(cmd.Context()).
			SetQueryParams(map[string]string{
				"date":   *queryDate,
				"period": *queryPeriod,
				"limit":  strconv.Itoa(*queryLimit),
				"cost":   strconv.FormatFloat(*queryCost, 'f', -1, 64),
			}).
			SetResult(&body).
			SetError(&body).
			Get(*queryAgent + "/energy/query")
		if err != nil {
			log.Fatal(err)
		}
		if body.Status != "success" {
			log.Fatalf("agent returned %s: %s", res.Status(), body.Message)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Timestamp", "Round the clock", "Daily", "Nightly"})
		for _, m := range body.Data {
			t.AppendRow(table.Row{
				m.Timestamp,
				m.Consumption.RoundTheClock,
				m.Consumption.Daily,
				m.Consumption.Nightly,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Printf("%d measurements\n", len(body.Data))
	},
}
