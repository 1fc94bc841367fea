package measurements

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"ppeagent/lib/scrapers/energa"
)

const welcomePage = `<html>
	<head>
		<title>PPE Agent</title>
	</head>
	<body>
		<h1>Welcome to PPE Agent</h1>
	</body>
</html>`

type queryResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message,omitempty"`
	Data    []energa.Measurement `json:"data,omitempty"`
}

// RegisterRoutes mounts the thin HTTP surface: the landing page, the
// static info page and the measurement query endpoint.
func (s Service) RegisterRoutes(mux *http.ServeMux, assetsPath string) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, welcomePage)
	})
	mux.HandleFunc("GET /energy/info", func(w http.ResponseWriter, r *http.Request) {
		page, err := os.ReadFile(filepath.Join(assetsPath, "energy_info.html"))
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to read info page", "err", err)
			http.Error(w, "info page unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
	mux.HandleFunc("GET /energy/query", s.handleQuery)
}

func (s Service) handleQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	limit := 0
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJson(w, http.StatusBadRequest, queryResponse{
				Status:  "error",
				Message: "Invalid limit parameter",
			})
			return
		}
		limit = parsed
	}

	cost := 1.0
	if raw := params.Get("cost"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJson(w, http.StatusBadRequest, queryResponse{
				Status:  "error",
				Message: "Invalid cost parameter",
			})
			return
		}
		cost = parsed
	}

	data, err := s.Query(r.Context(), QueryRequest{
		Date:   params.Get("date"),
		Period: params.Get("period"),
		Limit:  limit,
		Cost:   cost,
	})
	if err != nil {
		writeJson(w, statusForError(err), queryResponse{
			Status:  "error",
			Message: messageForError(err),
		})
		return
	}

	writeJson(w, http.StatusOK, queryResponse{
		Status: "success",
		Data:   data,
	})
}

func statusForError(err error) int {
	var badRequest *BadRequestError
	if errors.As(err, &badRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, energa.ErrNoData) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func messageForError(err error) string {
	var badRequest *BadRequestError
	if errors.As(err, &badRequest) {
		return badRequest.Message
	}
	if errors.Is(err, energa.ErrNoData) {
		return "No data available"
	}
	return "Failed to fetch data"
}

func writeJson(w http.ResponseWriter, status int, body queryResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
