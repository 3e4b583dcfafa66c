package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jacobarthurs/schemabench/internal/comparator"
	"github.com/jacobarthurs/schemabench/internal/orders"
	"github.com/jacobarthurs/schemabench/internal/simulation"
	"github.com/jacobarthurs/schemabench/internal/timing"
)

type placeOrderResponse struct {
	Success       bool    `json:"success"`
	OrderID       string  `json:"orderId"`
	TotalAmount   float64 `json:"totalAmount"`
	ExecutionTime float64 `json:"executionTime"`
}

type dataResponse[T any] struct {
	Success       bool    `json:"success"`
	Data          T       `json:"data"`
	ExecutionTime float64 `json:"executionTime"`
}

type sampleDataResponse struct {
	Success bool `json:"success"`
	orders.SampleData
}

type oltpResponse struct {
	Success bool `json:"success"`
	// Partial is set when a layout failed; the failure is in its result.
	Partial bool `json:"partial"`
	simulation.Report[orders.Placement]
}

type olapResponse struct {
	Success bool `json:"success"`
	Partial bool `json:"partial"`
	simulation.Report[[]orders.StoreSales]
}

type benchmarkResponse struct {
	Success bool `json:"success"`
	Partial bool `json:"partial"`
	simulation.BenchmarkReport
}

func schemaParam(w http.ResponseWriter, r *http.Request) (orders.Schema, bool) {
	schema, err := orders.ParseSchema(r.PathValue("schema"))
	if err != nil {
		writeNotFound(w, err.Error())
		return "", false
	}
	return schema, true
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	schema, ok := schemaParam(w, r)
	if !ok {
		return
	}
	op := schema.String() + ".place-order"

	var req orders.OrderRequest
	if _, err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, op, err, nil)
		return
	}

	result, err := s.sim.PlaceOrder(r.Context(), schema, req)
	if err != nil {
		s.writeFailure(w, r, op, err, nil)
		return
	}
	if !result.Succeeded {
		s.writeFailure(w, r, op, result.Err, &result.ElapsedMs)
		return
	}

	writeJSON(w, http.StatusOK, placeOrderResponse{
		Success:       true,
		OrderID:       result.Data.OrderID,
		TotalAmount:   result.Data.TotalAmount,
		ExecutionTime: result.ElapsedMs,
	})
}

func (s *Server) handleSalesByStore(w http.ResponseWriter, r *http.Request) {
	schema, ok := schemaParam(w, r)
	if !ok {
		return
	}
	result, err := s.sim.SalesByStore(r.Context(), schema)
	writeTimed(s, w, r, schema.String()+".sales-by-store", result, err)
}

func (s *Server) handleBestSellingItems(w http.ResponseWriter, r *http.Request) {
	schema, ok := schemaParam(w, r)
	if !ok {
		return
	}
	limit, err := intQuery(r, "limit", orders.DefaultItemsLimit)
	if err != nil {
		s.writeFailure(w, r, "best-selling-items", err, nil)
		return
	}
	result, err := s.sim.BestSellingItems(r.Context(), schema, limit)
	writeTimed(s, w, r, schema.String()+".best-selling-items", result, err)
}

func writeTimed[T any](s *Server, w http.ResponseWriter, r *http.Request, op string, result timing.Result[T], err error) {
	if err != nil {
		s.writeFailure(w, r, op, err, nil)
		return
	}
	if !result.Succeeded {
		s.writeFailure(w, r, op, result.Err, &result.ElapsedMs)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse[T]{Success: true, Data: result.Data, ExecutionTime: result.ElapsedMs})
}

func (s *Server) handleSampleData(w http.ResponseWriter, r *http.Request) {
	data, err := s.sim.SampleData(r.Context())
	if err != nil {
		s.writeFailure(w, r, "sample-data", err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sampleDataResponse{Success: true, SampleData: data})
}

// handleSimulate runs both layouts side by side. ?runs=N repeats the workload
// and reports statistics; ?explain=true captures OLAP plans.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	workload, ok := comparator.ParseWorkload(r.PathValue("workload"))
	if !ok {
		writeNotFound(w, "unknown workload "+strconv.Quote(r.PathValue("workload")))
		return
	}
	op := "simulate." + string(workload)

	runs, err := intQuery(r, "runs", 1)
	if err == nil && (runs < 1 || runs > MaxBenchmarkRuns) {
		err = fmt.Errorf("%w: runs must be between 1 and %d", orders.ErrValidation, MaxBenchmarkRuns)
	}
	if err != nil {
		s.writeFailure(w, r, op, err, nil)
		return
	}

	var body any
	switch {
	case runs > 1:
		report, rerr := s.sim.Benchmark(r.Context(), workload, runs)
		body, err = benchmarkResponse{Success: true, Partial: report.Partial(), BenchmarkReport: report}, rerr
	case workload == comparator.OLTP:
		report, rerr := s.simulateOLTP(r)
		body, err = oltpResponse{Success: true, Partial: report.Partial(), Report: report}, rerr
	default:
		report, rerr := s.sim.SimulateOLAP(r.Context(), r.URL.Query().Get("explain") == "true")
		body, err = olapResponse{Success: true, Partial: report.Partial(), Report: report}, rerr
	}
	if err != nil {
		s.writeFailure(w, r, op, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) simulateOLTP(r *http.Request) (simulation.OLTPReport, error) {
	var req orders.OrderRequest
	present, err := decodeBody(r, &req)
	if err != nil {
		return simulation.OLTPReport{}, err
	}
	if !present {
		return s.sim.SimulateOLTP(r.Context(), nil)
	}
	return s.sim.SimulateOLTP(r.Context(), &req)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.writeFailure(w, r, "healthz", err, nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", orders.ErrValidation, key)
	}
	return v, nil
}
