package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/events"
	"github.com/Sicakyuz/SCM-simulation/internal/metrics"
	"github.com/Sicakyuz/SCM-simulation/internal/reporting"
	"github.com/Sicakyuz/SCM-simulation/internal/simulation"
	"github.com/Sicakyuz/SCM-simulation/internal/storage"
	"github.com/Sicakyuz/SCM-simulation/internal/verification"
)

// maxRequestBytes bounds simulation request bodies.
const maxRequestBytes = 1 << 20

// RunResponse is a run together with its summary.
type RunResponse struct {
	Run     *domain.SimulationRun `json:"run"`
	Summary *metrics.RunSummary   `json:"summary"`
}

// scenarioInfo describes a scenario for the front end.
type scenarioInfo struct {
	Name                  string  `json:"name"`
	DemandGrowthRate      float64 `json:"demand_growth_rate"`
	SupplyDisruption      bool    `json:"supply_disruption"`
	DisruptionPeriod      *int    `json:"disruption_period,omitempty"`
	CompetitorPriceChange float64 `json:"competitor_price_change"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "scm-simulation",
	})
}

// handleScenarios lists scenarios, events and decision defaults
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	names := domain.ScenarioNames()
	scenarios := make([]scenarioInfo, len(names))
	for i, name := range names {
		p := domain.ResolveScenario(name)
		scenarios[i] = scenarioInfo{
			Name:                  p.Name,
			DemandGrowthRate:      p.DemandGrowthRate,
			SupplyDisruption:      p.SupplyDisruption,
			DisruptionPeriod:      p.DisruptionPeriod,
			CompetitorPriceChange: p.CompetitorPriceChange,
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios":        scenarios,
		"events":           events.EventNames(),
		"transport_modes":  []domain.TransportMode{domain.TransportAir, domain.TransportSea, domain.TransportMixed},
		"default_decision": domain.DefaultDecision(1),
		"max_periods":      domain.MaxPeriods,
	})
}

// handleCreateSimulation runs a simulation and optionally saves it
func (s *Server) handleCreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulation.RunRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, RunResponse{Run: run, Summary: metrics.Summarize(run)})
}

// handleListSimulations returns the saved-runs comparison table
func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.reports.GenerateComparison(r.Context(), r.URL.Query().Get("student"))
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load saved runs")
		s.writeError(w, http.StatusInternalServerError, "failed to load saved runs")
		return
	}
	s.writeJSON(w, http.StatusOK, cmp.Rows)
}

// handleGetSimulation returns one saved run
func (s *Server) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{Run: report.Run, Summary: report.Summary})
}

// handleSimulationCSV downloads a saved run as CSV
func (s *Server) handleSimulationCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := reporting.RenderCSV(&buf, report.Run.Periods); err != nil {
		s.log.Error().Err(err).Msg("Failed to render CSV")
		s.writeError(w, http.StatusInternalServerError, "failed to render csv")
		return
	}

	name := reporting.ExportFileName(report.Run.StudentName, report.Run.StudentNumber)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleSimulationReport renders a saved run as Markdown
func (s *Server) handleSimulationReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(reporting.RenderMarkdown(report)))
}

// handleVerifySimulation replays one saved run against its stored metrics
func (s *Server) handleVerifySimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.verifier.VerifyRun(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, "simulation not found")
		case errors.Is(err, verification.ErrRunIncomplete):
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.log.Error().Err(err).Str("run_id", id).Msg("Failed to verify run")
			s.writeError(w, http.StatusInternalServerError, "failed to verify simulation")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleVerifyAll replays every saved run
func (s *Server) handleVerifyAll(w http.ResponseWriter, r *http.Request) {
	report, err := s.verifier.VerifyAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to verify runs")
		s.writeError(w, http.StatusInternalServerError, "failed to verify simulations")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// loadReport builds the report for {id}, writing the error response on failure.
func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*reporting.Report, bool) {
	id := chi.URLParam(r, "id")
	report, err := s.reports.Generate(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "simulation not found")
			return nil, false
		}
		s.log.Error().Err(err).Str("run_id", id).Msg("Failed to load run")
		s.writeError(w, http.StatusInternalServerError, "failed to load simulation")
		return nil, false
	}
	return report, true
}

// writeRunError maps runner errors to status codes.
func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simulation.ErrNoDecisions):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrDuplicateKey):
		s.writeError(w, http.StatusConflict, "simulation already saved")
	default:
		s.log.Error().Err(err).Msg("Simulation failed")
		s.writeError(w, http.StatusInternalServerError, "simulation failed")
	}
}

// decodeRequest reads a bounded JSON body into v.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
