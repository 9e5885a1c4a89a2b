package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/astromirror/natalengine/internal/constants"
	"github.com/astromirror/natalengine/internal/crosscheck"
	"github.com/astromirror/natalengine/internal/types"
	"github.com/astromirror/natalengine/pkg/chinesecal"
)

// handleCompute runs the full chart pipeline for a posted birth input
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var in types.BirthInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeDecodeFailure(w, r, err)
		return
	}

	out, envelope := s.engine.Compute(&in)
	if envelope != nil {
		s.logger.Infow("compute rejected",
			"request_id", requestID(r),
			"status", envelope.HTTPStatus,
			"summary", envelope.Validation.Summary)
		s.write(w, r, envelope.HTTPStatus, envelope)
		return
	}

	out.Audit.RequestID = requestID(r)
	s.write(w, r, http.StatusOK, out)
}

// handleLiChun solves the calendar boundary for a single year and returns
// it with that year's pillar designation.
func (s *Server) handleLiChun(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		// unreachable given the route pattern, but mux.Vars is a map
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	boundary, err := s.engine.LiChunUTC(year)
	if err != nil {
		s.logger.Errorw("li chun solve failed", "request_id", requestID(r), "year", year, "error", err)
		s.write(w, r, http.StatusInternalServerError, map[string]any{
			"error": "li_chun_failed",
			"year":  year,
		})
		return
	}

	pillar := chinesecal.PillarForYear(year)
	s.write(w, r, http.StatusOK, map[string]any{
		"year":        year,
		"li_chun_utc": boundary.Format(time.RFC3339),
		"pillar": types.YearPillar{
			PillarYear: pillar.Year,
			Stem:       pillar.Stem,
			Branch:     pillar.Branch,
			Animal:     pillar.Animal,
			Element:    pillar.Element,
			YinYang:    pillar.YinYang,
		},
	})
}

// handleHealth reports liveness plus the active ephemeris mode
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"engine":         constants.EngineName,
		"version":        constants.Version,
		"ephemeris_mode": s.engine.EphemerisMode(),
	})
}

// writeDecodeFailure reports an unparseable request body in the same
// envelope shape as engine-level failures.
func (s *Server) writeDecodeFailure(w http.ResponseWriter, r *http.Request, err error) {
	issues := []types.ValidationIssue{{
		Code:     "invalid_payload",
		Message:  "request body is not valid JSON: " + err.Error(),
		Severity: types.SeverityError,
	}}
	envelope := &types.ErrorEnvelope{
		Validation: crosscheck.BuildReport(issues),
		HTTPStatus: http.StatusBadRequest,
	}
	s.write(w, r, http.StatusBadRequest, envelope)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := s.formatter.Write(w, r, status, data); err != nil {
		s.logger.Errorw("writing response", "request_id", requestID(r), "error", err)
	}
}
