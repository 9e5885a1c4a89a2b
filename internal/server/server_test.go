package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/astromirror/natalengine/internal/config"
	"github.com/astromirror/natalengine/internal/engine"
	"github.com/astromirror/natalengine/internal/ephemeris"
	"github.com/astromirror/natalengine/internal/refdata"
	"github.com/astromirror/natalengine/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p := refdata.NewEmbeddedProvider()
	defer p.Close()
	tables, err := p.LoadTables()
	require.NoError(t, err)

	e := engine.New(ephemeris.New(ephemeris.Config{}), tables, false)
	return New(config.HTTPConfig{ListenAddr: "127.0.0.1", Port: 0}, e, zap.NewNop().Sugar())
}

func postCompute(t *testing.T, s *Server, payload any, query string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/compute"+query, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func validComputePayload() map[string]any {
	return map[string]any{
		"birth_date":     "1990-06-15",
		"birth_time":     "12:30",
		"birth_location": map[string]float64{"lat": 52.52, "lon": 13.405},
		"iana_time_zone": "Europe/Berlin",
		"strict_mode":    false,
	}
}

func TestComputeEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := postCompute(t, s, validComputePayload(), "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var out types.ComputeOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Planets, 10)
	assert.Equal(t, "Horse", out.ChineseYear.Animal)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), out.Audit.RequestID)
}

func TestComputeEndpointMsgpack(t *testing.T) {
	s := newTestServer(t)

	rec := postCompute(t, s, validComputePayload(), "?format=msgpack")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))

	dec := msgpack.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	dec.SetCustomStructTag("json")
	var out types.ComputeOutput
	require.NoError(t, dec.Decode(&out))
	assert.Len(t, out.Planets, 10)
}

func TestComputeEndpointFailures(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		mutate     func(map[string]any)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing fields",
			mutate:     func(p map[string]any) { delete(p, "birth_date") },
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_field",
		},
		{
			name: "ambiguous local time",
			mutate: func(p map[string]any) {
				p["birth_date"] = "2020-11-01"
				p["birth_time"] = "01:30"
				p["iana_time_zone"] = "America/New_York"
			},
			wantStatus: http.StatusConflict,
			wantCode:   "AMBIGUOUS_LOCAL_TIME",
		},
		{
			name: "nonexistent local time",
			mutate: func(p map[string]any) {
				p["birth_date"] = "2020-03-08"
				p["birth_time"] = "02:30"
				p["iana_time_zone"] = "America/New_York"
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NONEXISTENT_LOCAL_TIME",
		},
		{
			name:       "strict mode without ephemeris data",
			mutate:     func(p map[string]any) { delete(p, "strict_mode") },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "ephemeris_unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validComputePayload()
			tt.mutate(payload)
			rec := postCompute(t, s, payload, "")
			require.Equal(t, tt.wantStatus, rec.Code, "body: %s", rec.Body.String())

			var envelope types.ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, types.StatusError, envelope.Validation.Status)
			require.NotEmpty(t, envelope.Validation.Issues)
			assert.Equal(t, tt.wantCode, envelope.Validation.Issues[len(envelope.Validation.Issues)-1].Code)
		})
	}
}

func TestComputeEndpointRejectsGarbage(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/compute", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Validation.Issues)
	assert.Equal(t, "invalid_payload", envelope.Validation.Issues[0].Code)
}

func TestLiChunEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lichun/1990", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var out struct {
		Year      int              `json:"year"`
		LiChunUTC string           `json:"li_chun_utc"`
		Pillar    types.YearPillar `json:"pillar"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1990, out.Year)
	assert.Contains(t, out.LiChunUTC, "1990-02-0")
	assert.Equal(t, "Horse", out.Pillar.Animal)
	assert.Equal(t, "Geng", out.Pillar.Stem)
}

func TestLiChunEndpointRejectsNonNumericYear(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lichun/dragon", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "natalengine", out["engine"])
	assert.Equal(t, "analytic", out["ephemeris_mode"])
}
