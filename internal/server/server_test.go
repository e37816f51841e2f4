package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestServer(t *testing.T, store *records.MockRecordStore, opts Options) *Server {
	t.Helper()
	registry, err := core.NewRegistry()
	require.NoError(t, err)
	engine, err := core.NewEngine(registry, "")
	require.NoError(t, err)
	return New(engine, store, nil, opts)
}

func doRequest(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

// frailObservation carries every input the default policy requires.
const frailObservation = `{
	"age": 84, "sex": "female", "gait_speed": 0.6, "grip_strength": 14, "adl_score": 3,
	"frailty_count": 4, "disease_count": 4, "living_alone": true, "fall_history": true,
	"red_flags": 2, "moca": 20, "phq9": 12, "quality_of_life": 40, "exercise": "None", "comorbidity": "Multiple"
}`

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &records.MockRecordStore{}, Options{JWTSecret: testSecret})

	rec := doRequest(t, s, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &records.MockRecordStore{}, Options{JWTSecret: testSecret})

	doRequest(t, s, http.MethodGet, "/healthz", "", "")
	rec := doRequest(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `passage_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestPolicies(t *testing.T) {
	s := newTestServer(t, &records.MockRecordStore{}, Options{})

	rec := doRequest(t, s, http.MethodGet, "/policies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		Name    string `json:"name"`
		Default bool   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, len(core.Presets()))
	for _, p := range got {
		assert.Equal(t, p.Name == core.DefaultPolicy, p.Default, p.Name)
	}
}

func TestAssessWithoutSave(t *testing.T) {
	store := &records.MockRecordStore{}
	s := newTestServer(t, store, Options{Operator: "dr-lee"})

	body := `{"patient_id": "p-001", "observation": ` + frailObservation + `}`
	rec := doRequest(t, s, http.MethodPost, "/assessments", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		PatientID  string                `json:"patient_id"`
		RecordID   string                `json:"record_id"`
		Label      string                `json:"label"`
		Assessment schema.RiskAssessment `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "p-001", got.PatientID)
	assert.Empty(t, got.RecordID)
	assert.Equal(t, core.DefaultPolicy, got.Assessment.Policy)
	assert.NotEmpty(t, got.Label)
	assert.NotEmpty(t, got.Assessment.Explanations)
	store.AssertNotCalled(t, "Append", mock.Anything)
}

func TestAssessSave(t *testing.T) {
	store := &records.MockRecordStore{}
	store.On("Append", mock.MatchedBy(func(r schema.AssessmentRecord) bool {
		return r.PatientID == "p-001" && r.OperatorID == "dr-lee" && r.RecordID != ""
	})).Return(nil).Once()
	s := newTestServer(t, store, Options{Operator: "dr-lee"})

	body := `{"patient_id": "p-001", "save": true, "observation": ` + frailObservation + `}`
	rec := doRequest(t, s, http.MethodPost, "/assessments", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got["record_id"])
	store.AssertExpectations(t)
}

func TestAssessErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed body",
			body:       `{"observation": `,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "save without patient",
			body:       `{"save": true, "observation": ` + frailObservation + `}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "patient_id is required",
		},
		{
			name:       "missing required input",
			body:       `{"observation": {"gait_speed": 0.7}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "invalid observation",
		},
		{
			name:       "out of range input",
			body:       `{"observation": {"age": -3, "gait_speed": 0.8}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "age",
		},
		{
			name:       "misspelled observation field",
			body:       `{"observation": {"age": 84, "gaitspeed": 0.4, "fall_hist": true, "frailty_count": 4}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  `unknown field "gaitspeed"`,
		},
		{
			name:       "unknown policy",
			body:       `{"policy": "nope", "observation": ` + frailObservation + `}`,
			wantStatus: http.StatusNotFound,
			wantError:  "unknown policy",
		},
		{
			name:       "store failure",
			body:       `{"patient_id": "p-001", "save": true, "observation": ` + frailObservation + `}`,
			storeErr:   errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &records.MockRecordStore{}
			if tt.storeErr != nil {
				store.On("Append", mock.AnythingOfType("schema.AssessmentRecord")).Return(tt.storeErr)
			}
			s := newTestServer(t, store, Options{Operator: "dr-lee"})

			rec := doRequest(t, s, http.MethodPost, "/assessments", tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, errorBody(t, rec), tt.wantError)
			assert.NotContains(t, rec.Body.String(), "disk full")
		})
	}
}

func TestAssessSaveWithoutStore(t *testing.T) {
	registry, err := core.NewRegistry()
	require.NoError(t, err)
	engine, err := core.NewEngine(registry, "")
	require.NoError(t, err)
	s := New(engine, records.NoneStore{}, nil, Options{Operator: "dr-lee"})

	body := `{"patient_id": "p-001", "save": true, "observation": ` + frailObservation + `}`
	rec := doRequest(t, s, http.MethodPost, "/assessments", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, errorBody(t, rec), "record store is disabled")
	assert.NotContains(t, rec.Body.String(), "record_id")
}

func TestHistory(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	store := &records.MockRecordStore{}
	store.On("History", "p-001").Return([]schema.AssessmentRecord{
		{RecordID: "r2", PatientID: "p-001", AssessedAt: base.Add(time.Hour), RiskPercent: 40, Level: schema.ModerateLevel},
		{RecordID: "r1", PatientID: "p-001", AssessedAt: base, RiskPercent: 70, Level: schema.HighLevel},
	}, nil)
	store.On("History", "p-404").Return(nil, nil)
	store.On("History", "p-err").Return(nil, errors.New("connection reset"))
	s := newTestServer(t, store, Options{})

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/patients/p-001/assessments", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got HistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "p-001", got.PatientID)
		assert.InDelta(t, -30, got.Trend, 1e-9)
		require.Len(t, got.Records, 2)
		assert.Equal(t, "r1", got.Records[0].RecordID)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/patients/p-404/assessments", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, errorBody(t, rec), "p-404")
	})

	t.Run("store failure", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/patients/p-err/assessments", "", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestPopulation(t *testing.T) {
	store := &records.MockRecordStore{}
	store.On("Summary").Return(schema.PopulationSummary{
		TotalRecords:    3,
		UniquePatients:  2,
		MeanRiskPercent: 50,
		HighRiskShare:   33.3,
		LevelCounts:     map[schema.Level]int{schema.HighLevel: 1, schema.LowLevel: 2},
	}, nil)
	s := newTestServer(t, store, Options{})

	rec := doRequest(t, s, http.MethodGet, "/population", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got schema.PopulationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalRecords)
	assert.Equal(t, 2, got.LevelCounts[schema.LowLevel])
}

func TestAuthentication(t *testing.T) {
	auth := NewAuthenticator(testSecret, "passage")
	valid, err := auth.IssueToken("dr-okafor", time.Hour)
	require.NoError(t, err)
	expired, err := auth.IssueToken("dr-okafor", -time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewAuthenticator(testSecret, "elsewhere").IssueToken("dr-okafor", time.Hour)
	require.NoError(t, err)
	otherSecret, err := NewAuthenticator("another-secret", "passage").IssueToken("dr-okafor", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"basic scheme", "Basic abc123", http.StatusUnauthorized, "invalid authorization format"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "invalid token"},
		{"wrong issuer", "Bearer " + otherIssuer, http.StatusUnauthorized, "invalid token"},
		{"wrong secret", "Bearer " + otherSecret, http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &records.MockRecordStore{}, Options{JWTSecret: testSecret, JWTIssuer: "passage"})
			req := httptest.NewRequest(http.MethodGet, "/policies", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, rec))
			}
		})
	}
}

func TestTokenSubjectBecomesOperator(t *testing.T) {
	token, err := NewAuthenticator(testSecret, "").IssueToken("dr-okafor", time.Hour)
	require.NoError(t, err)

	store := &records.MockRecordStore{}
	store.On("Append", mock.MatchedBy(func(r schema.AssessmentRecord) bool {
		return r.OperatorID == "dr-okafor"
	})).Return(nil).Once()
	s := newTestServer(t, store, Options{Operator: "config-operator", JWTSecret: testSecret})

	body := `{"patient_id": "p-001", "save": true, "observation": ` + frailObservation + `}`
	rec := doRequest(t, s, http.MethodPost, "/assessments", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	store.AssertExpectations(t)
}

func TestNewAuthenticatorDisabled(t *testing.T) {
	assert.Nil(t, NewAuthenticator("", "passage"))

	_, err := NewAuthenticator(testSecret, "").IssueToken("", time.Hour)
	assert.Error(t, err)
}
