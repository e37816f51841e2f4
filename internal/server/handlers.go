package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/outwriter"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/schema"
	"go.uber.org/zap"
)

// AssessRequest is the body of POST /assessments.
type AssessRequest struct {
	PatientID   string                    `json:"patient_id"`
	Policy      string                    `json:"policy"`
	Save        bool                      `json:"save"`
	Observation schema.PatientObservation `json:"observation"`
}

// HistoryResponse is the body of GET /patients/:id/assessments.
type HistoryResponse struct {
	PatientID string                    `json:"patient_id"`
	Trend     float64                   `json:"trend"`
	Records   []schema.AssessmentRecord `json:"records"`
}

// PolicyEntry is one element of GET /policies.
type PolicyEntry struct {
	Default bool `json:"default"`
	*core.Policy
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePolicies(c *gin.Context) {
	policies := s.engine.Policies()
	out := make([]PolicyEntry, 0, len(policies))
	for _, p := range policies {
		out = append(out, PolicyEntry{Default: p.Name == s.engine.DefaultPolicy(), Policy: p})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAssess(c *gin.Context) {
	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Save && req.PatientID == "" {
		s.fail(c, http.StatusBadRequest, errors.New("patient_id is required to save an assessment"))
		return
	}

	a, err := s.engine.AssessWith(req.Policy, req.Observation)
	if err != nil {
		s.fail(c, statusForEngineError(err), err)
		return
	}
	s.metrics.observeAssessment(a)

	view := outwriter.AssessmentView{
		PatientID:  req.PatientID,
		Label:      contract.GetPlainLabel(a.Level),
		Assessment: a,
	}
	if !req.Save {
		c.JSON(http.StatusOK, view)
		return
	}

	rec, err := records.Save(s.store, req.PatientID, c.GetString(operatorKey), req.Observation, a)
	if errors.Is(err, records.ErrStoreDisabled) {
		s.fail(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	s.metrics.saved.Inc()
	s.logger.Debug("assessment saved",
		zap.String("record_id", rec.RecordID),
		zap.String("patient_id", rec.PatientID),
		zap.String("policy", rec.Policy),
		zap.String("level", string(rec.Level)))

	view.RecordID = rec.RecordID
	c.JSON(http.StatusCreated, view)
}

func (s *Server) handleHistory(c *gin.Context) {
	patientID := c.Param("id")
	recs, err := s.store.History(patientID)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if len(recs) == 0 {
		s.fail(c, http.StatusNotFound, errors.New("no assessments found for patient "+patientID))
		return
	}

	history := schema.NewPatientHistory(patientID, recs)
	c.JSON(http.StatusOK, HistoryResponse{
		PatientID: history.PatientID,
		Trend:     history.Trend(),
		Records:   history.Records,
	})
}

func (s *Server) handlePopulation(c *gin.Context) {
	summary, err := s.store.Summary()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if summary.LevelCounts == nil {
		summary.LevelCounts = map[schema.Level]int{}
	}
	c.JSON(http.StatusOK, summary)
}

// fail aborts with a JSON error body. Internal failures keep their detail in the log only.
func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func statusForEngineError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidObservation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownPolicy):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
