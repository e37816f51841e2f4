package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/schema"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  *core.Engine
	store   contract.RecordStore
	logger  *zap.Logger
}

type assessResult struct {
	PatientID  string                `json:"patient_id,omitempty"`
	RecordID   string                `json:"record_id,omitempty"`
	Label      string                `json:"label"`
	Assessment schema.RiskAssessment `json:"assessment"`
}

type policyResult struct {
	Default bool `json:"default"`
	*core.Policy
}

type historyResult struct {
	PatientID string                    `json:"patient_id"`
	Trend     float64                   `json:"trend"`
	Records   []schema.AssessmentRecord `json:"records"`
}

func (h *toolHandler) handleAssessPatient(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	obs, err := decodeObservation(request.GetArguments()["observation"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid observation argument: %v", err)), nil
	}

	policy := request.GetString("policy", h.baseCfg.Policy)
	patientID := request.GetString("patient_id", "")
	save := request.GetBool("save", false)
	if save && patientID == "" {
		return mcp.NewToolResultError("patient_id is required when save is true"), nil
	}

	a, err := h.engine.AssessWith(policy, obs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assessment failed: %v", err)), nil
	}

	result := assessResult{PatientID: patientID, Label: contract.GetPlainLabel(a.Level), Assessment: a}
	if save {
		rec, err := records.Save(h.store, patientID, h.baseCfg.Operator, obs, a)
		if err != nil {
			h.logger.Error("failed to save assessment", zap.String("patient_id", patientID), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("failed to save assessment: %v", err)), nil
		}
		result.RecordID = rec.RecordID
	}
	h.logger.Info("assessed patient",
		zap.String("policy", a.Policy),
		zap.String("level", string(a.Level)),
		zap.Bool("saved", save))

	return jsonResult(result)
}

func (h *toolHandler) handleListPolicies(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policies := h.engine.Policies()
	out := make([]policyResult, 0, len(policies))
	for _, p := range policies {
		out = append(out, policyResult{Default: p.Name == h.engine.DefaultPolicy(), Policy: p})
	}
	return jsonResult(out)
}

func (h *toolHandler) handleGetPatientHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID := request.GetString("patient_id", "")
	if patientID == "" {
		return mcp.NewToolResultError("patient_id is required"), nil
	}

	recs, err := h.store.History(patientID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	history := schema.NewPatientHistory(patientID, recs)
	if history.Records == nil {
		history.Records = []schema.AssessmentRecord{}
	}
	return jsonResult(historyResult{PatientID: patientID, Trend: history.Trend(), Records: history.Records})
}

func (h *toolHandler) handleGetPopulationSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.store.Summary()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("population summary failed: %v", err)), nil
	}
	return jsonResult(summary)
}

// decodeObservation converts the loosely typed tool argument into an observation.
func decodeObservation(arg any) (schema.PatientObservation, error) {
	var obs schema.PatientObservation
	if arg == nil {
		return obs, fmt.Errorf("observation is required")
	}
	if _, ok := arg.(map[string]any); !ok {
		return obs, fmt.Errorf("observation must be an object")
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return obs, err
	}
	if err := json.Unmarshal(raw, &obs); err != nil {
		return obs, err
	}
	return obs, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
