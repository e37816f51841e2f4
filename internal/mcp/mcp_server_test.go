package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	mcp_internal "github.com/passagehealth/passage/internal/mcp"
	"github.com/passagehealth/passage/internal/records"
	"github.com/passagehealth/passage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, store *records.MockRecordStore) *server.MCPServer {
	t.Helper()
	registry, err := core.NewRegistry()
	require.NoError(t, err)
	engine, err := core.NewEngine(registry, "")
	require.NoError(t, err)
	return mcp_internal.NewMCPServer(&contract.Config{Operator: "agent"}, engine, store, nil)
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestAssessPatient(t *testing.T) {
	store := &records.MockRecordStore{}
	s := newTestServer(t, store)

	res := callTool(t, s, "assess_patient", map[string]any{
		"observation": map[string]any{"age": 84.0, "gait_speed": 0.6, "frailty_count": 4.0, "living_alone": true},
	})
	require.False(t, res.IsError, resultText(res))

	var got struct {
		Label      string                `json:"label"`
		Assessment schema.RiskAssessment `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	assert.Equal(t, core.DefaultPolicy, got.Assessment.Policy)
	assert.NotEmpty(t, got.Label)
	assert.Len(t, got.Assessment.Explanations, 4)
	store.AssertNotCalled(t, "Append", mock.Anything)
}

func TestAssessPatientSave(t *testing.T) {
	store := &records.MockRecordStore{}
	store.On("Append", mock.MatchedBy(func(r schema.AssessmentRecord) bool {
		return r.PatientID == "p-007" && r.OperatorID == "agent"
	})).Return(nil).Once()
	s := newTestServer(t, store)

	res := callTool(t, s, "assess_patient", map[string]any{
		"patient_id":  "p-007",
		"save":        true,
		"policy":      core.HospitalizationThreshold,
		"observation": map[string]any{"age": 70.0},
	})
	require.False(t, res.IsError, resultText(res))
	assert.Contains(t, resultText(res), `"record_id"`)
	store.AssertExpectations(t)
}

func TestAssessPatientErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{"missing observation", map[string]any{}, "observation is required"},
		{"observation not an object", map[string]any{"observation": "age=80"}, "must be an object"},
		{"wrong field type", map[string]any{"observation": map[string]any{"age": "old"}}, "invalid observation argument"},
		{"out of range", map[string]any{"observation": map[string]any{"age": 140.0}}, "invalid observation"},
		{"misspelled field", map[string]any{"observation": map[string]any{"age": 84.0, "gaitspeed": 0.4}}, `unknown field "gaitspeed"`},
		{"unknown policy", map[string]any{"policy": "nope", "observation": map[string]any{"age": 80.0}}, "unknown policy"},
		{"save without patient", map[string]any{"save": true, "observation": map[string]any{"age": 80.0}}, "patient_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &records.MockRecordStore{})
			res := callTool(t, s, "assess_patient", tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(res), tt.wantMsg)
		})
	}
}

func TestAssessPatientStoreFailure(t *testing.T) {
	store := &records.MockRecordStore{}
	store.On("Append", mock.AnythingOfType("schema.AssessmentRecord")).Return(errors.New("database is locked"))
	s := newTestServer(t, store)

	res := callTool(t, s, "assess_patient", map[string]any{
		"patient_id":  "p-001",
		"save":        true,
		"observation": map[string]any{"age": 80.0},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "database is locked")
}

func TestAssessPatientSaveWithoutStore(t *testing.T) {
	registry, err := core.NewRegistry()
	require.NoError(t, err)
	engine, err := core.NewEngine(registry, "")
	require.NoError(t, err)
	s := mcp_internal.NewMCPServer(&contract.Config{Operator: "agent"}, engine, records.NoneStore{}, nil)

	res := callTool(t, s, "assess_patient", map[string]any{
		"patient_id":  "p-001",
		"save":        true,
		"observation": map[string]any{"age": 80.0},
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "record store is disabled")
	assert.NotContains(t, resultText(res), `"record_id"`)
}

func TestListPolicies(t *testing.T) {
	s := newTestServer(t, &records.MockRecordStore{})

	res := callTool(t, s, "list_policies", nil)
	require.False(t, res.IsError)

	var got []struct {
		Name    string `json:"name"`
		Default bool   `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
	require.Len(t, got, len(core.Presets()))
	assert.Equal(t, core.DefaultPolicy, got[0].Name)
	assert.True(t, got[0].Default)
}

func TestGetPatientHistory(t *testing.T) {
	store := &records.MockRecordStore{}
	store.On("History", "p-001").Return([]schema.AssessmentRecord{{RecordID: "r1", PatientID: "p-001", RiskPercent: 20}}, nil)
	store.On("History", "p-404").Return(nil, nil)
	s := newTestServer(t, store)

	res := callTool(t, s, "get_patient_history", map[string]any{"patient_id": "p-001"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(res), `"r1"`)

	res = callTool(t, s, "get_patient_history", map[string]any{"patient_id": "p-404"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(res), `"records": []`)

	res = callTool(t, s, "get_patient_history", map[string]any{})
	assert.True(t, res.IsError)
}

func TestGetPopulationSummary(t *testing.T) {
	store := &records.MockRecordStore{}
	store.On("Summary").Return(schema.PopulationSummary{TotalRecords: 5, UniquePatients: 2}, nil).Once()
	store.On("Summary").Return(schema.PopulationSummary{}, errors.New("no such table")).Once()
	s := newTestServer(t, store)

	res := callTool(t, s, "get_population_summary", nil)
	require.False(t, res.IsError)
	assert.Contains(t, resultText(res), `"total_records": 5`)

	res = callTool(t, s, "get_population_summary", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "no such table")
}
