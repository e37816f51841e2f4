// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/passagehealth/passage/core"
	"github.com/passagehealth/passage/internal/contract"
	"go.uber.org/zap"
)

// NewMCPServer initializes and configures the Passage MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, engine *core.Engine, store contract.RecordStore, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := server.NewMCPServer(
		"Passage Risk Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		engine:  engine,
		store:   store,
		logger:  logger,
	}

	// --- 1. Tool: assess_patient ---
	s.AddTool(mcp.NewTool("assess_patient",
		mcp.WithDescription("Score one patient observation under a risk policy and explain the contributing factors."),
		mcp.WithObject("observation", mcp.Description("Observation fields keyed by name, e.g. {\"age\": 82, \"gait_speed\": 0.6, \"living_alone\": true}."), mcp.Required()),
		mcp.WithString("policy", mcp.Description("Policy name. Defaults to the configured default policy.")),
		mcp.WithString("patient_id", mcp.Description("Patient identifier. Required when save is true.")),
		mcp.WithBoolean("save", mcp.Description("Append the assessment to the record store.")),
	), h.handleAssessPatient)

	// --- 2. Tool: list_policies ---
	s.AddTool(mcp.NewTool("list_policies",
		mcp.WithDescription("List the registered risk policies with their rules, transform and confidence method."),
	), h.handleListPolicies)

	// --- 3. Tool: get_patient_history ---
	s.AddTool(mcp.NewTool("get_patient_history",
		mcp.WithDescription("Return every saved assessment of one patient, oldest first, with the risk trend."),
		mcp.WithString("patient_id", mcp.Description("Patient identifier."), mcp.Required()),
	), h.handleGetPatientHistory)

	// --- 4. Tool: get_population_summary ---
	s.AddTool(mcp.NewTool("get_population_summary",
		mcp.WithDescription("Aggregate every saved assessment into record counts, mean risk and level distribution."),
	), h.handleGetPopulationSummary)

	return s
}

// StartMCPServer starts the Passage MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, engine *core.Engine, store contract.RecordStore, logger *zap.Logger) error {
	s := NewMCPServer(baseCfg, engine, store, logger)
	return server.ServeStdio(s)
}
