// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/leadflow/internal/adapters/server/common"
	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// statusNames lists accepted status identifiers in board order.
func statusNames() []string {
	defs := domain.Statuses()
	out := make([]string, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.Status.String())
	}
	return out
}

// NewHandler builds the MCP adapter exposing the lead board tools.
func NewHandler(cfg Config, leads common.LeadService) (*Handler, error) {
	if leads == nil {
		return nil, fmt.Errorf("lead service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, leads)
	registerMutationTools(mcpSrv, leads)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "leadflow"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the read-only `leadflow.board` and `leadflow.list_leads` tools.
func registerBoardTools(srv *mcpserver.MCPServer, leads common.LeadService) {
	srv.AddTool(
		mcp.NewTool(
			"leadflow.board",
			mcp.WithDescription("Return the lead board: five status columns in fixed order, each with its leads."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			board, err := leads.Board(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(board)
			if err != nil {
				return nil, fmt.Errorf("encode board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"leadflow.list_leads",
			mcp.WithDescription("List every lead in insertion order, optionally filtered by status."),
			mcp.WithString("status", mcp.Description("Only leads in this status"), mcp.Enum(statusNames()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var filter *domain.Status
			if raw := strings.TrimSpace(req.GetString("status", "")); raw != "" {
				status, err := domain.ParseStatus(raw)
				if err != nil {
					return toolResultFromError(errors.Join(common.ErrInvalidRequest, err)), nil
				}
				filter = &status
			}
			all, err := leads.ListLeads(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			out := make([]domain.Lead, 0, len(all))
			for _, lead := range all {
				if filter != nil && lead.Status != *filter {
					continue
				}
				out = append(out, lead)
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"leads": out,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_leads result: %w", err)
			}
			return result, nil
		},
	)
}

// registerMutationTools registers `leadflow.create_lead` and `leadflow.move_lead`.
func registerMutationTools(srv *mcpserver.MCPServer, leads common.LeadService) {
	srv.AddTool(
		mcp.NewTool(
			"leadflow.create_lead",
			mcp.WithDescription("Add a lead to the New Leads column. Every field is validated; all failures are reported together."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Full name, at least 2 characters")),
			mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
			mcp.WithString("phone", mcp.Required(), mcp.Description("Phone, at least 8 characters")),
			mcp.WithString("source", mcp.Required(), mcp.Description("Acquisition source, at least 2 characters")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res, err := leads.CreateLead(ctx, common.CreateLeadRequest{
				Name:   req.GetString("name", ""),
				Email:  req.GetString("email", ""),
				Phone:  req.GetString("phone", ""),
				Source: req.GetString("source", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(res)
			if err != nil {
				return nil, fmt.Errorf("encode create_lead result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"leadflow.move_lead",
			mcp.WithDescription("Move a lead to another status column. Unknown lead ids are ignored and reported with applied=false."),
			mcp.WithString("lead_id", mcp.Required(), mcp.Description("Lead identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum(statusNames()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			leadID, err := req.RequireString("lead_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := leads.MoveLead(ctx, common.MoveLeadRequest{LeadID: leadID, Status: status})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(res)
			if err != nil {
				return nil, fmt.Errorf("encode move_lead result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps adapter errors into MCP tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.As(err, &verr):
		lines := make([]string, 0, len(verr.Fields))
		for _, field := range verr.Fields {
			lines = append(lines, field.Field+": "+field.Message)
		}
		return mcp.NewToolResultError("validation_failed: " + strings.Join(lines, "; "))
	case errors.Is(err, common.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidStatus):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, app.ErrDuplicateID):
		return mcp.NewToolResultError("duplicate_id: " + err.Error())
	case errors.Is(err, app.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrServiceUnavailable):
		return mcp.NewToolResultError("service_unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
