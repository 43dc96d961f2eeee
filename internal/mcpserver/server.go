// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz generation tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/deckservice"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *deckservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("generate_presentation",
		mcp.WithDescription("Generate a .pptx deck from source text and save it to the deck store. "+
			"The slide outline follows the canonical JSON contract; read it via the "+
			"get_outline_contract tool or the ansuz://outline-format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Source material to build slides from")),
		mcp.WithString("guidance", mcp.Description("Optional styling or structural guidance")),
		mcp.WithString("provider", mcp.Description("LLM provider: openai, anthropic, or gemini")),
		mcp.WithString("api_key", mcp.Required(), mcp.Description("API key for the selected provider")),
	), s.generatePresentation)

	s.mcp.AddTool(mcp.NewTool("list_decks",
		mcp.WithDescription("List the generated decks currently in the deck store."),
	), s.listDecks)

	s.mcp.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Return generation history records, newest first."),
	), s.getHistory)

	s.mcp.AddTool(mcp.NewTool("get_outline_contract",
		mcp.WithDescription("Returns the canonical slide outline JSON contract used for generation."),
	), s.getOutlineContract)

	// Resource: outline format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://outline-format", "Outline Format Contract",
			mcp.WithResourceDescription("Canonical slide outline JSON shape that generated outlines follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readOutlineFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) generatePresentation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	apiKey, err := req.RequireString("api_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	guidance := ""
	if g, err := req.RequireString("guidance"); err == nil {
		guidance = g
	}
	provider := ""
	if p, err := req.RequireString("provider"); err == nil {
		provider = p
	}

	result, err := s.svc.Generate(ctx, deckservice.Request{
		Content:  content,
		Guidance: guidance,
		Provider: provider,
		APIKey:   apiKey,
		Save:     true,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("generated: %s (%d slides, %d bytes)",
		result.Filename, result.SlideCount, len(result.Deck))), nil
}

func (s *Server) listDecks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.svc.ListDecks()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(metas) == 0 {
		return mcp.NewToolResultText("the deck store is empty"), nil
	}
	var names []string
	for _, m := range metas {
		names = append(names, m.Filename)
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	decks, _, err := s.svc.History(50, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(decks, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getOutlineContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OutlineFormatContract), nil
}

func (s *Server) readOutlineFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://outline-format",
			MIMEType: "text/markdown",
			Text:     OutlineFormatContract,
		},
	}, nil
}
