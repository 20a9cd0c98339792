package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/mkarlsen/uipilot/internal/script"
	"github.com/mkarlsen/uipilot/internal/store"
	"github.com/mkarlsen/uipilot/internal/vars"
	"github.com/mkarlsen/uipilot/internal/version"
)

// mcpServer exposes script execution and session browsing as MCP tools.
// One script runs at a time; runMu serializes the desktop.
type mcpServer struct {
	runMu    sync.Mutex
	sessions *store.Store
	mcp      *mcpserver.MCPServer
}

func newMCPServer() (*mcpServer, error) {
	sessions, err := store.Open(appCfg.Store.Path)
	if err != nil {
		return nil, err
	}

	s := &mcpServer{sessions: sessions}
	s.mcp = mcpserver.NewMCPServer("uipilot", version.Version)
	s.registerTools()
	return s, nil
}

func (s *mcpServer) close() {
	_ = s.sessions.Close()
}

func (s *mcpServer) serve(transport string, port int) error {
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("run_script",
			mcp.WithDescription("Execute a JSON automation script against the desktop and return the step-by-step result"),
			mcp.WithString("script", mcp.Description("The script document as a JSON string"), mcp.Required()),
			mcp.WithObject("variables", mcp.Description("Variable values to preseed, name to value")),
		),
		s.handleRunScript,
	)

	s.mcp.AddTool(
		mcp.NewTool("validate_script",
			mcp.WithDescription("Validate a JSON automation script without executing it"),
			mcp.WithString("script", mcp.Description("The script document as a JSON string"), mcp.Required()),
		),
		s.handleValidateScript,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_sessions",
			mcp.WithDescription("List stored automation sessions with their versions"),
		),
		s.handleListSessions,
	)
}

// toYAML renders a tool result; tools answer in YAML the same way command
// output does.
func toYAML(v any) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("marshal result: %v", err)
	}
	return string(b)
}

func (s *mcpServer) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	src, _ := params["script"].(string)
	if src == "" {
		return mcp.NewToolResultError("script parameter is required"), nil
	}

	doc, err := script.Parse([]byte(src))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	seed := vars.New()
	if raw, ok := params["variables"].(map[string]any); ok {
		for name, value := range raw {
			seed.Set(name, value)
		}
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	in, err := buildInterpreter(engineOptions(appCfg), seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := in.Run(ctx, doc)
	if !res.Success {
		return mcp.NewToolResultError(toYAML(res)), nil
	}
	return mcp.NewToolResultText(toYAML(res)), nil
}

func (s *mcpServer) handleValidateScript(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, _ := request.GetArguments()["script"].(string)
	if src == "" {
		return mcp.NewToolResultError("script parameter is required"), nil
	}
	doc, err := script.Parse([]byte(src))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("valid: %d actions", len(doc.Actions))), nil
}

func (s *mcpServer) handleListSessions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.sessions.ListSessions()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(toYAML(sessions)), nil
}
