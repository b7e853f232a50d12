package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/protocol"
	"github.com/richard-senior/h2h/pkg/tools"
	"github.com/richard-senior/h2h/pkg/transport"
)

// ToolPrefix is added to every registered tool name, calls arrive with or without it
const ToolPrefix = "mcp___"

// Name and Version are reported to the client during initialize
const (
	Name    = "h2h"
	Version = "1.0.0"
)

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	handlers  map[string]HandlerFunc
	tools     []protocol.Tool
	mu        sync.Mutex
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// Singleton instance
var (
	instance *Server
	once     sync.Once
)

// GetInstance returns the singleton instance of the Server
func GetInstance() *Server {
	if instance == nil {
		logger.Warn("Server instance requested but not initialized. Use InitInstance first.")
		return InitInstance(transport.NewStdioTransport())
	}
	return instance
}

// InitInstance initializes the singleton instance of the Server with the specified transport
func InitInstance(t transport.Transport) *Server {
	once.Do(func() {
		instance = New(t)
	})
	return instance
}

// New creates a server with the built-in methods and the default tools registered
func New(t transport.Transport) *Server {
	s := &Server{
		transport: t,
		handlers:  make(map[string]HandlerFunc),
		tools:     []protocol.Tool{},
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.RegisterDefaultTools()
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool{}, s.tools...)
}

// RegisterDefaultTools registers all the default tools with the server
func (s *Server) RegisterDefaultTools() {
	logger.Info("Registering default tools...")

	defaults := []struct {
		tool    protocol.Tool
		handler HandlerFunc
	}{
		{tools.H2HParseTool(), tools.HandleH2HParse},
		{tools.H2HFetchTool(), tools.HandleH2HFetch},
		{tools.TeamCompareTool(), tools.HandleTeamCompare},
		{tools.MatchPredictTool(), tools.HandleMatchPredict},
		{tools.DateTimeTool(), tools.HandleDateTimeTool},
	}
	for _, d := range defaults {
		d.tool.Name = ToolPrefix + d.tool.Name
		s.RegisterTool(d.tool, d.handler)
	}
}

// Start starts the server and begins processing requests
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests handles requests until the client closes the stream
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if errors.Is(err, io.EOF) {
			logger.Info("Client closed the connection")
			return nil
		}
		if err != nil {
			return err
		}

		// a nil response means no reply is required
		resp := s.handleRequest(req)
		if resp == nil {
			continue
		}

		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// lookup finds a handler by name with or without the tool prefix
func (s *Server) lookup(name string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h := s.handlers[name]; h != nil {
		return h
	}
	if strings.HasPrefix(name, ToolPrefix) {
		return s.handlers[strings.TrimPrefix(name, ToolPrefix)]
	}
	return s.handlers[ToolPrefix+name]
}

// handleRequest processes a request and returns a response
func (s *Server) handleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)
	logger.Inform("Full request:", string(req.Params))

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	var handler HandlerFunc
	var params any

	if req.Method == string(protocol.MethodInvokeTool) {
		// older clients name the tool inside the params
		var invokeParams map[string]any
		if err := json.Unmarshal(req.Params, &invokeParams); err != nil {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrInvalidParams,
				Message: "Invalid parameters for invoke_tool: " + err.Error(),
			}
			return resp
		}
		toolName, ok := invokeParams["name"].(string)
		if !ok {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrInvalidParams,
				Message: "Missing tool name in invoke_tool parameters",
			}
			return resp
		}
		logger.Info("Tool invocation requested for:", toolName)
		handler = s.lookup(toolName)
		params = invokeParams["parameters"]
	} else {
		s.mu.Lock()
		handler = s.handlers[req.Method]
		s.mu.Unlock()
		params = req.Params
	}

	if handler == nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
		return resp
	}

	result, err := handler(params)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrToolExecutionFailed,
			Message: err.Error(),
		}
		return resp
	}
	if result == nil {
		return nil
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	resp.Result = resultBytes
	logger.Inform("Full response:", string(resultBytes))
	return resp
}

// toolCallParams are the params of tools/call
type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// decodeParams accepts the raw json of a request or an already decoded value
func decodeParams(params any, v any) error {
	raw, ok := params.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(params); err != nil {
			return err
		}
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	logger.Info("Handling tools/list request")
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handleToolsCall runs a tool. Failures inside the tool are returned as an error result
// so the model can see them, only a malformed call is a protocol error.
func (s *Server) handleToolsCall(params any) (any, error) {
	logger.Info("Handling tools/call request")

	var call toolCallParams
	if err := decodeParams(params, &call); err != nil {
		return nil, fmt.Errorf("invalid tools/call parameters: %w", err)
	}
	logger.Info("Tool call requested for:", call.Name)

	handler := s.lookup(call.Name)
	if handler == nil || call.Name == "" {
		return nil, fmt.Errorf("tool not found: %s", call.Name)
	}

	result, err := handler(call.Arguments)
	if err != nil {
		logger.Warn("Tool", call.Name, "failed:", err)
		return protocol.NewTextResult(err.Error(), true), nil
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s result: %w", call.Name, err)
	}
	return protocol.NewTextResult(string(text), false), nil
}

// handleInitialize echoes the client's protocol version and advertises tools
func (s *Server) handleInitialize(params any) (any, error) {
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools registered")

	var req struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := decodeParams(params, &req); err != nil {
		logger.Warn("Failed to read initialize params:", err)
	}
	if req.ProtocolVersion == "" {
		req.ProtocolVersion = "2024-11-05"
	}
	logger.Info("Using protocol version:", req.ProtocolVersion)

	type serverInfo struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	return struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ServerInfo      serverInfo     `json:"serverInfo"`
	}{
		ProtocolVersion: req.ProtocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: serverInfo{Name: Name, Version: Version},
	}, nil
}

// handleInitialized handles the initialized notification, it needs no response
func (s *Server) handleInitialized(params any) (any, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}
