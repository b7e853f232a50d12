package processor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/tools"
)

// Request is a single tool call read from a file or stdin, for example
// {"tool": "h2h_parse", "arguments": {"text": "..."}, "requestId": "1"}
type Request struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	RequestID string         `json:"requestId"`
}

// Response wraps whatever the tool returned
type Response struct {
	RequestID string         `json:"requestId,omitempty"`
	Tool      string         `json:"tool"`
	Result    any            `json:"result"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Handler matches the tool handlers in pkg/tools
type Handler func(params any) (any, error)

var handlers = map[string]Handler{
	"h2h_parse":     tools.HandleH2HParse,
	"h2h_fetch":     tools.HandleH2HFetch,
	"team_compare":  tools.HandleTeamCompare,
	"match_predict": tools.HandleMatchPredict,
	"get_datetime":  tools.HandleDateTimeTool,
}

// ToolNames lists the tools a request may name
func ToolNames() []string {
	names := make([]string, 0, len(handlers))
	for k := range handlers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// createErrorResponse creates an error response
func createErrorResponse(code, message, requestID string) ([]byte, error) {
	var response ErrorResponse
	response.RequestID = requestID
	response.Error.Code = code
	response.Error.Message = message

	return json.MarshalIndent(response, "", "  ")
}

// ProcessRequest runs the tool named in input and returns the response json.
// Tool failures are reported in the response, the error is only for output that couldn't be built.
func ProcessRequest(input []byte) ([]byte, error) {
	var request Request
	if err := json.Unmarshal(input, &request); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err), "")
	}

	logger.Info("Processing request", request.Tool)

	handler, ok := handlers[request.Tool]
	if !ok {
		return createErrorResponse("unknown_tool", fmt.Sprintf("Unknown tool %q, expected one of %v", request.Tool, ToolNames()), request.RequestID)
	}

	args := request.Arguments
	if args == nil {
		args = map[string]any{}
	}
	result, err := handler(args)
	if err != nil {
		logger.Error("Tool failed", request.Tool, err)
		return createErrorResponse("tool_error", err.Error(), request.RequestID)
	}

	response := Response{
		RequestID: request.RequestID,
		Tool:      request.Tool,
		Result:    result,
		Metadata: map[string]any{
			"version": "1.0.0",
		},
	}
	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal response to JSON", err)
		return createErrorResponse("internal_error", "Failed to create response", request.RequestID)
	}
	return out, nil
}
