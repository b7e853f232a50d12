package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/protocol"
)

// StdioTransport reads newline or whitespace separated JSON-RPC messages and writes one response per line
type StdioTransport struct {
	decoder *json.Decoder
	writer  *bufio.Writer
	mu      sync.Mutex
}

// NewStdioTransport creates a new transport that uses stdin/stdout
func NewStdioTransport() *StdioTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport creates a transport over arbitrary streams
func NewStreamTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{
		decoder: json.NewDecoder(bufio.NewReader(r)),
		writer:  bufio.NewWriter(w),
	}
}

// ReadRequest blocks until a whole JSON object has been read. io.EOF means the client went away.
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	var raw json.RawMessage
	if err := t.decoder.Decode(&raw); err != nil {
		if err == io.EOF {
			logger.Info("Received EOF on stdin, client disconnected")
			return nil, err
		}
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	logger.Debug("Received raw request:", string(raw))

	request, err := protocol.ParseJsonRpcRequest(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON-RPC request: %w", err)
	}
	return request, nil
}

// WriteResponse writes a JSON-RPC response followed by a newline and flushes
func (t *StdioTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	b, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	b = append(b, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.writer.Write(b); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return t.writer.Flush()
}
