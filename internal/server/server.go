package server

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/dartcam/internal/engine"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeCommandFailed  = -32000
)

// Controller is the engine surface the server drives. *engine.Engine
// implements it.
type Controller interface {
	RequestCalibrate() error
	Confirm(rotationOffset float64) error
	ConfirmPending() error
	Reset() error
	AdjustRotationOffset(delta float64) error
	RequestAutoOrient() error
	Snapshot() engine.Snapshot
}

// Server handles the control protocol on a pair of streams.
type Server struct {
	ctrl     Controller
	version  string
	logger   *slog.Logger
	validate *validator.Validate

	mu  sync.Mutex // serializes writes to out
	out io.Writer
}

// Request represents an incoming JSON-RPC request
type Request struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      interface{}         `json:"id"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents a JSON-RPC error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Notification represents an outgoing notification (no ID)
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server writing to out. version is reported by initialize.
// Callbacks may be taken from the server before Run attaches a controller,
// so the engine can be built with them.
func New(out io.Writer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		version:  version,
		logger:   logger,
		validate: validator.New(),
		out:      out,
	}
}

// Run drives ctrl with the requests read from in, one per line, until EOF
// and writes each response to out.
func (s *Server) Run(in io.Reader, ctrl Controller) error {
	s.ctrl = ctrl
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			s.write(s.errorResponse(nil, CodeParseError, "Parse error", err.Error()))
			continue
		}

		if resp := s.handleRequest(&req); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// Notify writes a notification. Safe for concurrent use with Run.
func (s *Server) Notify(method string, params interface{}) {
	s.write(&Notification{JSONRPC: "2.0", Method: method, Params: params})
}

// Callbacks returns engine callbacks that forward every engine event as a
// notification.
func (s *Server) Callbacks() engine.Callbacks {
	return engine.Callbacks{
		OnScore: func(ev engine.ScoreEvent) {
			s.Notify("score", ev)
		},
		OnCalibrationStatus: func(st engine.CalibrationStatus) {
			s.Notify("calibration_status", st)
		},
		OnStateChange: func(prev, next engine.State) {
			s.Notify("state_changed", map[string]engine.State{"from": prev, "to": next})
		},
	}
}

func (s *Server) write(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode message", "error", err)
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		s.logger.Error("failed to write message", "error", err)
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "ping":
		return s.result(req.ID, map[string]interface{}{})
	case "status":
		return s.result(req.ID, s.ctrl.Snapshot())
	case "calibrate":
		return s.command(req.ID, s.ctrl.RequestCalibrate())
	case "confirm":
		return s.handleConfirm(req)
	case "reset":
		return s.command(req.ID, s.ctrl.Reset())
	case "rotate":
		return s.handleRotate(req)
	case "auto_orient":
		return s.command(req.ID, s.ctrl.RequestAutoOrient())
	default:
		return s.errorResponse(req.ID, CodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}
