package server

import (
	jsoniter "github.com/json-iterator/go"
)

// ConfirmParams are the parameters of the confirm method. A missing
// rotation_offset keeps the offset the engine proposes when the command
// is applied, so a rotate queued just before is not lost.
type ConfirmParams struct {
	RotationOffset *float64 `json:"rotation_offset" validate:"omitempty,gte=-360,lte=360"`
}

// RotateParams are the parameters of the rotate method.
type RotateParams struct {
	Delta *float64 `json:"delta" validate:"required,gte=-360,lte=360"`
}

// CommandResult is returned by every engine command. Commands take effect
// on the next processed frame; their outcome arrives as notifications.
type CommandResult struct {
	Queued bool `json:"queued"`
}

var (
	methods       = []string{"initialize", "ping", "status", "calibrate", "confirm", "reset", "rotate", "auto_orient"}
	notifications = []string{"score", "calibration_status", "state_changed"}
)

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *Request) *Response {
	return s.result(req.ID, map[string]interface{}{
		"protocolVersion": "1.0",
		"capabilities": map[string]interface{}{
			"methods":       methods,
			"notifications": notifications,
		},
		"serverInfo": map[string]interface{}{
			"name":    "dartcam",
			"version": s.version,
		},
	})
}

func (s *Server) handleConfirm(req *Request) *Response {
	var p ConfirmParams
	if resp := s.decodeParams(req, &p); resp != nil {
		return resp
	}
	if p.RotationOffset == nil {
		return s.command(req.ID, s.ctrl.ConfirmPending())
	}
	return s.command(req.ID, s.ctrl.Confirm(*p.RotationOffset))
}

func (s *Server) handleRotate(req *Request) *Response {
	var p RotateParams
	if resp := s.decodeParams(req, &p); resp != nil {
		return resp
	}
	return s.command(req.ID, s.ctrl.AdjustRotationOffset(*p.Delta))
}

// decodeParams unmarshals and validates req.Params into v. Absent params
// decode as an empty object. It returns an error response on failure.
func (s *Server) decodeParams(req *Request, v interface{}) *Response {
	raw := req.Params
	if len(raw) == 0 || string(raw) == "null" {
		raw = jsoniter.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}
	if err := s.validate.Struct(v); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}
	return nil
}

// command turns the outcome of an engine command into a response.
func (s *Server) command(id interface{}, err error) *Response {
	if err != nil {
		s.logger.Warn("command refused", "error", err)
		return s.errorResponse(id, CodeCommandFailed, "Command refused", err.Error())
	}
	return s.result(id, CommandResult{Queued: true})
}

func (s *Server) result(id interface{}, v interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: v}
}

// errorResponse creates a JSON-RPC error response. An empty data string is
// omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *Response {
	e := &Error{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &Response{JSONRPC: "2.0", ID: id, Error: e}
}
