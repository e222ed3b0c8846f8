package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/entrhq/surf/pkg/logging"
)

// State is the dispatcher's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Executor runs one tool invocation and reports its outcome. Tool-level
// failures are part of the result, never an error: the returned flag marks
// the envelope's isError field.
type Executor interface {
	Execute(ctx context.Context, tool ToolName, args json.RawMessage) (result any, isError bool)
}

// Server is the protocol dispatcher: a single loop that reads one message,
// fully handles it, writes the response if one is due, and only then reads
// the next message. Tool execution is therefore strictly serial.
type Server struct {
	channel  *Channel
	registry *Registry
	executor Executor
	state    State
	log      *logging.Logger
}

// NewServer creates a dispatcher over the given channel and executor.
func NewServer(channel *Channel, registry *Registry, executor Executor, log *logging.Logger) *Server {
	return &Server{
		channel:  channel,
		registry: registry,
		executor: executor,
		state:    StateUninitialized,
		log:      log,
	}
}

// State returns the dispatcher's current lifecycle state.
func (s *Server) State() State {
	return s.state
}

// Run drives the dispatch loop until the peer closes the stream, a shutdown
// request is handled, or ctx is cancelled. Cancellation is honored between
// messages; an in-flight tool call always completes and its response is
// written first.
func (s *Server) Run(ctx context.Context) error {
	s.log.Infof("starting %s v%s (stdio transport)", ServerName, ServerVersion)

	for s.state != StateShuttingDown {
		select {
		case <-ctx.Done():
			s.log.Infof("context cancelled, stopping")
			s.state = StateShuttingDown
		default:
		}
		if s.state == StateShuttingDown {
			break
		}

		body, err := s.channel.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Infof("client disconnected")
				break
			}
			if errors.Is(err, ErrFraming) {
				// Already logged by the channel; drop the frame and keep reading.
				continue
			}
			s.log.Errorf("read error: %v", err)
			break
		}

		response := s.dispatch(ctx, body)
		if response == nil {
			continue
		}
		if err := s.channel.WriteMessage(response); err != nil {
			s.log.Errorf("write error: %v", err)
			break
		}
	}

	s.state = StateStopped
	s.log.Infof("server stopped")
	return nil
}

// dispatch parses one message body and routes it. A nil return means no
// response is due (notifications and undecodable bodies without an id).
func (s *Server) dispatch(ctx context.Context, body json.RawMessage) *Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		if id, ok := recoverID(body); ok {
			return NewErrorResponse(id, CodeParseError, fmt.Sprintf("Parse error: %v", err))
		}
		s.log.Warnf("dropping unparseable message: %v", err)
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req)
	case "notifications/initialized":
		s.state = StateInitialized
		s.log.Infof("client confirmed initialization")
		return nil
	case "tools/list":
		return NewResponse(req.ID, ListToolsResult{Tools: s.registry.Definitions()})
	case "tools/call":
		return s.handleToolsCall(ctx, &req)
	case "shutdown":
		s.log.Infof("shutdown requested")
		s.state = StateShuttingDown
		return NewResponse(req.ID, nullResult)
	default:
		if req.IsNotification() {
			// A notification from a protocol revision we don't track.
			s.log.Debugf("ignoring notification method %q", req.Method)
			return nil
		}
		return NewErrorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	var params struct {
		ClientInfo json.RawMessage `json:"clientInfo"`
	}
	if len(req.Params) > 0 {
		_ = json.Unmarshal(req.Params, &params)
	}
	s.log.Infof("initialize request from client: %s", string(params.ClientInfo))

	return NewResponse(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
	})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params CallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return NewErrorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}

	tool, ok := s.registry.Lookup(params.Name)
	if !ok {
		return NewErrorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	s.log.Infof("tools/call: %s(%s)", tool, truncate(params.Arguments, 200))

	result, isError := s.executor.Execute(ctx, tool, params.Arguments)

	text, err := json.Marshal(result)
	if err != nil {
		// A result that cannot be serialized is a tool failure, not a
		// protocol failure.
		text = []byte(fmt.Sprintf(`{"status":"error","error":"unencodable result: %v"}`, err))
		isError = true
	}

	return NewResponse(req.ID, NewTextResult(string(text), isError))
}

// recoverID extracts the id from a body that failed to decode as a
// Request, so a parse error can still be answered.
func recoverID(body json.RawMessage) (json.RawMessage, bool) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, false
	}
	if len(probe.ID) == 0 {
		return nil, false
	}
	return probe.ID, true
}

// truncate bounds argument logging so large payloads don't flood the side
// channel.
func truncate(raw json.RawMessage, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
