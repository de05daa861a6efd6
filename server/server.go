// Package server implements the sequential request/response TCP front end
// over a storage engine.
package server

import (
	"bufio"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/rezkam/kvs/engine"
	"github.com/rezkam/kvs/protocol"
)

// Server binds a listener and serves requests one at a time against a
// single engine instance. There is no internal concurrency: one connection
// is handled to completion before the next is accepted, matching the
// single-owner engine this fronts.
type Server struct {
	engine engine.Engine
	logger *zap.Logger
}

// New builds a Server over an already-open engine.
func New(eng engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: eng, logger: logger}
}

// Serve accepts connections on ln until it returns an error (including when
// ln is closed by another goroutine).
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	cmd, err := protocol.ReadCommand(reader)
	if err != nil {
		if err != io.EOF {
			s.logger.Warn("malformed request", zap.Error(err))
		}
		return
	}

	s.logger.Info("request", zap.String("op", opName(cmd)), zap.String("key", cmd.Key))

	resp, respond := s.dispatch(cmd)
	if !respond {
		// The engine error can't be represented in the response without
		// risking it being read back as an ordinary "not found": close
		// the connection instead of masking it as ordinary Get output.
		return
	}
	if err := protocol.WriteResponse(conn, resp); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// dispatch runs cmd against the engine and builds the response to send.
// The second return is false when the request must not be answered at all
// (the connection is simply closed), which is how a Get that failed with
// something other than "key absent" is distinguished from an ordinary miss.
func (s *Server) dispatch(cmd engine.Command) (protocol.Response, bool) {
	switch {
	case cmd.IsGet():
		value, ok, err := s.engine.Get(cmd.Key)
		if err != nil {
			s.logger.Error("get failed, closing connection", zap.String("key", cmd.Key), zap.Error(err))
			return protocol.Response{}, false
		}
		if !ok {
			return protocol.GetMissing(), true
		}
		return protocol.GetFound(value), true

	case cmd.IsSet():
		if err := s.engine.Set(cmd.Key, cmd.Value); err != nil {
			s.logger.Error("set failed", zap.String("key", cmd.Key), zap.Error(err))
			return protocol.SetFailure(err.Error()), true
		}
		return protocol.SetSuccess(), true

	case cmd.IsRemove():
		if err := s.engine.Remove(cmd.Key); err != nil {
			return protocol.RemoveFailure(err.Error()), true
		}
		return protocol.RemoveSuccess(), true

	default:
		return protocol.SetFailure("unknown request kind"), true
	}
}

func opName(cmd engine.Command) string {
	switch {
	case cmd.IsGet():
		return "get"
	case cmd.IsSet():
		return "set"
	case cmd.IsRemove():
		return "remove"
	default:
		return "unknown"
	}
}
