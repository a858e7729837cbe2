package core

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/logging"
)

// Dispatcher answers one request.
type Dispatcher interface {
	Handle(req Request) Response
}

// Caller runs fn on the event loop and waits for it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

type IPCServer struct {
	socketPath string
	loop       Caller
	handler    Dispatcher
	hub        *Hub
	timeout    time.Duration

	listener net.Listener
	running  atomic.Bool
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
}

func NewIPCServer(socketPath string, loop Caller, handler Dispatcher, hub *Hub, logger *zap.Logger) *IPCServer {
	return &IPCServer{
		socketPath: socketPath,
		loop:       loop,
		handler:    handler,
		hub:        hub,
		timeout:    5 * time.Second,
		conns:      make(map[net.Conn]struct{}),
		logger:     logging.OrNop(logger).Named("ipc"),
	}
}

func (s *IPCServer) Start() error {
	if s.running.Load() {
		return fmt.Errorf("IPC server already running")
	}

	// Remove a stale socket left by a previous run
	if _, err := os.Stat(s.socketPath); err == nil {
		os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	s.listener = listener
	s.running.Store(true)
	s.logger.Info("IPC server listening", zap.String("socket", s.socketPath))

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

func (s *IPCServer) acceptConnections() {
	defer s.wg.Done()
	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() {
				s.logger.Warn("error accepting connection", zap.Error(err))
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConnection(conn)
		}()
	}
}

func (s *IPCServer) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *IPCServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		line := scanner.Text()
		req, err := ParseRequest(line)
		if err != nil {
			if encErr := enc.Encode(errResponse("%v", err)); encErr != nil {
				return
			}
			continue
		}
		s.logger.Debug("received request", zap.Stringer("request", req))

		if req.Domain == subscribeCommand {
			s.stream(conn, scanner, enc)
			return
		}

		if err := enc.Encode(s.dispatch(req)); err != nil {
			s.logger.Debug("client went away", zap.Error(err))
			return
		}
	}
}

func (s *IPCServer) dispatch(req Request) Response {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var resp Response
	if err := s.loop.Call(ctx, func() { resp = s.handler.Handle(req) }); err != nil {
		return errResponse("request %s failed: %v", req, err)
	}
	return resp
}

// stream sends every published event as one JSON line until the client
// disconnects or the server stops.
func (s *IPCServer) stream(conn net.Conn, scanner *bufio.Scanner, enc *json.Encoder) {
	if s.hub == nil {
		enc.Encode(errResponse("event streaming is not available"))
		return
	}

	events, cancel := s.hub.Subscribe()
	defer cancel()
	if err := enc.Encode(okResponse("subscribed")); err != nil {
		return
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for scanner.Scan() {
		}
	}()

	for {
		select {
		case <-gone:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := enc.Encode(e); err != nil {
				return
			}
		}
	}
}

func (s *IPCServer) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()

	if _, err := os.Stat(s.socketPath); err == nil {
		os.Remove(s.socketPath)
	}

	s.logger.Info("IPC server stopped")
	return nil
}
