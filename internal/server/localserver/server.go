package localserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
)

// Server serves an http.Handler on a Unix domain socket.
type Server struct {
	path       string
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server for the given socket path.
func New(socketPath string, handler http.Handler) *Server {
	return &Server{
		path:       socketPath,
		httpServer: &http.Server{Handler: handler},
	}
}

// ListenAndServe creates the socket and serves until Shutdown. A
// stale socket file from an unclean exit is removed first.
func (s *Server) ListenAndServe() error {
	if err := removeStaleSocket(s.path); err != nil {
		return err
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	s.listener = listener

	err = s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Shutdown gracefully shuts down the server and removes the socket
// file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if removeErr := os.Remove(s.path); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = removeErr
	}
	return err
}

// removeStaleSocket deletes a leftover socket file nothing is
// listening on. A live listener keeps the path and the bind fails.
func removeStaleSocket(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode().Type() != os.ModeSocket {
		return errors.New("localserver: " + path + " exists and is not a socket")
	}

	conn, err := net.Dial("unix", path)
	if err == nil {
		conn.Close()
		return errors.New("localserver: socket " + path + " is already in use")
	}
	return os.Remove(path)
}
