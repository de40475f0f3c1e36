// Package lsp serves open documents over the Language Server Protocol.
//
// The server speaks JSON-RPC 2.0 with VS Code framing. Requests are handled
// one at a time in arrival order, so the changes of a document are applied
// in the order the client sent them.
package lsp

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/document"
	"github.com/arjunmahishi/tsls/langdef"
)

// ErrNoShutdown is returned by Serve when the client exits or disconnects
// without a shutdown request.
var ErrNoShutdown = errors.New("connection closed without shutdown")

// Options configures a Server.
type Options struct {
	// Logger receives server logs. If nil, logging is disabled.
	Logger *zap.Logger

	// MaxDiagnostics bounds the diagnostics published per file.
	// If 0, diag.DefaultMax is used.
	MaxDiagnostics int

	// Version is reported to the client in ServerInfo.
	Version string
}

// Server holds the open documents of one client connection.
type Server struct {
	language cst.Language
	def      *langdef.Definition
	opts     Options
	logger   *zap.Logger

	mu       sync.Mutex
	files    map[protocol.DocumentURI]*document.File
	shutdown bool
}

// NewServer creates a server that analyses every document with language
// and def.
func NewServer(language cst.Language, def *langdef.Definition, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		language: language,
		def:      def,
		opts:     opts,
		logger:   opts.Logger,
		files:    make(map[protocol.DocumentURI]*document.File),
	}
}

// Serve runs the protocol on rwc until the client exits, the connection
// drops or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	handler := jsonrpc2.HandlerWithError(s.handle).SuppressErrClosed()
	conn := jsonrpc2.NewConn(ctx, stream, handler, jsonrpc2.SetLogger(zap.NewStdLog(s.logger)))

	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		_ = conn.Close()
		<-conn.DisconnectNotify()
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shutdown {
		return ErrNoShutdown
	}
	return nil
}

// file returns the open document for uri.
func (s *Server) file(uri protocol.DocumentURI) (*document.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[uri]
	return f, ok
}

// open returns the document for uri, creating it if needed.
func (s *Server) open(uri protocol.DocumentURI) *document.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[uri]
	if !ok {
		f = document.NewFile(uri, s.language, s.def, document.Options{
			Logger:         s.logger,
			MaxDiagnostics: s.opts.MaxDiagnostics,
		})
		s.files[uri] = f
	}
	return f
}

func (s *Server) close(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, uri)
}

// snapshot returns the latest snapshot of an open document.
func (s *Server) snapshot(uri protocol.DocumentURI) (*document.Snapshot, bool) {
	f, ok := s.file(uri)
	if !ok {
		return nil, false
	}
	snap := f.Snapshot()
	return snap, snap != nil
}

// Stdio joins standard input and output into the connection a client
// starts the server with.
func Stdio() io.ReadWriteCloser {
	return stdio{}
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdio) Close() error {
	return errors.Join(os.Stdin.Close(), os.Stdout.Close())
}
