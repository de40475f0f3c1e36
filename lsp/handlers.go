package lsp

import (
	"context"
	"encoding/json"
	"errors"

	"fortio.org/safecast"
	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/arjunmahishi/tsls/document"
)

const serverName = "tsls"

// semanticTokensOptions is the semanticTokensProvider capability. The
// protocol package's SemanticTokensOptions has no legend field.
type semanticTokensOptions struct {
	Legend protocol.SemanticTokensLegend `json:"legend"`
	Full   bool                          `json:"full"`
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	s.logger.Debug("request", zap.String("method", req.Method), zap.Bool("notification", req.Notif))

	switch req.Method {
	case protocol.MethodExit:
		_ = conn.Close()
		return nil, nil
	case protocol.MethodShutdown:
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil
	}

	s.mu.Lock()
	down := s.shutdown
	s.mu.Unlock()
	if down {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}

	switch req.Method {
	case protocol.MethodInitialize:
		return s.initialize(), nil
	case protocol.MethodInitialized:
		return nil, nil
	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		doc := params.TextDocument
		return nil, s.update(ctx, conn, doc.URI, doc.Version, doc.Text)
	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		if len(params.ContentChanges) == 0 {
			return nil, nil
		}
		// Full sync: the last change carries the whole text.
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		return nil, s.update(ctx, conn, params.TextDocument.URI, params.TextDocument.Version, text)
	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		s.close(params.TextDocument.URI)
		return nil, s.publish(ctx, conn, params.TextDocument.URI, 0, []protocol.Diagnostic{})
	case protocol.MethodTextDocumentHover:
		var params protocol.HoverParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		snap, ok := s.snapshot(params.TextDocument.URI)
		if !ok {
			return nil, nil
		}
		hover, ok := snap.Hover(params.Position)
		if !ok {
			return nil, nil
		}
		return hover, nil
	case protocol.MethodTextDocumentCompletion:
		var params protocol.CompletionParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}
		if snap, ok := s.snapshot(params.TextDocument.URI); ok {
			if items := snap.Completion(params.Position); items != nil {
				list.Items = items
			}
		}
		return list, nil
	case protocol.MethodTextDocumentDefinition:
		var params protocol.DefinitionParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		snap, ok := s.snapshot(params.TextDocument.URI)
		if !ok {
			return nil, nil
		}
		loc, ok := snap.Definition(params.Position)
		if !ok {
			return nil, nil
		}
		return []protocol.Location{loc}, nil
	case protocol.MethodTextDocumentRename:
		var params protocol.RenameParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		snap, ok := s.snapshot(params.TextDocument.URI)
		if !ok {
			return nil, nil
		}
		edit, err := snap.Rename(params.Position, params.NewName)
		if errors.Is(err, document.ErrNoSymbol) {
			return nil, nil
		}
		if err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
		return edit, nil
	case protocol.MethodTextDocumentDocumentSymbol:
		var params protocol.DocumentSymbolParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		snap, ok := s.snapshot(params.TextDocument.URI)
		if !ok {
			return []protocol.DocumentSymbol{}, nil
		}
		symbols := snap.DocumentSymbols()
		if symbols == nil {
			symbols = []protocol.DocumentSymbol{}
		}
		return symbols, nil
	case protocol.MethodSemanticTokensFull:
		var params protocol.SemanticTokensParams
		if err := decode(req, &params); err != nil {
			return nil, err
		}
		snap, ok := s.snapshot(params.TextDocument.URI)
		if !ok {
			return &protocol.SemanticTokens{Data: []uint32{}}, nil
		}
		return snap.SemanticTokens(), nil
	}

	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
}

func (s *Server) initialize() *protocol.InitializeResult {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider:     &protocol.CompletionOptions{},
			HoverProvider:          true,
			DefinitionProvider:     true,
			RenameProvider:         true,
			DocumentSymbolProvider: true,
			SemanticTokensProvider: &semanticTokensOptions{
				Legend: document.TokenLegend,
				Full:   true,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: s.opts.Version,
		},
	}
}

// update rebuilds a document and publishes its diagnostics. A stale version
// is ignored.
func (s *Server) update(ctx context.Context, conn *jsonrpc2.Conn, uri protocol.DocumentURI, version int32, text string) error {
	snap, err := s.open(uri).Update(ctx, version, []byte(text))
	if err != nil {
		return err
	}
	if snap.Version != version {
		return nil
	}
	return s.publish(ctx, conn, uri, version, snap.ProtocolDiagnostics())
}

func (s *Server) publish(ctx context.Context, conn *jsonrpc2.Conn, uri protocol.DocumentURI, version int32, diagnostics []protocol.Diagnostic) error {
	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}
	if v, err := safecast.Conv[uint32](version); err == nil {
		params.Version = v
	}
	s.logger.Debug("publishing diagnostics",
		zap.String("uri", string(uri)),
		zap.Int32("version", version),
		zap.Int("count", len(diagnostics)))
	return conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, params)
}

func decode(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
