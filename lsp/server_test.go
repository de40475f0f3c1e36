package lsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/cst"
	_ "github.com/arjunmahishi/tsls/lang"
	"github.com/arjunmahishi/tsls/langdef"
	"github.com/arjunmahishi/tsls/span"
)

const testURI = protocol.DocumentURI("file:///src/main.go")

const mainGo = `package main

const limit = 10

var total int

type Point struct{ X int }

func add(a int, b int) int {
	sum := a + b
	return sum
}

func main() {
	x := add(1, limit)
	total = x
}
`

type testClient struct {
	conn  *jsonrpc2.Conn
	diags chan protocol.PublishDiagnosticsParams
	done  chan error
}

func startServer(t *testing.T) *testClient {
	t.Helper()

	language := cst.Get("go")
	require.NotNil(t, language)
	def, err := langdef.Parse([]byte(language.Rules()))
	require.NoError(t, err)

	serverSide, clientSide := net.Pipe()
	srv := NewServer(language, def, Options{Version: "test"})

	c := &testClient{
		diags: make(chan protocol.PublishDiagnosticsParams, 16),
		done:  make(chan error, 1),
	}
	go func() { c.done <- srv.Serve(context.Background(), serverSide) }()

	handler := jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if req.Method == protocol.MethodTextDocumentPublishDiagnostics {
			var params protocol.PublishDiagnosticsParams
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				return nil, err
			}
			c.diags <- params
		}
		return nil, nil
	})
	c.conn = jsonrpc2.NewConn(context.Background(),
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), handler)
	t.Cleanup(func() { _ = c.conn.Close() })
	return c
}

func (c *testClient) call(t *testing.T, method string, params, result interface{}) {
	t.Helper()
	require.NoError(t, c.conn.Call(context.Background(), method, params, result))
}

func (c *testClient) notify(t *testing.T, method string, params interface{}) {
	t.Helper()
	require.NoError(t, c.conn.Notify(context.Background(), method, params))
}

func (c *testClient) nextDiagnostics(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-c.diags:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("no diagnostics published")
		return protocol.PublishDiagnosticsParams{}
	}
}

func (c *testClient) open(t *testing.T, text string) {
	t.Helper()
	c.notify(t, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "go", Version: 1, Text: text},
	})
}

func at(pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Position:     pos,
	}
}

func TestInitialize(t *testing.T) {
	c := startServer(t)

	var res protocol.InitializeResult
	c.call(t, protocol.MethodInitialize, &protocol.InitializeParams{}, &res)
	require.NotNil(t, res.ServerInfo)
	require.Equal(t, "tsls", res.ServerInfo.Name)
	require.Equal(t, "test", res.ServerInfo.Version)
	require.Equal(t, true, res.Capabilities.HoverProvider)
	require.Equal(t, true, res.Capabilities.RenameProvider)
	require.NotNil(t, res.Capabilities.CompletionProvider)

	provider, ok := res.Capabilities.SemanticTokensProvider.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, true, provider["full"])
	legend, ok := provider["legend"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, []interface{}{"namespace", "type", "variable", "function"}, legend["tokenTypes"])
	require.Equal(t, []interface{}{"declaration", "readonly"}, legend["tokenModifiers"])
}

func TestDocumentLifecycle(t *testing.T) {
	c := startServer(t)
	c.call(t, protocol.MethodInitialize, &protocol.InitializeParams{}, nil)
	c.notify(t, protocol.MethodInitialized, &protocol.InitializedParams{})

	c.open(t, mainGo)
	d := c.nextDiagnostics(t)
	require.Equal(t, testURI, d.URI)
	require.Equal(t, uint32(1), d.Version)
	require.Empty(t, d.Diagnostics)

	var hover protocol.Hover
	c.call(t, protocol.MethodTextDocumentHover, &protocol.HoverParams{TextDocumentPositionParams: at(span.Pos(14, 15))}, &hover)
	require.Equal(t, "```\nconstant limit\n```\ndeclared at 3:7", hover.Contents.Value)

	var list protocol.CompletionList
	c.call(t, protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{TextDocumentPositionParams: at(span.Pos(10, 8))}, &list)
	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	require.Contains(t, labels, "sum")
	require.NotContains(t, labels, "x")

	var locs []protocol.Location
	c.call(t, protocol.MethodTextDocumentDefinition, &protocol.DefinitionParams{TextDocumentPositionParams: at(span.Pos(14, 7))}, &locs)
	require.Len(t, locs, 1)
	require.Equal(t, span.Range(8, 0, 11, 1), locs[0].Range)

	var edit protocol.WorkspaceEdit
	c.call(t, protocol.MethodTextDocumentRename, &protocol.RenameParams{
		TextDocumentPositionParams: at(span.Pos(15, 2)),
		NewName:                    "grandTotal",
	}, &edit)
	require.Equal(t, []protocol.TextEdit{
		{Range: span.Range(4, 4, 4, 9), NewText: "grandTotal"},
		{Range: span.Range(15, 1, 15, 6), NewText: "grandTotal"},
	}, edit.Changes[testURI])

	var symbols []protocol.DocumentSymbol
	c.call(t, protocol.MethodTextDocumentDocumentSymbol, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}, &symbols)
	var names []string
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"limit", "total", "Point", "add", "main"}, names)

	var tokens protocol.SemanticTokens
	c.call(t, protocol.MethodSemanticTokensFull, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}, &tokens)
	require.NotEmpty(t, tokens.Data)
	require.Equal(t, []uint32{0, 8, 4, 0, 0}, tokens.Data[:5])

	c.notify(t, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "package main\n\nfunc main() {\n\tx :=\n}\n"}},
	})
	d = c.nextDiagnostics(t)
	require.Equal(t, uint32(2), d.Version)
	require.NotEmpty(t, d.Diagnostics)
	require.Equal(t, protocol.DiagnosticSeverityError, d.Diagnostics[0].Severity)
	require.Equal(t, "tsls", d.Diagnostics[0].Source)

	c.notify(t, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	d = c.nextDiagnostics(t)
	require.Empty(t, d.Diagnostics)

	var missing *protocol.Hover
	c.call(t, protocol.MethodTextDocumentHover, &protocol.HoverParams{TextDocumentPositionParams: at(span.Pos(14, 15))}, &missing)
	require.Nil(t, missing)
}

func TestRenameWithoutSymbol(t *testing.T) {
	c := startServer(t)
	c.open(t, mainGo)
	c.nextDiagnostics(t)

	var edit *protocol.WorkspaceEdit
	c.call(t, protocol.MethodTextDocumentRename, &protocol.RenameParams{
		TextDocumentPositionParams: at(span.Pos(1, 0)),
		NewName:                    "other",
	}, &edit)
	require.Nil(t, edit)

	err := c.conn.Call(context.Background(), protocol.MethodTextDocumentRename, &protocol.RenameParams{
		TextDocumentPositionParams: at(span.Pos(15, 2)),
		NewName:                    "",
	}, nil)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(jsonrpc2.CodeInvalidParams), rpcErr.Code)
}

func TestUnknownMethod(t *testing.T) {
	c := startServer(t)

	err := c.conn.Call(context.Background(), "textDocument/formatting", map[string]string{}, nil)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
}

func TestShutdownAndExit(t *testing.T) {
	c := startServer(t)
	c.call(t, protocol.MethodInitialize, &protocol.InitializeParams{}, nil)
	c.call(t, protocol.MethodShutdown, nil, nil)

	err := c.conn.Call(context.Background(), protocol.MethodTextDocumentHover,
		&protocol.HoverParams{TextDocumentPositionParams: at(span.Pos(0, 0))}, nil)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(jsonrpc2.CodeInvalidRequest), rpcErr.Code)

	c.notify(t, protocol.MethodExit, nil)
	select {
	case err := <-c.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	c := startServer(t)
	c.notify(t, protocol.MethodExit, nil)
	select {
	case err := <-c.done:
		require.ErrorIs(t, err, ErrNoShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSemanticTokensForUnknownDocument(t *testing.T) {
	c := startServer(t)

	var tokens protocol.SemanticTokens
	c.call(t, protocol.MethodSemanticTokensFull, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///src/other.go"},
	}, &tokens)
	require.Empty(t, tokens.Data)
}
