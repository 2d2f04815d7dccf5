package lsp

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/conduit-lang/derivekit/internal/tooling"
)

// recordingClient captures the notifications the server sends
type recordingClient struct {
	protocol.Client

	mu          sync.Mutex
	diagnostics []*protocol.PublishDiagnosticsParams
	tokens      []protocol.ProgressToken
	progress    []*protocol.ProgressParams
}

func (c *recordingClient) PublishDiagnostics(_ context.Context, params *protocol.PublishDiagnosticsParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, params)
	return nil
}

func (c *recordingClient) WorkDoneProgressCreate(_ context.Context, params *protocol.WorkDoneProgressCreateParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = append(c.tokens, params.Token)
	return nil
}

func (c *recordingClient) Progress(_ context.Context, params *protocol.ProgressParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = append(c.progress, params)
	return nil
}

func newTestServer() (*Server, *recordingClient) {
	client := &recordingClient{}
	s := NewServer(nil, zap.NewNop())
	s.client = client
	return s, client
}

// call runs one request through the handler and returns what it replied
func call(t *testing.T, s *Server, method string, params interface{}) (interface{}, error) {
	t.Helper()

	req, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(1), method, params)
	require.NoError(t, err)

	var result interface{}
	var replyErr error
	reply := func(_ context.Context, r interface{}, e error) error {
		result, replyErr = r, e
		return nil
	}

	require.NoError(t, s.handler()(context.Background(), reply, req))
	return result, replyErr
}

func TestServerInitialization(t *testing.T) {
	server := NewServer(nil, nil)
	require.NotNil(t, server)

	assert.NotNil(t, server.api)
	assert.NotNil(t, server.driver)
	assert.NotNil(t, server.logger)

	caps := server.capabilities
	assert.NotNil(t, caps.CompletionProvider)
	assert.NotNil(t, caps.DefinitionProvider)
	assert.Equal(t, true, caps.HoverProvider)
	assert.Equal(t, true, caps.ReferencesProvider)
	assert.Equal(t, true, caps.DocumentSymbolProvider)
	assert.Equal(t, true, caps.WorkspaceSymbolProvider)
	require.NotNil(t, caps.ExecuteCommandProvider)
	assert.ElementsMatch(t, []string{CommandShowExpansion, CommandExpandWorkspace}, caps.ExecuteCommandProvider.Commands)
}

func TestHandleInitialize(t *testing.T) {
	s, _ := newTestServer()

	result, err := call(t, s, protocol.MethodInitialize, &protocol.InitializeParams{
		WorkspaceFolders: []protocol.WorkspaceFolder{{URI: "file:///tmp/workspace", Name: "workspace"}},
	})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, "derivekit-lsp", init.ServerInfo.Name)
	assert.Equal(t, "/tmp/workspace", s.workspaceRoot)
}

func TestHandleInitializeRootURI(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, protocol.MethodInitialize, &protocol.InitializeParams{RootURI: "file:///tmp/root"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/root", s.workspaceRoot)
}

func TestHandleInitializeInvalidParams(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, protocol.MethodInitialize, "not an object")
	require.Error(t, err)

	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, jsonrpc2.InvalidParams, rpcErr.Code)
}

func TestUnknownMethod(t *testing.T) {
	s, _ := newTestServer()

	_, err := call(t, s, "textDocument/formatting", map[string]string{})
	assert.ErrorIs(t, err, jsonrpc2.ErrMethodNotFound)
}

func TestServeOverPipe(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	s := NewServer(nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(context.Background(), serverSide)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(clientSide))
	conn.Go(ctx, jsonrpc2.MethodNotFoundHandler)
	defer conn.Close()

	var result protocol.InitializeResult
	_, err := conn.Call(ctx, protocol.MethodInitialize, &protocol.InitializeParams{RootURI: "file:///tmp/ws"}, &result)
	require.NoError(t, err)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "derivekit-lsp", result.ServerInfo.Name)

	require.NoError(t, conn.Notify(ctx, protocol.MethodExit, nil))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after exit")
	}
}

func TestConvertSeverity(t *testing.T) {
	tests := []struct {
		name     string
		input    tooling.DiagnosticSeverity
		expected protocol.DiagnosticSeverity
	}{
		{"Error severity", tooling.DiagnosticSeverityError, protocol.DiagnosticSeverityError},
		{"Warning severity", tooling.DiagnosticSeverityWarning, protocol.DiagnosticSeverityWarning},
		{"Info severity", tooling.DiagnosticSeverityInfo, protocol.DiagnosticSeverityInformation},
		{"Hint severity", tooling.DiagnosticSeverityHint, protocol.DiagnosticSeverityHint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertSeverity(tt.input))
		})
	}
}
