package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/conduit-lang/derivekit/internal/compiler/driver"
	"github.com/conduit-lang/derivekit/internal/tooling"
)

// handleTextDocumentCompletion handles completion requests
func (s *Server) handleTextDocumentCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse completion params")
	}

	completions, err := s.api.GetCompletions(string(params.TextDocument.URI), convertPosition(params.Position))
	if err != nil {
		s.logger.Warn("error getting completions", zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get completions")
	}

	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, c := range completions {
		item := protocol.CompletionItem{
			Label:      c.Label,
			Kind:       convertCompletionKind(c.Kind),
			Detail:     c.Detail,
			InsertText: c.InsertText,
			SortText:   c.SortText,
		}
		if c.Documentation != "" {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: c.Documentation,
			}
		}

		if strings.Contains(c.InsertText, "$0") || strings.Contains(c.InsertText, "${") {
			item.InsertTextFormat = protocol.InsertTextFormatSnippet
		} else {
			item.InsertTextFormat = protocol.InsertTextFormatPlainText
		}
		items = append(items, item)
	}

	result := protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}

	return reply(ctx, result, nil)
}

// handleTextDocumentHover handles hover requests
func (s *Server) handleTextDocumentHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse hover params")
	}

	hover, err := s.api.GetHover(string(params.TextDocument.URI), convertPosition(params.Position))
	if err != nil {
		s.logger.Warn("error getting hover", zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get hover information")
	}

	if hover == nil {
		return reply(ctx, nil, nil)
	}

	rng := convertRange(hover.Range)
	result := protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: hover.Contents,
		},
		Range: &rng,
	}

	return reply(ctx, result, nil)
}

// handleTextDocumentDefinition handles go-to-definition requests
func (s *Server) handleTextDocumentDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse definition params")
	}

	location, err := s.api.GetDefinition(string(params.TextDocument.URI), convertPosition(params.Position))
	if err != nil {
		s.logger.Warn("error getting definition", zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get definition")
	}

	if location == nil {
		return reply(ctx, nil, nil)
	}

	return reply(ctx, convertLocation(*location), nil)
}

// handleTextDocumentReferences handles find references requests
func (s *Server) handleTextDocumentReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse references params")
	}

	references, err := s.api.GetReferences(string(params.TextDocument.URI), convertPosition(params.Position))
	if err != nil {
		s.logger.Warn("error getting references", zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get references")
	}

	locations := make([]protocol.Location, 0, len(references))
	for _, ref := range references {
		locations = append(locations, convertLocation(ref))
	}

	return reply(ctx, locations, nil)
}

// handleTextDocumentDocumentSymbol handles document symbol requests
func (s *Server) handleTextDocumentDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse document symbol params")
	}

	symbols, err := s.api.GetDocumentSymbols(string(params.TextDocument.URI))
	if err != nil {
		s.logger.Warn("error getting document symbols", zap.Error(err))
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "Failed to get document symbols")
	}

	lspSymbols := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		rng := convertRange(sym.Range)
		lspSymbols = append(lspSymbols, protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           convertSymbolKind(sym.Kind),
			Detail:         sym.Detail,
			Range:          rng,
			SelectionRange: rng,
		})
	}

	return reply(ctx, lspSymbols, nil)
}

// handleWorkspaceSymbol handles workspace symbol search requests
func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse workspace symbol params")
	}

	indexed := s.api.GetWorkspaceSymbols(params.Query)

	symbols := make([]protocol.SymbolInformation, 0, len(indexed))
	for _, sym := range indexed {
		symbols = append(symbols, protocol.SymbolInformation{
			Name:          sym.Name,
			Kind:          convertSymbolKind(sym.Kind),
			Location:      convertLocation(tooling.Location{URI: sym.URI, Range: sym.Range}),
			ContainerName: sym.ContainerName,
		})
	}

	return reply(ctx, symbols, nil)
}

// handleWorkspaceExecuteCommand runs one of the derivekit commands
func (s *Server) handleWorkspaceExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Failed to parse executeCommand params")
	}

	switch params.Command {
	case CommandShowExpansion:
		if len(params.Arguments) != 1 {
			return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Expected the document URI as the only argument")
		}
		docURI, ok := params.Arguments[0].(string)
		if !ok {
			return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "Document URI must be a string")
		}
		output, err := s.api.GetExpansion(docURI)
		if err != nil {
			return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, err.Error())
		}
		return reply(ctx, output, nil)

	case CommandExpandWorkspace:
		report, err := s.expandWorkspace(ctx)
		if err != nil {
			s.logger.Warn("workspace expansion failed", zap.Error(err))
			return s.replyWithError(ctx, reply, jsonrpc2.InternalError, err.Error())
		}
		return reply(ctx, report.Metrics, nil)

	default:
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, fmt.Sprintf("Unknown command %q", params.Command))
	}
}

// expandWorkspace expands every source under the workspace root and
// reports progress to the client
func (s *Server) expandWorkspace(ctx context.Context) (*driver.Report, error) {
	if s.workspaceRoot == "" {
		return nil, fmt.Errorf("no workspace root")
	}

	files, err := driver.Collect([]string{s.workspaceRoot}, s.driver.Options().Suffix, s.ignore)
	if err != nil {
		return nil, err
	}

	token := protocol.NewProgressToken(uuid.NewString())
	if err := s.client.WorkDoneProgressCreate(ctx, &protocol.WorkDoneProgressCreateParams{Token: *token}); err != nil {
		s.logger.Debug("client refused progress token", zap.Error(err))
		token = nil
	}

	s.progress(ctx, token, &protocol.WorkDoneProgressBegin{
		Kind:    protocol.WorkDoneProgressKindBegin,
		Title:   "Expanding derives",
		Message: fmt.Sprintf("%d files", len(files)),
	})

	report, err := s.driver.Run(ctx, files)
	if err != nil {
		s.progress(ctx, token, &protocol.WorkDoneProgressEnd{
			Kind:    protocol.WorkDoneProgressKindEnd,
			Message: "cancelled",
		})
		return nil, err
	}

	m := report.Metrics
	s.progress(ctx, token, &protocol.WorkDoneProgressEnd{
		Kind:    protocol.WorkDoneProgressKindEnd,
		Message: fmt.Sprintf("%d written, %d failed", m.FilesWritten, m.FilesFailed),
	})
	s.logger.Info("workspace expanded",
		zap.String("run", report.RunID),
		zap.Int("files", m.TotalFiles),
		zap.Int("failed", m.FilesFailed))

	return report, nil
}

func (s *Server) progress(ctx context.Context, token *protocol.ProgressToken, value interface{}) {
	if token == nil {
		return
	}
	if err := s.client.Progress(ctx, &protocol.ProgressParams{Token: *token, Value: value}); err != nil {
		s.logger.Debug("error reporting progress", zap.Error(err))
	}
}

// Helper functions to convert between tooling and LSP types

func convertPosition(p protocol.Position) tooling.Position {
	return tooling.Position{
		Line:      int(p.Line),
		Character: int(p.Character),
	}
}

func convertLocation(l tooling.Location) protocol.Location {
	return protocol.Location{
		URI:   protocol.DocumentURI(l.URI),
		Range: convertRange(l.Range),
	}
}

func convertCompletionKind(kind tooling.CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case tooling.CompletionKindDerive:
		return protocol.CompletionItemKindInterface
	case tooling.CompletionKindAttribute:
		return protocol.CompletionItemKindKeyword
	case tooling.CompletionKindKey:
		return protocol.CompletionItemKindProperty
	case tooling.CompletionKindValue:
		return protocol.CompletionItemKindValue
	case tooling.CompletionKindSnippet:
		return protocol.CompletionItemKindSnippet
	default:
		return protocol.CompletionItemKindText
	}
}

func convertSymbolKind(kind tooling.SymbolKind) protocol.SymbolKind {
	switch kind {
	case tooling.SymbolKindStruct:
		return protocol.SymbolKindStruct
	case tooling.SymbolKindEnum:
		return protocol.SymbolKindEnum
	case tooling.SymbolKindUnion:
		return protocol.SymbolKindStruct
	case tooling.SymbolKindField:
		return protocol.SymbolKindField
	case tooling.SymbolKindVariant:
		return protocol.SymbolKindEnumMember
	case tooling.SymbolKindDerive:
		return protocol.SymbolKindInterface
	default:
		return protocol.SymbolKindObject
	}
}
