package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-forms/internal/pipeline"
)

// Tool names
const (
	toolFillForm      = "pdf_fill_form"
	toolCreateField   = "pdf_create_field"
	toolGetFormFields = "pdf_get_form_fields"
	toolExtractText   = "pdf_extract_text"
)

// Tool arguments shared by the batch tools
const (
	argItems           = "items"
	argPath            = "path"
	argData            = "data"
	argConfiguration   = "configurationJson"
	argPropertyName    = "dataPropertyName"
	argPropertyNameOut = "dataPropertyNameOut"
	argMaxPDFSize      = "maxPdfSize"
	argContinueOnFail  = "continueOnFail"
	argOutputDirectory = "outputDirectory"
)

func batchTool(name, description string) mcp.Tool {
	return mcp.NewTool(
		name,
		mcp.WithDescription(description),
		mcp.WithArray(argItems,
			mcp.Description(`Batch items: {"json":{...},"binary":{"<property>":{"data":"<base64>"|"path":"<file>",`+
				`"mimeType":"application/pdf","fileName":"...","size":N}},"parameters":{...}}`),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithString(argPath,
			mcp.Description("Shortcut for a single-item batch: path of one PDF relative to the work directory"),
		),
		mcp.WithString(argConfiguration,
			mcp.Description("Operation configuration as a JSON array, applied to every item without its own"),
		),
		mcp.WithString(argPropertyName,
			mcp.Description("Binary property holding the input PDF (default \"data\")"),
		),
		mcp.WithString(argPropertyNameOut,
			mcp.Description("Binary property receiving the output PDF (default \"data\")"),
		),
		mcp.WithNumber(argMaxPDFSize,
			mcp.Description("Maximum input size in megabytes (default 10)"),
		),
		mcp.WithBoolean(argContinueOnFail,
			mcp.Description("Report failed items in the output instead of aborting the batch"),
		),
		mcp.WithString(argOutputDirectory,
			mcp.Description("Write output PDFs to this directory, relative to the work directory, instead of returning base64"),
		),
	)
}

func (s *Server) handleFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runBatch(ctx, request, pipeline.OperationFill)
}

func (s *Server) handleCreateField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runBatch(ctx, request, pipeline.OperationCreateField)
}

func (s *Server) handleGetFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.runBatch(ctx, request, pipeline.OperationGetFormFields)
}

// batchResponse is the JSON text returned by the batch tools
type batchResponse struct {
	Items []pipeline.Result `json:"items"`
}

// errorResponse is the JSON text of a failed batch
type errorResponse struct {
	Error   string              `json:"error"`
	Details *pdferrors.PDFError `json:"details,omitempty"`
}

func (s *Server) runBatch(ctx context.Context, request mcp.CallToolRequest, op pipeline.Operation) (*mcp.CallToolResult, error) {
	items, err := s.items(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	defaults, err := s.defaults(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runner := pipeline.NewRunner(s.loader,
		pipeline.WithContinueOnFail(request.GetBool(argContinueOnFail, s.config.ContinueOnFail)),
		pipeline.WithLogger(s.logger.With(zap.String("tool", request.Params.Name))),
	)

	host := pipeline.NewStaticHost(items, defaults, s.paths.ReadFile)
	results, err := runner.Run(ctx, host, op, items)
	if err != nil {
		return errorResult(err), nil
	}

	if dir := request.GetString(argOutputDirectory, ""); dir != "" {
		if err := s.writeOutputs(dir, host, results); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return jsonResult(batchResponse{Items: results})
}

// items decodes the batch. File-backed payloads without a declared size or
// name get them from the file.
func (s *Server) items(request mcp.CallToolRequest) ([]pipeline.Item, error) {
	args := request.GetArguments()
	property := request.GetString(argPropertyName, s.config.DataPropertyName)

	raw, hasItems := args[argItems]
	if !hasItems || raw == nil {
		path := request.GetString(argPath, "")
		if path == "" {
			return nil, fmt.Errorf("either %q or %q is required", argItems, argPath)
		}
		raw = []any{map[string]any{
			"binary": map[string]any{property: map[string]any{"path": path}},
		}}
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", argItems, err)
	}
	var items []pipeline.Item
	if err := json.Unmarshal(encoded, &items); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", argItems, err)
	}

	for i := range items {
		if items[i].JSON == nil {
			items[i].JSON = map[string]any{}
		}
		for _, b := range items[i].Binary {
			if err := s.completeBinary(b); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return items, nil
}

func (s *Server) completeBinary(b *pipeline.Binary) error {
	if b == nil {
		return nil
	}
	if b.Path != "" && b.Data == nil {
		resolved, err := s.paths.Resolve(b.Path)
		if err != nil {
			return err
		}
		b.Path = resolved
		if b.FileName == "" {
			b.FileName = filepath.Base(resolved)
		}
		if b.MimeType == "" && filepath.Ext(resolved) == ".pdf" {
			b.MimeType = pipeline.PDFMimeType
		}
	}
	if b.Size == 0 {
		b.Size = int64(len(b.Data))
	}
	return nil
}

// defaults collects batch-wide parameters from the tool arguments
func (s *Server) defaults(request mcp.CallToolRequest) (map[string]any, error) {
	args := request.GetArguments()
	defaults := map[string]any{
		pipeline.ParamDataPropertyName:    request.GetString(argPropertyName, s.config.DataPropertyName),
		pipeline.ParamDataPropertyNameOut: request.GetString(argPropertyNameOut, s.config.DataPropertyNameOut),
		pipeline.ParamMaxPDFSize:          s.config.MaxPDFSizeMB,
	}
	if v, ok := args[argMaxPDFSize]; ok && v != nil {
		defaults[pipeline.ParamMaxPDFSize] = v
	}

	switch v := args[argConfiguration].(type) {
	case nil:
	case string:
		defaults[pipeline.ParamConfigurationJSON] = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", argConfiguration, err)
		}
		defaults[pipeline.ParamConfigurationJSON] = string(encoded)
	}
	return defaults, nil
}

// writeOutputs stores each item's output PDF under dir and drops its inline
// bytes. Input binaries carried through to the result stay inline.
func (s *Server) writeOutputs(dir string, host pipeline.Host, results []pipeline.Result) error {
	for i, r := range results {
		property := pipeline.DefaultPropertyName
		if v, ok := host.Parameter(pipeline.ParamDataPropertyNameOut, r.PairedItem); ok {
			if name, ok := v.(string); ok && name != "" {
				property = name
			}
		}
		b := r.Binary[property]
		if b == nil || b.Data == nil {
			continue
		}
		path, err := s.paths.WriteFile(filepath.Join(dir, fmt.Sprintf("%d-%s", i, b.FileName)), b.Data)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		r.Binary[property] = &pipeline.Binary{Path: path, MimeType: b.MimeType, FileName: b.FileName, Size: b.Size}
	}
	return nil
}

// pageText is one entry of the extract-text response
type pageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

func (s *Server) handleExtractText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var data []byte
	if path := request.GetString(argPath, ""); path != "" {
		var err error
		if data, err = s.paths.ReadFile(ctx, path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		encoded, err := request.RequireString(argData)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("either %q or %q is required", argPath, argData)), nil
		}
		if data, err = base64.StdEncoding.DecodeString(encoded); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid base64 data: %v", err)), nil
		}
	}

	if limit := pipeline.MaxSizeBytes(s.config.MaxPDFSizeMB); int64(len(data)) > limit {
		return mcp.NewToolResultError(fmt.Sprintf("PDF exceeds maximum allowed size of %d bytes", limit)), nil
	}

	pages, err := document.ExtractText(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]pageText, len(pages))
	for i, p := range pages {
		out[i] = pageText{Page: p.Page, Text: p.Text}
	}
	return jsonResult(map[string]any{"pages": out})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	resp := errorResponse{Error: err.Error()}
	if pdfErr, ok := pdferrors.AsPDFError(err); ok {
		resp.Details = pdfErr
	}
	encoded, mErr := json.Marshal(resp)
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(encoded))
}
