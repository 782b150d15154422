package pipeline

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// State is a step of the per-item state machine
type State string

const (
	StatePending    State = "pending"
	StateValidating State = "validating"
	StateFetching   State = "fetching"
	StateParsing    State = "parsing"
	StateExecuting  State = "executing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Runner processes batches one item at a time, in input order
type Runner struct {
	loader         document.Loader
	continueOnFail bool
	logger         *zap.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithContinueOnFail selects isolate mode: failed items are reported in
// the output instead of aborting the batch.
func WithContinueOnFail(enabled bool) Option {
	return func(r *Runner) {
		r.continueOnFail = enabled
	}
}

// WithLogger sets the logger used for state transitions
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner that loads documents with loader
func NewRunner(loader document.Loader, opts ...Option) *Runner {
	r := &Runner{
		loader: loader,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies op to every item. In isolate mode it always returns one
// result per item; in abort mode the first failure is returned as a
// *errors.PDFError naming the failing item's index.
func (r *Runner) Run(ctx context.Context, host Host, op Operation, items []Item) ([]Result, error) {
	runID := uuid.NewString()
	log := r.logger.With(
		zap.String("run_id", runID),
		zap.Stringer("operation", op),
		zap.Int("items", len(items)),
		zap.Bool("continue_on_fail", r.continueOnFail),
	)
	log.Info("batch started")

	results := make([]Result, 0, len(items))
	failures := 0
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		itemLog := log.With(zap.Int("item_index", i))
		result, err := r.processItem(ctx, host, op, i, item, itemLog)
		if err != nil {
			failures++
			itemLog.Debug("item state", zap.String("state", string(StateFailed)), zap.Error(err))

			if !r.continueOnFail {
				pdfErr := pdferrors.AttachItemIndex(err, i)
				log.Error("batch aborted", zap.Int("item_index", i), zap.Error(pdfErr))
				return nil, pdfErr
			}
			results = append(results, isolated(item, i, err))
			continue
		}

		itemLog.Debug("item state", zap.String("state", string(StateSucceeded)))
		results = append(results, result)
	}

	log.Info("batch finished", zap.Int("failed", failures), zap.Int("succeeded", len(items)-failures))
	return results, nil
}

// isolated turns a failure into an output record carrying the original json
func isolated(item Item, index int, err error) Result {
	json := cloneJSON(item.JSON)
	json["error"] = err.Error()
	return Result{JSON: json, PairedItem: index}
}

func (r *Runner) processItem(ctx context.Context, host Host, op Operation, index int, item Item, log *zap.Logger) (Result, error) {
	transition := func(s State) {
		log.Debug("item state", zap.String("state", string(s)))
	}
	transition(StatePending)

	property := stringParam(host, ParamDataPropertyName, index, DefaultPropertyName)
	var maxSizeMB float64 = DefaultMaxPDFSizeMB
	if raw, ok := host.Parameter(ParamMaxPDFSize, index); ok {
		maxSizeMB = ParseMaxSizeMB(raw)
	}

	transition(StateValidating)
	input := item.Binary[property]
	if err := ValidateDeclared(property, input, maxSizeMB); err != nil {
		return Result{}, err
	}

	transition(StateFetching)
	data, err := host.FetchBinary(ctx, index, property)
	if err != nil {
		if _, ok := pdferrors.AsPDFError(err); ok {
			return Result{}, err
		}
		return Result{}, pdferrors.WrapError(pdferrors.ErrorTypeFetchFailed,
			fmt.Sprintf("Failed to read binary property %q", property), err).WithProperty(property)
	}
	if err := ValidateFetched(property, data, maxSizeMB); err != nil {
		return Result{}, err
	}

	transition(StateParsing)
	doc, err := r.loader.Load(data)
	if err != nil {
		return Result{}, pdferrors.WrapError(pdferrors.ErrorTypeLoadFailed,
			fmt.Sprintf("Failed to load PDF from binary property %q", property), err).WithProperty(property)
	}

	switch op {
	case OperationFill:
		return r.fill(host, index, item, input, doc, transition)
	case OperationCreateField:
		return r.createField(host, index, item, input, doc, transition)
	case OperationGetFormFields:
		return r.getFormFields(index, doc, transition)
	default:
		return Result{}, pdferrors.Newf(pdferrors.ErrorTypeOperationFailed, "unsupported operation %s", op)
	}
}

func (r *Runner) fill(host Host, index int, item Item, input *Binary, doc document.Document, transition func(State)) (Result, error) {
	descriptors, err := ParseFillConfig(stringParam(host, ParamConfigurationJSON, index, ""))
	if err != nil {
		return Result{}, err
	}

	form, err := doc.Form()
	if err != nil {
		return Result{}, pdferrors.WrapError(pdferrors.ErrorTypeLoadFailed, "Failed to read form", err)
	}

	transition(StateExecuting)
	for _, d := range descriptors {
		if out := ApplyFill(form, d); !out.Success {
			return Result{}, pdferrors.Newf(out.Reason, "Error in field %s: %s", d.Key, out.ErrorMessage).WithField(d.Key)
		}
	}

	return r.save(host, index, item, input, doc)
}

func (r *Runner) createField(host Host, index int, item Item, input *Binary, doc document.Document, transition func(State)) (Result, error) {
	descriptors, err := ParseCreateFieldConfig(stringParam(host, ParamConfigurationJSON, index, ""))
	if err != nil {
		return Result{}, err
	}

	transition(StateExecuting)
	for _, d := range descriptors {
		if out := ApplyCreateField(doc, d); !out.Success {
			return Result{}, pdferrors.New(out.Reason, out.ErrorMessage).WithPage(d.Page)
		}
	}

	return r.save(host, index, item, input, doc)
}

func (r *Runner) getFormFields(index int, doc document.Document, transition func(State)) (Result, error) {
	form, err := doc.Form()
	if err != nil {
		return Result{}, pdferrors.WrapError(pdferrors.ErrorTypeLoadFailed, "Failed to read form", err)
	}

	transition(StateExecuting)
	return Result{JSON: ListFields(form).JSON(), PairedItem: index}, nil
}

// save serializes the document into the output property, keeping the
// item's other binaries.
func (r *Runner) save(host Host, index int, item Item, input *Binary, doc document.Document) (Result, error) {
	data, err := doc.Save()
	if err != nil {
		return Result{}, pdferrors.WrapError(pdferrors.ErrorTypeSaveFailed, "Failed to save PDF", err)
	}

	out := stringParam(host, ParamDataPropertyNameOut, index, DefaultPropertyName)
	fileName := input.FileName
	if fileName == "" {
		fileName = out + ".pdf"
	}

	binary := make(map[string]*Binary, len(item.Binary)+1)
	maps.Copy(binary, item.Binary)
	binary[out] = &Binary{
		Data:     data,
		MimeType: PDFMimeType,
		FileName: fileName,
		Size:     int64(len(data)),
	}

	return Result{JSON: cloneJSON(item.JSON), Binary: binary, PairedItem: index}, nil
}

func stringParam(host Host, name string, index int, fallback string) string {
	raw, ok := host.Parameter(name, index)
	if !ok {
		return fallback
	}
	s, ok := raw.(string)
	if !ok || s == "" && fallback != "" {
		return fallback
	}
	return s
}

func cloneJSON(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+1)
	maps.Copy(dst, src)
	return dst
}
