package engine

import (
	"log/slog"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/sheet"
	"github.com/plenix/tikrana/internal/validate"
)

// processContext prefixes uncategorized failures.
const processContext = "Failed to process Excel file"

// Engine runs the extraction and generation pipeline.
//
// Thread-safety: an Engine is immutable after New and safe for concurrent
// use; every call works on its own input bytes.
type Engine struct {
	logger *slog.Logger
	runIDs RunIDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for stage progress. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRunIDs sets the run identifier generator. Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = gen
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is the input of one Process call.
type Request struct {
	Data      []byte
	Filename  string
	Source    config.SourceConfig
	Result    config.ResultConfig
	UserInput map[string]string
}

// Result is the outcome of one Process call. On success the texts, archive
// name and extracted data are set; on failure Error is set and nothing else
// but Warnings and RunID is.
type Result struct {
	Success     bool             `json:"success"`
	RunID       string           `json:"runId"`
	HeaderText  string           `json:"headerText,omitempty"`
	DetailText  string           `json:"detailText,omitempty"`
	ArchiveName string           `json:"archiveName,omitempty"`
	Extracted   *ExtractedData   `json:"extracted,omitempty"`
	Error       *failure.Error   `json:"error,omitempty"`
	Stage       Stage            `json:"stage,omitempty"`
	Warnings    []validate.Issue `json:"warnings"`
}

// Extract reads the header and detail data of source from a workbook,
// without file validation or rendering. Errors are *failure.Error values.
func (e *Engine) Extract(data []byte, source config.SourceConfig) (out *ExtractedData, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during extraction", "source", source.Name, "panic", r)
			out, err = nil, failure.Wrap(recovered(r), processContext)
		}
	}()

	wb, openErr := sheet.Open(data)
	if openErr != nil {
		return nil, failure.Wrap(openErr, processContext)
	}
	extracted, extractErr := extract(wb, source)
	if extractErr != nil {
		return nil, failure.Wrap(extractErr, processContext)
	}
	return extracted, nil
}

// Process runs the full pipeline for one workbook. It never panics and never
// returns nil.
func (e *Engine) Process(req Request) (res *Result) {
	log := e.logger.With("source", req.Source.Name, "file", req.Filename)
	res = &Result{Warnings: []validate.Issue{}}

	fail := func(stage Stage, err *failure.Error) *Result {
		log.Debug("processing failed", "stage", stage, "category", err.Category, "error", err.Message)
		res.Success = false
		res.Stage = stage
		res.Error = err
		res.HeaderText, res.DetailText, res.ArchiveName, res.Extracted = "", "", "", nil
		return res
	}

	stage := StageValidate
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during processing", "stage", stage, "panic", r)
			fail(stage, failure.Wrap(recovered(r), processContext))
		}
	}()

	res.RunID = e.runIDs.Generate()
	log = log.With("run", res.RunID)

	checked := validate.Workbook(req.Data, req.Filename, req.Source)
	res.Warnings = append(res.Warnings, checked.Warnings...)
	if !checked.Valid {
		return fail(StageValidate, checked.Err())
	}
	log.Debug("workbook validated", "warnings", len(checked.Warnings), "sheets", checked.Workbook.SheetCount())

	stage = StageExtractHeader
	extracted, err := extract(checked.Workbook, req.Source)
	if err != nil {
		return fail(StageOf(err), failure.Wrap(err, processContext))
	}
	log.Debug("data extracted", "header_fields", len(extracted.Header), "detail_rows", len(extracted.Detail))

	stage = StageComplete
	header := MergeUserInput(extracted.Header, req.UserInput)
	normalizeDates(header, req.Result.Header.Properties)

	if missing := MissingFields(header, req.Result.Header.Properties); len(missing) > 0 {
		return fail(StageComplete, failure.Missing(missing))
	}

	stage = StageRender
	res.HeaderText = Render(req.Result.Header, req.Result.Separator, []map[string]string{header})
	res.DetailText = Render(req.Result.Detail, req.Result.Separator,
		detailRecords(extracted.Detail, req.Result.Detail.Properties))
	res.ArchiveName = ArchiveName(req.Result.BaseName, header, req.Source.Name)
	res.Extracted = &ExtractedData{Header: header, Detail: extracted.Detail}
	res.Success = true

	log.Debug("output rendered", "archive", res.ArchiveName, "detail_lines", len(extracted.Detail))
	return res
}
