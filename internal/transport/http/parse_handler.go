package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sheetnorm/internal/config"
	apierrors "sheetnorm/internal/errors"
	"sheetnorm/internal/middleware"
	"sheetnorm/internal/services"
	apiv1 "sheetnorm/pkg/contracts/api/v1"
	"sheetnorm/pkg/contracts/domain"
)

// ParseHandler handles workbook parsing HTTP requests with RFC 7807 compliance
type ParseHandler struct {
	service        ParseServiceInterface
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewParseHandler creates a new parse handler with RFC 7807 error handling
func NewParseHandler(service ParseServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ParseHandler {
	return &ParseHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "parse_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the parse routes
func (h *ParseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/workbooks", h.ListWorkbooks)
	r.Get("/config", h.GetConfig)
	r.Post("/", h.Parse)
	r.Post("/batch", h.ParseBatch)
	r.Post("/upload", h.Upload)

	return r
}

// Parse handles POST /api/parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if strings.TrimSpace(req.File) == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Workbook file path is required"))
		return
	}

	result, err := h.runParse(r, req.File, req.Config, req.Export || req.OutputDir != "", req.OutputDir)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, h.toResponse(result))
}

// Upload handles POST /api/parse/upload. The workbook arrives as the
// "workbook" part of a multipart form; an optional "config" part
// carries a YAML parse configuration and an optional "export" value
// requests a CSV export of the result.
func (h *ParseHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile("workbook")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("workbook", "A workbook file part is required"))
		return
	}
	defer file.Close()

	var override *domain.ParseConfig
	if raw := r.FormValue("config"); raw != "" {
		override, err = config.ParseConfigFromYAML([]byte(raw))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ParseConfigError(err))
			return
		}
	}

	path, err := h.service.SaveUpload(r.Context(), file, header.Filename)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	export := r.FormValue("export") == "true"
	outDir := ""
	if export {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outDir = stem
	}

	result, err := h.runParse(r, path, override, export, outDir)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.toResponse(result))
}

// ParseBatch handles POST /api/parse/batch
func (h *ParseHandler) ParseBatch(w http.ResponseWriter, r *http.Request) {
	var req apiv1.BatchParseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if req.Workers < 0 || req.Workers > 16 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("workers", "Workers must be between 1 and 16"))
		return
	}
	if req.Workers == 0 {
		req.Workers = 4
	}
	if req.OutputDir == "" {
		req.OutputDir = "batch-" + time.Now().Format("20060102-150405")
	}

	batch, err := h.service.ParseBatch(r.Context(), req.Dir, req.OutputDir, req.Workers)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	results := make([]apiv1.ParseResponse, 0, len(batch.Results))
	for _, result := range batch.Results {
		results = append(results, apiv1.ParseResponse{
			File:      result.File,
			OutputDir: result.OutputDir,
			Warnings:  result.Bundle.Warnings,
		})
	}
	render.JSON(w, r, map[string]interface{}{
		"count":    len(results),
		"results":  results,
		"failures": batch.Failures,
	})
}

// ListWorkbooks handles GET /api/parse/workbooks
func (h *ParseHandler) ListWorkbooks(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.ListWorkbooks(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := apiv1.WorkbookListResponse{Workbooks: make([]apiv1.WorkbookInfo, 0, len(found))}
	for _, fi := range found {
		resp.Workbooks = append(resp.Workbooks, apiv1.WorkbookInfo{
			Name:     fi.Name,
			Size:     fi.Size,
			Modified: fi.ModTime.Format(time.RFC3339),
		})
	}
	resp.Count = len(resp.Workbooks)
	render.JSON(w, r, resp)
}

// GetConfig handles GET /api/parse/config
func (h *ParseHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Config())
}

func (h *ParseHandler) runParse(r *http.Request, path string, override *domain.ParseConfig, export bool, outDir string) (*services.ParseResult, error) {
	if !export {
		return h.service.ParseWorkbook(r.Context(), path, override)
	}
	if outDir == "" {
		outDir = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return h.service.ParseAndExport(r.Context(), path, override, outDir)
}

func (h *ParseHandler) toResponse(result *services.ParseResult) apiv1.ParseResponse {
	bundle := result.Bundle
	sections := map[string]*domain.ParsedSection{
		"revenue": bundle.Revenue,
		"costs":   bundle.Costs,
	}
	if bundle.Hours != nil {
		sections["hours"] = bundle.Hours
	}
	return apiv1.ParseResponse{
		File:      result.File,
		OutputDir: result.OutputDir,
		Warnings:  bundle.Warnings,
		Report:    bundle.Report,
		Sections:  sections,
		Summaries: result.Summaries,
	}
}

func (h *ParseHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrWorkbookNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("workbook"))
	case errors.Is(err, services.ErrNoWorkbooksFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("workbooks"))
	case errors.Is(err, services.ErrInvalidFileType):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("workbook", "Only .xlsx, .xlsm and .xls workbooks are supported"))
	case errors.Is(err, services.ErrEmptyUpload):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("workbook", "Uploaded workbook is empty"))
	default:
		middleware.RecordSystemError(r.Context(), "parse_failure", "parse_handler")
		h.errorHandler.HandleError(w, r, err)
	}
}
