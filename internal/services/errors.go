package services

import "errors"

// Parse service errors
var (
	// Workbook errors
	ErrWorkbookNotFound  = errors.New("workbook not found")
	ErrNoWorkbooksFound  = errors.New("no workbooks found")
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrEmptyUpload       = errors.New("uploaded file is empty")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
