// Package api contains API contract definitions for the workbook
// normalization service. Version v1 represents the current stable API
// version.
package api

import (
	"sheetnorm/pkg/contracts/domain"
)

// Parse API Requests

// ParseRequest represents a request to parse a workbook already
// present in the input directory. A non-nil Config replaces the
// server's default parse configuration for this run only.
type ParseRequest struct {
	File      string              `json:"file" validate:"required"`
	OutputDir string              `json:"output_dir,omitempty"`
	Export    bool                `json:"export"`
	Config    *domain.ParseConfig `json:"config,omitempty"`
}

// BatchParseRequest represents a request to parse every workbook in a
// directory. An empty Dir means the server's input directory.
type BatchParseRequest struct {
	Dir       string `json:"dir,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
	Workers   int    `json:"workers,omitempty" validate:"omitempty,min=1,max=16"`
}

// Parse API Responses

// ParseResponse represents the outcome of a single parse run.
type ParseResponse struct {
	File      string      `json:"file"`
	OutputDir string      `json:"output_dir,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
	Report    string      `json:"validation_report"`
	Sections  interface{} `json:"sections,omitempty"`
	Summaries interface{} `json:"summaries,omitempty"`
}

// WorkbookInfo describes one discoverable input workbook.
type WorkbookInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// WorkbookListResponse lists the workbooks available for parsing.
type WorkbookListResponse struct {
	Workbooks []WorkbookInfo `json:"workbooks"`
	Count     int            `json:"count"`
}
