package tui

import (
	"github.com/abbrevlab/annotab/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FilesLoadedMsg signals that the bucket listing is ready
type FilesLoadedMsg struct {
	Files []domain.ObjectInfo
}

// DatasetOpenedMsg signals that a dataset was downloaded and decoded
type DatasetOpenedMsg struct {
	File      string
	Rows      int
	FromDraft bool
}

// DatasetSavedMsg signals a successful upload under the policy name
type DatasetSavedMsg struct {
	Name string
}

// DatasetExportedMsg signals a successful local export
type DatasetExportedMsg struct {
	Path string
}

// FileDeletedMsg signals that a bucket file was removed
type FileDeletedMsg struct {
	Name      string
	WasActive bool
}

// FileUploadedMsg signals that a local file landed in the bucket
type FileUploadedMsg struct {
	Name string
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
