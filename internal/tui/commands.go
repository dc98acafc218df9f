package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abbrevlab/annotab/internal/service"
)

// Command factories for async storage operations

// LoadFilesCmd lists the CSV files in the bucket
func LoadFilesCmd(svc *service.DatasetService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		files, err := svc.ListFiles(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "listing bucket"}
		}
		return FilesLoadedMsg{Files: files}
	}
}

// OpenDatasetCmd downloads and decodes a bucket file
func OpenDatasetCmd(svc *service.DatasetService, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second) // 60s for large datasets
		defer cancel()

		fromDraft, err := svc.Open(ctx, name)
		if err != nil {
			return ErrMsg{Err: err, Context: "opening " + name}
		}
		return DatasetOpenedMsg{File: name, Rows: svc.Store().Len(), FromDraft: fromDraft}
	}
}

// SaveDatasetCmd uploads the dataset under its progress-derived name
func SaveDatasetCmd(svc *service.DatasetService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		name, err := svc.Save(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving dataset"}
		}
		return DatasetSavedMsg{Name: name}
	}
}

// ExportDatasetCmd writes the dataset to a local file
func ExportDatasetCmd(svc *service.DatasetService, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := svc.ExportToFile(dir)
		if err != nil {
			return ErrMsg{Err: err, Context: "exporting dataset"}
		}
		return DatasetExportedMsg{Path: path}
	}
}

// DeleteFileCmd removes a bucket file
func DeleteFileCmd(svc *service.DatasetService, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		wasActive := svc.ActiveFile() == name
		if err := svc.DeleteFile(ctx, name); err != nil {
			return ErrMsg{Err: err, Context: "deleting " + name}
		}
		return FileDeletedMsg{Name: name, WasActive: wasActive}
	}
}

// UploadLocalCmd pushes a local CSV into the bucket
func UploadLocalCmd(svc *service.DatasetService, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		name, err := svc.UploadLocal(ctx, path)
		if err != nil {
			return ErrMsg{Err: err, Context: "uploading " + path}
		}
		return FileUploadedMsg{Name: name}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
