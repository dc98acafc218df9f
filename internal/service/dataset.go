// Package service orchestrates the dataset store, the CSV codec and the
// storage backend in response to user actions.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abbrevlab/annotab/internal/codec"
	"github.com/abbrevlab/annotab/internal/dataset"
	"github.com/abbrevlab/annotab/internal/domain"
)

// DatasetService owns the single open dataset and every operation against
// the storage backend. All methods run synchronously in response to one
// user action; a failed storage call aborts the operation and leaves the
// in-memory dataset exactly as it was.
type DatasetService struct {
	objects domain.ObjectStore
	drafts  domain.DraftStore
	store   *dataset.Store
	logger  *slog.Logger

	activeFile string
}

// NewDatasetService creates the service. drafts may be nil when draft
// persistence is disabled.
func NewDatasetService(objects domain.ObjectStore, drafts domain.DraftStore, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		objects: objects,
		drafts:  drafts,
		store:   dataset.New(),
		logger:  logger,
	}
}

// Store exposes the row store for view derivation.
func (s *DatasetService) Store() *dataset.Store {
	return s.store
}

// ActiveFile returns the name of the open bucket file, or "".
func (s *DatasetService) ActiveFile() string {
	return s.activeFile
}

// Progress returns the completion summary of the open dataset.
func (s *DatasetService) Progress() domain.Progress {
	return s.store.Progress()
}

// ListFiles returns the CSV blobs in the bucket.
func (s *DatasetService) ListFiles(ctx context.Context) ([]domain.ObjectInfo, error) {
	infos, err := s.objects.List(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	files := make([]domain.ObjectInfo, 0, len(infos))
	for _, info := range infos {
		if info.IsCSV() {
			files = append(files, info)
		}
	}
	s.logger.Debug("listed bucket files", "total", len(infos), "csv", len(files))
	return files, nil
}

// Open downloads and decodes a bucket file, replacing the open dataset.
// A local draft snapshot for the file, if one exists, wins over the remote
// content: it is strictly newer, since drafts are dropped on save.
// Returns whether a draft was restored.
func (s *DatasetService) Open(ctx context.Context, name string) (bool, error) {
	if s.drafts != nil {
		if rows, ok := s.drafts.GetDraft(name); ok {
			s.store.Load(rows)
			s.activeFile = name
			s.logger.Info("restored draft", "file", name, "rows", len(rows))
			return true, nil
		}
	}

	data, err := s.objects.Download(ctx, name)
	if err != nil {
		return false, err
	}
	rows, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}

	s.store.Load(rows)
	s.activeFile = name
	s.logger.Info("opened dataset", "file", name, "rows", len(rows))
	return false, nil
}

// Save encodes the full authoritative dataset and uploads it under the
// progress-derived name. Returns the name written. The draft snapshot is
// dropped only after the upload succeeds.
func (s *DatasetService) Save(ctx context.Context) (string, error) {
	if s.activeFile == "" {
		return "", domain.ErrNoDataset
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, s.store.Rows()); err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}

	name := dataset.SaveName(s.activeFile, s.store.Progress().Percent)
	if err := s.objects.Upload(ctx, name, buf.Bytes(), true); err != nil {
		return "", err
	}

	if s.drafts != nil {
		s.drafts.DropDraft(s.activeFile)
	}
	s.logger.Info("saved dataset", "file", name, "rows", s.store.Len())
	return name, nil
}

// Export writes the full authoritative dataset to w (the local download
// path).
func (s *DatasetService) Export(w io.Writer) error {
	if s.activeFile == "" {
		return domain.ErrNoDataset
	}
	return codec.Encode(w, s.store.Rows())
}

// ExportToFile writes the dataset next to dir under the fixed local
// download name. Returns the path written.
func (s *DatasetService) ExportToFile(dir string) (string, error) {
	if s.activeFile == "" {
		return "", domain.ErrNoDataset
	}
	path := filepath.Join(dir, dataset.ExportName(s.activeFile))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	if err := codec.Encode(f, s.store.Rows()); err != nil {
		return "", err
	}
	s.logger.Info("exported dataset", "path", path, "rows", s.store.Len())
	return path, nil
}

// DeleteFile removes a bucket file and its draft. Deleting the open file
// resets the dataset.
func (s *DatasetService) DeleteFile(ctx context.Context, name string) error {
	if err := s.objects.Remove(ctx, []string{name}); err != nil {
		return err
	}
	if s.drafts != nil {
		s.drafts.DropDraft(name)
	}
	if name == s.activeFile {
		s.store.Reset()
		s.activeFile = ""
	}
	s.logger.Info("deleted file", "file", name)
	return nil
}

// UploadLocal pushes a local CSV into the bucket under its base name.
// Returns the bucket name written.
func (s *DatasetService) UploadLocal(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read local file: %w", err)
	}
	name := filepath.Base(path)
	if err := s.objects.Upload(ctx, name, data, true); err != nil {
		return "", err
	}
	s.logger.Info("uploaded local file", "file", name, "bytes", len(data))
	return name, nil
}

// UpdateField edits one field of a view row and snapshots the draft.
func (s *DatasetService) UpdateField(viewIndex int, tab domain.Tab, field domain.Field, value string) {
	s.store.UpdateField(viewIndex, tab, field, value)
	s.snapshotDraft()
}

// ToggleCompletion flips a view row's completion flag and snapshots the
// draft.
func (s *DatasetService) ToggleCompletion(viewIndex int, tab domain.Tab) {
	s.store.ToggleCompletion(viewIndex, tab)
	s.snapshotDraft()
}

// RemoveRow deletes a view row and snapshots the draft. Confirmation
// happens in the UI before this is called.
func (s *DatasetService) RemoveRow(viewIndex int, tab domain.Tab) {
	s.store.RemoveRow(viewIndex, tab)
	s.snapshotDraft()
}

func (s *DatasetService) snapshotDraft() {
	if s.drafts == nil || s.activeFile == "" {
		return
	}
	if err := s.drafts.SaveDraft(s.activeFile, s.store.Rows()); err != nil {
		// Draft persistence is best-effort; the authoritative data lives in
		// memory and in the bucket.
		s.logger.Warn("draft snapshot failed", "file", s.activeFile, "error", err)
	}
}
