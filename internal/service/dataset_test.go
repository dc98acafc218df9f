package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbrevlab/annotab/internal/domain"
	"github.com/abbrevlab/annotab/internal/store"
)

// fakeObjectStore is an in-memory domain.ObjectStore.
type fakeObjectStore struct {
	blobs    map[string][]byte
	failWith error
	uploads  []string
	removed  []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{blobs: map[string][]byte{}}
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string, limit int) ([]domain.ObjectInfo, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var infos []domain.ObjectInfo
	for name, data := range f.blobs {
		infos = append(infos, domain.ObjectInfo{Name: name, Size: int64(len(data)), UpdatedAt: time.Now()})
	}
	return infos, nil
}

func (f *fakeObjectStore) Download(ctx context.Context, name string) ([]byte, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	data, ok := f.blobs[name]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return data, nil
}

func (f *fakeObjectStore) Upload(ctx context.Context, name string, data []byte, upsert bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.blobs[name] = data
	f.uploads = append(f.uploads, name)
	return nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, names []string) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, name := range names {
		delete(f.blobs, name)
		f.removed = append(f.removed, name)
	}
	return nil
}

const sampleCSV = "sentence,abbreviation,long_form,domain,completed\n" +
	"The CPU spiked.,CPU,,,false\n" +
	"DNA was extracted.,DNA,deoxyribonucleic acid,biomedical,true\n" +
	"The API returned 500.,API,,,false\n" +
	"RAM was exhausted.,RAM,,,false\n"

func newTestService(t *testing.T, objects domain.ObjectStore) *DatasetService {
	t.Helper()
	drafts, err := store.NewDraftStore("", "")
	require.NoError(t, err)
	return NewDatasetService(objects, drafts, nil)
}

func TestDatasetService_ListFiles(t *testing.T) {
	t.Run("filters to csv blobs", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		objects.blobs["readme.txt"] = []byte("hi")
		svc := newTestService(t, objects)

		files, err := svc.ListFiles(context.Background())
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "notes.csv", files[0].Name)
	})

	t.Run("propagates backend errors", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.failWith = domain.ErrStorageOffline
		svc := newTestService(t, objects)

		_, err := svc.ListFiles(context.Background())
		assert.ErrorIs(t, err, domain.ErrStorageOffline)
	})
}

func TestDatasetService_Open(t *testing.T) {
	t.Run("downloads and decodes", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		fromDraft, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)
		assert.False(t, fromDraft)
		assert.Equal(t, "notes.csv", svc.ActiveFile())
		assert.Equal(t, 4, svc.Store().Len())
		assert.Equal(t, 25, svc.Progress().Percent)
	})

	t.Run("a failed download leaves the open dataset untouched", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		objects.failWith = domain.ErrStorageOffline
		_, err = svc.Open(context.Background(), "other.csv")
		require.Error(t, err)

		assert.Equal(t, "notes.csv", svc.ActiveFile())
		assert.Equal(t, 4, svc.Store().Len())
	})

	t.Run("a draft snapshot wins over the remote blob", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		// Edit, then reopen: the draft carries the edit even though the
		// remote blob never changed.
		svc.UpdateField(0, domain.TabNotCompleted, domain.FieldLongForm, "central processing unit")

		fromDraft, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)
		assert.True(t, fromDraft)
		assert.Equal(t, "central processing unit", svc.Store().Rows()[0].LongForm)
	})
}

func TestDatasetService_Save(t *testing.T) {
	t.Run("uploads under the progress-derived name", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		name, err := svc.Save(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "notes{25%}.csv", name)
		assert.Contains(t, objects.blobs, "notes{25%}.csv")
	})

	t.Run("fully completed dataset gets the corrected name", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		for len(svc.Store().ViewForTab(domain.TabNotCompleted)) > 0 {
			svc.ToggleCompletion(0, domain.TabNotCompleted)
		}

		name, err := svc.Save(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "notes{corrected}.csv", name)
	})

	t.Run("saved content is the full dataset, not the filtered view", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		name, err := svc.Save(context.Background())
		require.NoError(t, err)

		saved := string(objects.blobs[name])
		assert.Contains(t, saved, "CPU")
		assert.Contains(t, saved, "DNA")
	})

	t.Run("drops the draft only after a successful upload", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)
		svc.ToggleCompletion(0, domain.TabNotCompleted)

		objects.failWith = domain.ErrStorageOffline
		_, err = svc.Save(context.Background())
		require.ErrorIs(t, err, domain.ErrStorageOffline)

		// The edit survives a failed save via the draft.
		fromDraft, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)
		assert.True(t, fromDraft)

		objects.failWith = nil
		_, err = svc.Save(context.Background())
		require.NoError(t, err)

		// After a successful save the remote blob is authoritative again.
		fromDraft, err = svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)
		assert.False(t, fromDraft)
	})

	t.Run("no open dataset", func(t *testing.T) {
		svc := newTestService(t, newFakeObjectStore())

		_, err := svc.Save(context.Background())
		assert.ErrorIs(t, err, domain.ErrNoDataset)
	})
}

func TestDatasetService_Export(t *testing.T) {
	t.Run("writes the dataset to a writer", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, svc.Export(&buf))
		assert.Contains(t, buf.String(), "sentence,abbreviation,long_form,domain,completed")
	})

	t.Run("writes a local file under the fixed name", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		dir := t.TempDir()
		path, err := svc.ExportToFile(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "notes-corrected.csv"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "DNA")
	})

	t.Run("no open dataset", func(t *testing.T) {
		svc := newTestService(t, newFakeObjectStore())

		var buf bytes.Buffer
		assert.ErrorIs(t, svc.Export(&buf), domain.ErrNoDataset)
	})
}

func TestDatasetService_DeleteFile(t *testing.T) {
	t.Run("deleting the open file resets the dataset", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteFile(context.Background(), "notes.csv"))
		assert.Empty(t, svc.ActiveFile())
		assert.Equal(t, 0, svc.Store().Len())
		assert.Equal(t, []string{"notes.csv"}, objects.removed)
	})

	t.Run("deleting another file keeps the dataset", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		objects.blobs["other.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteFile(context.Background(), "other.csv"))
		assert.Equal(t, "notes.csv", svc.ActiveFile())
		assert.Equal(t, 4, svc.Store().Len())
	})

	t.Run("a failed remove changes nothing", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.blobs["notes.csv"] = []byte(sampleCSV)
		svc := newTestService(t, objects)

		_, err := svc.Open(context.Background(), "notes.csv")
		require.NoError(t, err)

		objects.failWith = domain.ErrStorageOffline
		require.Error(t, svc.DeleteFile(context.Background(), "notes.csv"))
		assert.Equal(t, "notes.csv", svc.ActiveFile())
		assert.Equal(t, 4, svc.Store().Len())
	})
}

func TestDatasetService_UploadLocal(t *testing.T) {
	t.Run("pushes a local file under its base name", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "local.csv")
		require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

		objects := newFakeObjectStore()
		svc := newTestService(t, objects)

		name, err := svc.UploadLocal(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "local.csv", name)
		assert.Equal(t, []byte(sampleCSV), objects.blobs["local.csv"])
	})

	t.Run("missing local file", func(t *testing.T) {
		svc := newTestService(t, newFakeObjectStore())

		_, err := svc.UploadLocal(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
		assert.Error(t, err)
	})
}
