package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbrevlab/annotab/internal/domain"
)

func draftRows() []*domain.Row {
	return []*domain.Row{
		{ID: "a", Sentence: "The CPU spiked.", Abbreviation: "CPU", LongForm: "central processing unit", Domain: "technology", Completed: true},
		{ID: "b", Sentence: "DNA was extracted.", Abbreviation: "DNA"},
	}
}

func TestDraftStore_Persistent(t *testing.T) {
	dir := t.TempDir()

	t.Run("round trip", func(t *testing.T) {
		s, err := NewDraftStore(dir, "https://xyz.supabase.co/storage/v1/datasets")
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.SaveDraft("notes.csv", draftRows()))

		got, ok := s.GetDraft("notes.csv")
		require.True(t, ok)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "central processing unit", got[0].LongForm)
		assert.True(t, got[0].Completed)
	})

	t.Run("survives reopening the database", func(t *testing.T) {
		endpoint := "https://xyz.supabase.co/storage/v1/datasets"

		s, err := NewDraftStore(dir, endpoint)
		require.NoError(t, err)
		require.NoError(t, s.SaveDraft("persist.csv", draftRows()))
		require.NoError(t, s.Close())

		s, err = NewDraftStore(dir, endpoint)
		require.NoError(t, err)
		defer s.Close()

		got, ok := s.GetDraft("persist.csv")
		require.True(t, ok)
		assert.Len(t, got, 2)
	})

	t.Run("endpoints are namespaced", func(t *testing.T) {
		a, err := NewDraftStore(dir, "https://a.example.com/storage/v1/bucket")
		require.NoError(t, err)
		defer a.Close()
		b, err := NewDraftStore(dir, "https://b.example.com/storage/v1/bucket")
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, a.SaveDraft("notes.csv", draftRows()))

		_, ok := b.GetDraft("notes.csv")
		assert.False(t, ok)
	})

	t.Run("drop removes the snapshot", func(t *testing.T) {
		s, err := NewDraftStore(dir, "https://drop.example.com/bucket")
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.SaveDraft("notes.csv", draftRows()))
		s.DropDraft("notes.csv")

		_, ok := s.GetDraft("notes.csv")
		assert.False(t, ok)
	})

	t.Run("missing draft", func(t *testing.T) {
		s, err := NewDraftStore(dir, "https://missing.example.com/bucket")
		require.NoError(t, err)
		defer s.Close()

		_, ok := s.GetDraft("never-saved.csv")
		assert.False(t, ok)
	})
}

func TestDraftStore_MemoryOnly(t *testing.T) {
	s, err := NewDraftStore("", "")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveDraft("notes.csv", draftRows()))

	got, ok := s.GetDraft("notes.csv")
	require.True(t, ok)
	assert.Len(t, got, 2)

	s.DropDraft("notes.csv")
	_, ok = s.GetDraft("notes.csv")
	assert.False(t, ok)
}
