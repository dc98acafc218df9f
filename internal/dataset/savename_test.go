package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveName(t *testing.T) {
	t.Run("complete dataset gets the canonical name", func(t *testing.T) {
		assert.Equal(t, "notes{corrected}.csv", SaveName("notes.csv", 100))
	})

	t.Run("partial dataset gets a percent suffix", func(t *testing.T) {
		assert.Equal(t, "notes{37%}.csv", SaveName("notes.csv", 37))
		assert.Equal(t, "notes{0%}.csv", SaveName("notes.csv", 0))
	})

	t.Run("same percent derives the same name", func(t *testing.T) {
		assert.Equal(t, SaveName("notes.csv", 42), SaveName("notes.csv", 42))
	})

	t.Run("missing extension defaults to csv", func(t *testing.T) {
		assert.Equal(t, "notes{corrected}.csv", SaveName("notes", 100))
		assert.Equal(t, "notes{50%}.csv", SaveName("notes", 50))
	})

	t.Run("keeps directory-like prefixes", func(t *testing.T) {
		assert.Equal(t, "batch1/notes{12%}.csv", SaveName("batch1/notes.csv", 12))
	})
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "notes-corrected.csv", ExportName("notes.csv"))
	assert.Equal(t, "notes-corrected.csv", ExportName("notes"))
}
