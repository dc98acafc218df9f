package dataset

import (
	"fmt"
	"path"
	"strings"
)

// SaveName derives the storage name for a dataset save from the source file
// name and the current completion percent. A fully completed dataset gets a
// single canonical name; partial saves are suffixed with the percent so each
// milestone is a distinct blob, while re-saving at the same percent
// overwrites the previous one.
//
//	notes.csv @ 100% -> notes{corrected}.csv
//	notes.csv @  37% -> notes{37%}.csv
func SaveName(baseName string, percent int) string {
	ext := path.Ext(baseName)
	stem := strings.TrimSuffix(baseName, ext)
	if ext == "" {
		ext = ".csv"
	}
	if percent >= 100 {
		return stem + "{corrected}" + ext
	}
	return fmt.Sprintf("%s{%d%%}%s", stem, percent, ext)
}

// ExportName derives the file name for a local download.
func ExportName(baseName string) string {
	ext := path.Ext(baseName)
	stem := strings.TrimSuffix(baseName, ext)
	if ext == "" {
		ext = ".csv"
	}
	return stem + "-corrected" + ext
}
