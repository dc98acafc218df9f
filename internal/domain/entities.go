package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tab identifies one of the two completion-status partitions of a dataset.
type Tab int

const (
	TabNotCompleted Tab = iota
	TabCompleted
)

// Completed returns the completion flag value rows in this tab carry.
func (t Tab) Completed() bool {
	return t == TabCompleted
}

// Other returns the opposite tab.
func (t Tab) Other() Tab {
	if t == TabCompleted {
		return TabNotCompleted
	}
	return TabCompleted
}

// String returns a human-readable representation of the tab.
func (t Tab) String() string {
	switch t {
	case TabNotCompleted:
		return "Not Completed"
	case TabCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Field names a user-editable Row field.
type Field string

const (
	FieldLongForm Field = "long_form"
	FieldDomain   Field = "domain"
)

// DomainLabels is the fixed set of category labels a row may carry.
// The leading empty entry is the unset value.
var DomainLabels = []string{
	"",
	"general",
	"biomedical",
	"technology",
	"finance",
	"legal",
	"scientific",
	"other",
}

// IsDomainLabel reports whether s is one of the allowed category labels.
func IsDomainLabel(s string) bool {
	for _, l := range DomainLabels {
		if l == s {
			return true
		}
	}
	return false
}

// NextDomainLabel returns the label following s in the fixed cycle,
// wrapping to the unset value. Unknown labels restart the cycle.
func NextDomainLabel(s string) string {
	for i, l := range DomainLabels {
		if l == s {
			return DomainLabels[(i+1)%len(DomainLabels)]
		}
	}
	return DomainLabels[0]
}

// Row is a single abbreviation annotation record.
// Sentence and Abbreviation are immutable after load; LongForm, Domain and
// Completed are user-editable. ID is assigned at load time and is the only
// identity used for mutation resolution.
type Row struct {
	ID           string `json:"id"`
	Sentence     string `json:"sentence"`
	Abbreviation string `json:"abbreviation"`
	LongForm     string `json:"long_form"`
	Domain       string `json:"domain"`
	Completed    bool   `json:"completed"`
}

// Tab returns the partition this row currently belongs to.
func (r *Row) Tab() Tab {
	if r.Completed {
		return TabCompleted
	}
	return TabNotCompleted
}

// ShortSentence returns the sentence truncated for single-line display.
func (r *Row) ShortSentence(max int) string {
	runes := []rune(r.Sentence)
	if max <= 0 || len(runes) <= max {
		return r.Sentence
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}

// Progress summarizes dataset completion.
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// NewProgress computes completion progress. Percent is the rounded
// percentage, 0 for an empty dataset.
func NewProgress(completed, total int) Progress {
	p := Progress{Completed: completed, Total: total}
	if total > 0 {
		p.Percent = int(math.Round(100 * float64(completed) / float64(total)))
	}
	return p
}

// String renders progress as "done/total (NN%)".
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d (%d%%)", p.Completed, p.Total, p.Percent)
}

// ObjectInfo describes one stored blob in the bucket.
type ObjectInfo struct {
	Name      string
	Size      int64
	UpdatedAt time.Time
}

// IsCSV reports whether the object looks like a dataset file.
func (o ObjectInfo) IsCSV() bool {
	return strings.HasSuffix(strings.ToLower(o.Name), ".csv")
}

// FormattedSize returns the object size in a human-readable form.
func (o ObjectInfo) FormattedSize() string {
	const (
		kb = 1024
		mb = 1024 * 1024
	)
	switch {
	case o.Size >= mb:
		return fmt.Sprintf("%.1f MB", float64(o.Size)/float64(mb))
	case o.Size >= kb:
		return fmt.Sprintf("%.1f KB", float64(o.Size)/float64(kb))
	case o.Size > 0:
		return fmt.Sprintf("%d B", o.Size)
	default:
		return ""
	}
}

// ParseCompleted normalizes the flexible truthy tokens found in source
// data ("true", "1", "yes", "y", any case). Everything else is false.
func ParseCompleted(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
