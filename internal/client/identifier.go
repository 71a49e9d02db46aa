package client

import (
	"path"
	"strconv"
	"strings"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// IdentifierKind says how an identifier resolves to a dataset.
type IdentifierKind int

const (
	// IdentifierNumeric is a dataset id, used directly.
	IdentifierNumeric IdentifierKind = iota
	// IdentifierLabel is a filename or stored-path label, resolved
	// against the history list.
	IdentifierLabel
)

// Identifier is the parsed form of a user-facing dataset reference.
// The kind is decided here exactly once; nothing downstream re-sniffs
// the raw string.
type Identifier struct {
	Kind  IdentifierKind
	ID    int64
	Label string
}

// ParseIdentifier classifies a raw reference. Integers and digit
// strings become numeric ids; everything else is a label.
func ParseIdentifier(raw string) Identifier {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Identifier{Kind: IdentifierNumeric, ID: n}
	}
	return Identifier{Kind: IdentifierLabel, Label: s}
}

// String re-encodes the identifier. Parsing the result yields an equal
// identifier, which keeps resolution idempotent.
func (id Identifier) String() string {
	if id.Kind == IdentifierNumeric {
		return strconv.FormatInt(id.ID, 10)
	}
	return id.Label
}

// Matches reports whether a history entry answers to this identifier.
// Labels match the original filename or the stored blob name, tolerant
// of a missing or extra ".csv" suffix and of path-qualified names.
func (id Identifier) Matches(e models.HistoryEntry) bool {
	if id.Kind == IdentifierNumeric {
		return e.ID == id.ID
	}
	label := path.Base(strings.ReplaceAll(id.Label, `\`, "/"))
	for _, name := range []string{e.OriginalFilename, e.StoredName} {
		if name == "" {
			continue
		}
		if label == name || trimCSV(label) == trimCSV(name) {
			return true
		}
	}
	return false
}

// matchHistory finds the first entry answering to id. Entries arrive
// newest first, so the first match is also the most recent.
func matchHistory(id Identifier, entries []models.HistoryEntry) (int64, bool) {
	for _, e := range entries {
		if id.Matches(e) {
			return e.ID, true
		}
	}
	return 0, false
}

func trimCSV(name string) string {
	if strings.EqualFold(path.Ext(name), ".csv") {
		return name[:len(name)-len(".csv")]
	}
	return name
}
