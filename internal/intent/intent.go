// Package intent maps transcripts to a fixed set of labels by keyword lookup.
//
// Matching is plain substring search, so a short keyword also fires inside
// longer unrelated words. Order in the table is the only tie-break.
package intent

import (
	"errors"
	"fmt"
	"strings"
)

const Unknown = "UNKNOWN"

var ErrInvalidTable = errors.New("invalid intent table")

type Intent struct {
	Label    string
	Keywords []string
}

// Table is scanned in definition order; the first keyword hit wins.
type Table []Intent

func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTable)
	}

	seen := make(map[string]struct{}, len(t))
	for i, in := range t {
		if in.Label == "" {
			return fmt.Errorf("%w: entry %d has no label", ErrInvalidTable, i)
		}
		if in.Label == Unknown {
			return fmt.Errorf("%w: %s is reserved", ErrInvalidTable, Unknown)
		}
		if _, dup := seen[in.Label]; dup {
			return fmt.Errorf("%w: duplicate label %s", ErrInvalidTable, in.Label)
		}
		seen[in.Label] = struct{}{}

		if len(in.Keywords) == 0 {
			return fmt.Errorf("%w: %s has no keywords", ErrInvalidTable, in.Label)
		}
		for _, kw := range in.Keywords {
			if kw == "" {
				return fmt.Errorf("%w: %s has an empty keyword", ErrInvalidTable, in.Label)
			}
		}
	}
	return nil
}

func (t Table) Labels() []string {
	out := make([]string, len(t))
	for i, in := range t {
		out[i] = in.Label
	}
	return out
}

// Match returns the label of the first keyword found in text, or Unknown.
func Match(text string, t Table) string {
	label, _ := MatchKeyword(text, t)
	return label
}

// MatchKeyword is Match that also reports which keyword fired.
func MatchKeyword(text string, t Table) (label, keyword string) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Unknown, ""
	}

	for _, in := range t {
		for _, kw := range in.Keywords {
			if strings.Contains(text, kw) {
				return in.Label, kw
			}
		}
	}
	return Unknown, ""
}
