package filter

import "strings"

// Filter is one stored text filter for a log source.
type Filter struct {
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// Normalize trims every text and drops empty and duplicate entries,
// keeping the first occurrence of each text.
func Normalize(fs []Filter) []Filter {
	out := make([]Filter, 0, len(fs))
	seen := make(map[string]struct{}, len(fs))
	for _, f := range fs {
		f.Text = strings.TrimSpace(f.Text)
		if f.Text == "" {
			continue
		}
		if _, ok := seen[f.Text]; ok {
			continue
		}
		seen[f.Text] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Trim trims every text and drops empty entries. Duplicates are kept, since
// an edit may legitimately produce them.
func Trim(fs []Filter) []Filter {
	out := make([]Filter, 0, len(fs))
	for _, f := range fs {
		f.Text = strings.TrimSpace(f.Text)
		if f.Text != "" {
			out = append(out, f)
		}
	}
	return out
}

// Enabled returns the texts of the enabled filters in list order.
func Enabled(fs []Filter) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		if f.Enabled {
			out = append(out, f.Text)
		}
	}
	return out
}

// Contains reports whether a filter with exactly this text exists.
func Contains(fs []Filter, text string) bool {
	for _, f := range fs {
		if f.Text == text {
			return true
		}
	}
	return false
}

// Matches reports whether line contains every one of texts.
// An empty texts slice matches everything.
func Matches(line string, texts []string) bool {
	for _, t := range texts {
		if !strings.Contains(line, t) {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share the backing array.
func Clone(fs []Filter) []Filter {
	if fs == nil {
		return nil
	}
	return append([]Filter(nil), fs...)
}
