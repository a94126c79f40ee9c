package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"logmon/internal/filter"
)

// Entry is one persisted log source.
type Entry struct {
	LogPath string
	Filters []filter.Filter
}

// Document maps log paths to their filters. Key order is preserved so that
// sessions come back in the order they were saved. The zero value is empty
// and ready to use.
type Document struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of log paths in the document.
func (d *Document) Len() int {
	return len(d.entries)
}

// Get returns a copy of the filters stored for logPath.
func (d *Document) Get(logPath string) ([]filter.Filter, bool) {
	i, ok := d.index[logPath]
	if !ok {
		return nil, false
	}
	return filter.Clone(d.entries[i].Filters), true
}

// Set stores filters for logPath. Existing keys keep their position, new
// keys are appended. Empty paths are ignored.
func (d *Document) Set(logPath string, fs []filter.Filter) {
	if logPath == "" {
		return
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	fs = filter.Clone(fs)
	if fs == nil {
		fs = []filter.Filter{}
	}
	if i, ok := d.index[logPath]; ok {
		d.entries[i].Filters = fs
		return
	}
	d.index[logPath] = len(d.entries)
	d.entries = append(d.entries, Entry{LogPath: logPath, Filters: fs})
}

// Delete removes logPath and reports whether it was present.
func (d *Document) Delete(logPath string) bool {
	i, ok := d.index[logPath]
	if !ok {
		return false
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, logPath)
	for j := i; j < len(d.entries); j++ {
		d.index[d.entries[j].LogPath] = j
	}
	return true
}

// Paths returns the log paths in document order.
func (d *Document) Paths() []string {
	out := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.LogPath)
	}
	return out
}

// Entries returns a deep copy of the document entries in order.
func (d *Document) Entries() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, Entry{LogPath: e.LogPath, Filters: filter.Clone(e.Filters)})
	}
	return out
}

// MarshalJSON writes the document as a JSON object in key order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.LogPath)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fs := e.Filters
		if fs == nil {
			fs = []filter.Filter{}
		}
		val, err := json.Marshal(fs)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Filter lists accept
// the older shapes too: bare strings are enabled filters, objects without
// "enabled" are enabled, and non-array values become empty lists.
func (d *Document) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("config document must be a JSON object")
	}

	var doc Document
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("config document key is not a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if strings.TrimSpace(key) == "" {
			continue
		}
		doc.Set(key, decodeFilters(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = doc
	return nil
}

func decodeFilters(raw json.RawMessage) []filter.Filter {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []filter.Filter{}
	}
	out := make([]filter.Filter, 0, len(items))
	for _, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			out = append(out, filter.Filter{Text: text, Enabled: true})
			continue
		}
		var obj struct {
			Text    *string `json:"text"`
			Enabled *bool   `json:"enabled"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.Text == nil {
			continue
		}
		enabled := true
		if obj.Enabled != nil {
			enabled = *obj.Enabled
		}
		out = append(out, filter.Filter{Text: *obj.Text, Enabled: enabled})
	}
	return out
}
