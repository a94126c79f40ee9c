package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"logmon/internal/filter"
)

func TestLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "monitor_config.json")
	s := New(path, nil)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 0, doc.Len())
	require.True(t, s.Created())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{}", string(b))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	s := New(path, nil)

	var doc Document
	doc.Set("/var/log/syslog", []filter.Filter{
		{Text: "sshd", Enabled: true},
		{Text: "cron", Enabled: false},
	})
	doc.Set("/var/log/auth.log", nil)
	doc.Set("/tmp/app.log", []filter.Filter{{Text: "ERROR", Enabled: true}})
	require.NoError(t, s.Save(doc))

	loaded, err := New(path, nil).Load()
	require.NoError(t, err)
	require.Equal(t, doc.Paths(), loaded.Paths())
	for _, p := range doc.Paths() {
		want, _ := doc.Get(p)
		got, ok := loaded.Get(p)
		require.True(t, ok, p)
		require.Equal(t, want, got, p)
	}

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestSaveWritesPrettyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	var doc Document
	doc.Set("/a.log", []filter.Filter{{Text: "x", Enabled: true}})
	require.NoError(t, New(path, nil).Save(doc))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "{\n  \"/a.log\": [\n    {\n      \"text\": \"x\",\n      \"enabled\": true\n    }\n  ]\n}"
	require.Equal(t, want, string(b))
}

func TestLoadCorruptFileYieldsEmptyAndBacksUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"/a.log": [`), 0o644))

	s := New(path, nil)
	doc, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 0, doc.Len())

	backup := s.Recovered()
	require.NotEmpty(t, backup)
	require.True(t, strings.HasPrefix(filepath.Base(backup), "monitor_config.json.corrupt-"))
	b, err := os.ReadFile(backup)
	require.NoError(t, err)
	require.Equal(t, `{"/a.log": [`, string(b))
}

func TestLoadRejectsNonObjectAsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`["/a.log"]`), 0o644))

	s := New(path, nil)
	doc, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 0, doc.Len())
	require.NotEmpty(t, s.Recovered())
}

func TestLoadAcceptsLegacyShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	raw := `{
  "/b.log": ["plain", {"text": "obj"}, {"text": "off", "enabled": false}, {"enabled": true}, 7],
  "/a.log": true,
  "": [{"text": "ignored"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	doc, err := New(path, nil).Load()
	require.NoError(t, err)
	require.Equal(t, []string{"/b.log", "/a.log"}, doc.Paths())

	b, _ := doc.Get("/b.log")
	require.Equal(t, []filter.Filter{
		{Text: "plain", Enabled: true},
		{Text: "obj", Enabled: true},
		{Text: "off", Enabled: false},
	}, b)

	a, ok := doc.Get("/a.log")
	require.True(t, ok)
	require.Empty(t, a)
}

func TestDocumentDeleteReindexes(t *testing.T) {
	var doc Document
	doc.Set("a", nil)
	doc.Set("b", nil)
	doc.Set("c", nil)

	require.True(t, doc.Delete("a"))
	require.False(t, doc.Delete("a"))
	doc.Set("b", []filter.Filter{{Text: "x", Enabled: true}})
	require.Equal(t, []string{"b", "c"}, doc.Paths())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	require.JSONEq(t, `{"b":[{"text":"x","enabled":true}],"c":[]}`, string(out))
}

func TestSaveDropsDeletedKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor_config.json")
	s := New(path, nil)

	var doc Document
	doc.Set("/keep.log", nil)
	doc.Set("/drop.log", nil)
	require.NoError(t, s.Save(doc))

	doc.Delete("/drop.log")
	require.NoError(t, s.Save(doc))

	loaded, err := s.Load()
	require.NoError(t, err)
	_, ok := loaded.Get("/drop.log")
	require.False(t, ok)
	require.Equal(t, []string{"/keep.log"}, loaded.Paths())
}
