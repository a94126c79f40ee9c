package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{
			name: "four segments",
			line: `[2024-01-01] [ERROR] [auth] "login failed"`,
			want: `2024-01-01,ERROR,auth,"login failed"`,
			ok:   true,
		},
		{
			name: "not bracketed",
			line: `2024-01-01 ERROR auth login failed`,
		},
		{
			name: "three segments",
			line: `[2024-01-01] [ERROR] "login failed"`,
		},
		{
			name: "extra segments ignored",
			line: `[a] [b] [c] [d] tail`,
			want: `a,b,c,"d"`,
			ok:   true,
		},
		{
			name: "commas are not escaped",
			line: `[x,y] [WARN] [db] "slow"`,
			want: `x,y,WARN,db,"slow"`,
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Row(tt.line)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestWriteCSVSkipsUnmatchedLines(t *testing.T) {
	in := strings.Join([]string{
		`[2024-01-01] [ERROR] [auth] "login failed"`,
		`plain line`,
		`[2024-01-02] [INFO] "short"`,
		"[2024-01-03] [INFO] [api] \"ok\"\r",
		``,
	}, "\n")

	var out bytes.Buffer
	rows, err := WriteCSV(&out, strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Equal(t, "2024-01-01,ERROR,auth,\"login failed\"\n2024-01-03,INFO,api,\"ok\"\n", out.String())
}

func TestCSVMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CSV(filepath.Join(dir, "missing.log"), filepath.Join(dir, "out.csv"))
	require.True(t, errors.Is(err, ErrFileAccess), "got %v", err)
	_, statErr := os.Stat(filepath.Join(dir, "out.csv"))
	require.True(t, os.IsNotExist(statErr), "destination created for missing source")
}

func TestCSVWritesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log")
	dst := filepath.Join(dir, "app.csv")
	require.NoError(t, os.WriteFile(src, []byte("[t] [E] [m] \"boom\"\nnoise\n"), 0o644))

	rows, err := CSV(src, dst)
	require.NoError(t, err)
	require.Equal(t, 1, rows)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "t,E,m,\"boom\"\n", string(b))
}

func TestDumpFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log")
	dst := filepath.Join(dir, "copy.log")
	content := []byte("line one\nline two\x00binary\n")
	require.NoError(t, os.WriteFile(src, content, 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old content that is longer than the new one ........"), 0o644))

	n, err := DumpFile(src, dst)
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), n)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, content, b)
}

func TestDumpFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := DumpFile(filepath.Join(dir, "missing.log"), filepath.Join(dir, "x"))
	require.ErrorIs(t, err, ErrFileAccess)

	src := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	_, err = DumpFile(src, "  ")
	require.ErrorIs(t, err, ErrFileAccess)
}
