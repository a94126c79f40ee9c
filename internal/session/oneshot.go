package session

import (
	"errors"

	"go.uber.org/zap"

	"logmon/internal/export"
	"logmon/internal/launcher"
)

// DumpToTerminal opens a short-lived terminal printing the whole log file.
// The terminal is not tracked.
func (s *Session) DumpToTerminal() error {
	path := s.LogPath()
	if path == "" {
		return ErrEmptyLogPath
	}
	if s.launcher == nil {
		return errors.New("no terminal launcher configured")
	}
	script, err := launcher.DumpScript(path)
	if err != nil {
		return err
	}
	proc, err := s.launcher.Open(script)
	if err != nil {
		return err
	}
	s.logger.Info("dump opened in terminal", zap.String("log_path", path), zap.Int("pid", proc.PID()))
	return nil
}

// DumpToFile copies the log file into dst and returns the byte count.
func (s *Session) DumpToFile(dst string) (int64, error) {
	path := s.LogPath()
	if path == "" {
		return 0, ErrEmptyLogPath
	}
	n, err := export.DumpFile(path, dst)
	if err != nil {
		return n, err
	}
	s.logger.Info("log dumped", zap.String("log_path", path), zap.String("dest", dst), zap.Int64("bytes", n))
	return n, nil
}

// ExportCSV writes the bracketed lines of the log file to dst as CSV rows.
func (s *Session) ExportCSV(dst string) (int, error) {
	path := s.LogPath()
	if path == "" {
		return 0, ErrEmptyLogPath
	}
	rows, err := export.CSV(path, dst)
	if err != nil {
		return rows, err
	}
	s.logger.Info("log exported", zap.String("log_path", path), zap.String("dest", dst), zap.Int("rows", rows))
	return rows, nil
}
