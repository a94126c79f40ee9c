// Package follow streams a growing log file in-process, applying the same
// substring filters the terminal pipeline uses.
package follow

import (
	"context"
	"fmt"
	"io"

	"github.com/hpcloud/tail"

	"logmon/internal/filter"
)

// Options tunes Follow.
type Options struct {
	// FromStart emits the existing content before following.
	FromStart bool
	// Poll watches the file by polling instead of inotify.
	Poll bool
}

// Follow writes every line of path that contains all filters to w until ctx
// is cancelled. Like `tail -F` it keeps following across rotation.
func Follow(ctx context.Context, path string, filters []string, w io.Writer, opts Options) error {
	whence := io.SeekEnd
	if opts.FromStart {
		whence = io.SeekStart
	}
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      opts.Poll,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("follow %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return fmt.Errorf("follow %s: %w", path, line.Err)
			}
			if !filter.Matches(line.Text, filters) {
				continue
			}
			if _, err := io.WriteString(w, line.Text+"\n"); err != nil {
				_ = t.Stop()
				return err
			}
		}
	}
}
