package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DefaultPoll is how often Follow checks the file for new data.
const DefaultPoll = 250 * time.Millisecond

// Last returns up to n trailing lines of path and the file size at read time.
// n <= 0 returns every line. A missing file yields no lines and offset zero.
func Last(path string, n int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	var lines []string
	scanner := bufio.NewScanner(io.LimitReader(file, info.Size()))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	return lines, info.Size(), nil
}

// Follow writes every complete line appended to path after offset until ctx
// is done. poll <= 0 selects DefaultPoll.
func Follow(ctx context.Context, path string, offset int64, w io.Writer, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var partial strings.Builder
	for {
		next, err := drain(path, offset, &partial, w)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func drain(path string, offset int64, partial *strings.Builder, w io.Writer) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
		partial.Reset()
	}
	if info.Size() == offset {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(io.LimitReader(file, info.Size()-offset))
	for {
		chunk, err := reader.ReadString('\n')
		partial.WriteString(chunk)
		if strings.HasSuffix(chunk, "\n") {
			if _, werr := io.WriteString(w, partial.String()); werr != nil {
				return offset, werr
			}
			partial.Reset()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return offset, fmt.Errorf("read log file: %w", err)
		}
	}
	return info.Size(), nil
}
