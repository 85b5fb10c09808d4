package alerts

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// StatsFile appends every report to a UTF-8 text file. Each Send opens,
// appends and closes the file under a mutex, so concurrent reports never
// interleave and the file can be rotated between sends.
type StatsFile struct {
	path string
	mu   sync.Mutex
}

// NewStatsFile returns a sink appending to path. The file is created on the
// first report.
func NewStatsFile(path string) *StatsFile {
	return &StatsFile{path: path}
}

// Send implements Sink.
func (s *StatsFile) Send(_ context.Context, a Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stats file: %w", err)
	}
	if _, err := f.WriteString(a.Report); err != nil {
		f.Close()
		return fmt.Errorf("append stats: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close stats file: %w", err)
	}
	return nil
}
