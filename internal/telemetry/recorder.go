package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// DefaultPath is where training telemetry goes unless configured otherwise
const DefaultPath = "data.csv"

// Entry is one accepted generation
type Entry struct {
	Ratio   float64
	Elapsed time.Duration
	Fitness float64
}

// Record returns the CSV fields ratio,elapsedMillis,fitness
func (e Entry) Record() []string {
	return []string{
		strconv.FormatFloat(e.Ratio, 'g', -1, 64),
		strconv.FormatInt(e.Elapsed.Milliseconds(), 10),
		strconv.FormatFloat(e.Fitness, 'g', -1, 64),
	}
}

// Recorder receives accepted generations
type Recorder interface {
	Record(entry Entry) error
}

// CSVRecorder appends entries to a headerless CSV file, opening it per
// write so external tools can rotate or truncate it between generations
type CSVRecorder struct {
	mu   sync.Mutex
	path string
}

// NewCSVRecorder creates a recorder appending to path
func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

// Path returns the file the recorder appends to
func (r *CSVRecorder) Path() string {
	return r.path
}

// Record appends one line
func (r *CSVRecorder) Record(entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create telemetry directory: %w", err)
		}
	}
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open telemetry file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(entry.Record()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write telemetry row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush telemetry row: %w", err)
	}
	return f.Close()
}

// Memory keeps entries in memory
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// Record stores the entry
func (m *Memory) Record(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a copy of what was recorded
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Discard drops every entry
type Discard struct{}

// Record does nothing
func (Discard) Record(Entry) error {
	return nil
}
