package telemetry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
)

// RunRecord is one finished run in the history file.
type RunRecord struct {
	FinishedAt   time.Time `csv:"finished_at"`
	DurationSec  float64   `csv:"duration_sec"`
	Score        int       `csv:"score"`
	Coins        int       `csv:"coins"`
	HighScore    int       `csv:"high_score"`
	NewHighScore bool      `csv:"new_high_score"`
	RewardTokens int       `csv:"reward_tokens"`
}

// History appends run records to a CSV file that survives restarts.
// A nil *History discards writes.
type History struct {
	path string
	mu   sync.Mutex
}

// NewHistory returns a history writing to path. Returns nil if path is empty.
func NewHistory(path string) *History {
	if path == "" {
		return nil
	}
	return &History{path: path}
}

// Path returns the CSV path.
func (h *History) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Append writes r to the end of the file, adding the header to a new file.
func (h *History) Append(r RunRecord) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	headerWritten := false
	if info, err := os.Stat(h.path); err == nil && info.Size() > 0 {
		headerWritten = true
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	records := []RunRecord{r}
	if !headerWritten {
		err = gocsv.Marshal(records, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, f)
	}
	if err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Load reads all records. A missing file yields no records.
func (h *History) Load() ([]RunRecord, error) {
	if h == nil {
		return nil, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return records, nil
}
