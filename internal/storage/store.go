// Package storage keeps recorded sessions on disk, one directory per run:
// metadata.json, session.json and metrics.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/record"
)

const (
	metaFile    = "metadata.json"
	sessionFile = "session.json"
	metricsFile = "metrics.csv"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	log     *slog.Logger
}

func New(baseDir string, log *slog.Logger) *Store {
	return &Store{baseDir: baseDir, log: logx.OrNop(log)}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Size      int                `json:"size"`
	Seed      int64              `json:"seed"`
	Duration  float64            `json:"duration"`
	Actions   int                `json:"actions"`
	Ticks     uint64             `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is everything saved for one session. Trace may be nil.
type Run struct {
	Name    string
	Session *record.Session
	Ticks   uint64
	Metrics map[string]float64
	Trace   *metrics.Trace
}

// Save writes run under a new directory and returns its ID.
func (s *Store) Save(run Run) (string, error) {
	if run.Session == nil {
		return "", fmt.Errorf("save: nil session")
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", run.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      run.Name,
		Timestamp: now,
		Size:      run.Session.Width,
		Seed:      run.Session.Seed,
		Duration:  run.Session.Duration,
		Actions:   len(run.Session.Actions),
		Ticks:     run.Ticks,
		Metrics:   run.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metaFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, sessionFile), func(f *os.File) error {
		return record.Encode(f, run.Session)
	}); err != nil {
		return "", err
	}
	if run.Trace != nil {
		if err := writeFile(filepath.Join(runDir, metricsFile), func(f *os.File) error {
			return run.Trace.WriteCSV(f)
		}); err != nil {
			return "", err
		}
	}
	s.log.Info("run saved", "id", runID, "actions", meta.Actions)
	return runID, nil
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// List returns the metadata of every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.Debug("skipping run", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, metaFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("load %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSession decodes a run's session, skipping malformed actions.
func (s *Store) LoadSession(runID string) (*record.Session, error) {
	f, err := os.Open(s.path(runID, sessionFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	defer f.Close()
	sess, skipped, err := record.Decode(f, s.log)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", runID, err)
	}
	if skipped > 0 {
		s.log.Warn("session had malformed actions", "id", runID, "skipped", skipped)
	}
	return sess, nil
}

// SessionJSON returns the stored session file as written.
func (s *Store) SessionJSON(runID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(runID, sessionFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	return data, nil
}

func (s *Store) LoadTrace(runID string) ([]metrics.Sample, error) {
	f, err := os.Open(s.path(runID, metricsFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	defer f.Close()
	return metrics.ReadCSV(f)
}

func (s *Store) path(runID, name string) string {
	return filepath.Join(s.baseDir, filepath.Base(runID), name)
}

func notFound(runID string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return err
}
