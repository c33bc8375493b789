// Package memory persists per-user conversation memory: one JSON file per
// user per day plus a rolling long-term summary. Dates follow Asia/Jakarta
// regardless of host timezone, matching the audience the bot serves.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Jakarta is the fixed reference timezone for all date bucketing.
var Jakarta = time.FixedZone("WIB", 7*60*60)

// Turn is one recorded question/answer exchange.
type Turn struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// DailyRecord is the on-disk shape of one day of conversation.
type DailyRecord struct {
	Turns        []Turn `json:"turns"`
	DailySummary string `json:"daily_summary"`
}

// RollingRecord is the on-disk shape of the long-term summary.
type RollingRecord struct {
	Summary   string `json:"summary"`
	UpdatedAt string `json:"updated_at"`
}

// Store reads and writes memory files under a base directory. The layout
// is <base>/<user>/daily/<YYYY-MM-DD>.json and <base>/<user>/rolling.json.
type Store struct {
	baseDir string
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string, opts ...Option) *Store {
	s := &Store{
		baseDir: baseDir,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TodayDateStr returns today's date bucket in Asia/Jakarta.
func (s *Store) TodayDateStr() string {
	return s.now().In(Jakarta).Format("2006-01-02")
}

// YesterdayDateStr returns yesterday's date bucket in Asia/Jakarta.
func (s *Store) YesterdayDateStr() string {
	return s.now().In(Jakarta).AddDate(0, 0, -1).Format("2006-01-02")
}

// AppendTurn records one exchange in today's daily file, creating it on
// first use.
func (s *Store) AppendTurn(userID, question, answer string) error {
	p, err := s.dailyPath(userID, "")
	if err != nil {
		return err
	}
	rec, err := readDailyFile(p)
	if err != nil {
		return err
	}
	rec.Turns = append(rec.Turns, Turn{Q: question, A: answer})
	return writeJSON(p, rec)
}

// UpdateDailySummary replaces today's summary, keeping recorded turns.
func (s *Store) UpdateDailySummary(userID, summary string) error {
	p, err := s.dailyPath(userID, "")
	if err != nil {
		return err
	}
	rec, err := readDailyFile(p)
	if err != nil {
		return err
	}
	rec.DailySummary = strings.TrimSpace(summary)
	return writeJSON(p, rec)
}

// ReadDaily returns the record for the given date ("" = today). A missing
// file reads as an empty record.
func (s *Store) ReadDaily(userID, dateStr string) (DailyRecord, error) {
	p, err := s.dailyPath(userID, dateStr)
	if err != nil {
		return DailyRecord{}, err
	}
	return readDailyFile(p)
}

// UpdateRollingSummary overwrites the long-term summary with a timestamp.
func (s *Store) UpdateRollingSummary(userID, summary string) error {
	dir, err := s.userDir(userID)
	if err != nil {
		return err
	}
	rec := RollingRecord{
		Summary:   strings.TrimSpace(summary),
		UpdatedAt: s.now().In(Jakarta).Format(time.RFC3339),
	}
	return writeJSON(filepath.Join(dir, "rolling.json"), rec)
}

// ReadRollingSummary returns the long-term summary, empty when none exists.
func (s *Store) ReadRollingSummary(userID string) (string, error) {
	dir, err := s.userDir(userID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, "rolling.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading rolling summary: %w", err)
	}
	var rec RollingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("parsing rolling summary: %w", err)
	}
	return rec.Summary, nil
}

func (s *Store) userDir(userID string) (string, error) {
	dir := filepath.Join(s.baseDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating memory dir: %w", err)
	}
	return dir, nil
}

func (s *Store) dailyPath(userID, dateStr string) (string, error) {
	if dateStr == "" {
		dateStr = s.TodayDateStr()
	}
	dir, err := s.userDir(userID)
	if err != nil {
		return "", err
	}
	daily := filepath.Join(dir, "daily")
	if err := os.MkdirAll(daily, 0o755); err != nil {
		return "", fmt.Errorf("creating daily dir: %w", err)
	}
	return filepath.Join(daily, dateStr+".json"), nil
}

func readDailyFile(path string) (DailyRecord, error) {
	rec := DailyRecord{Turns: []Turn{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("reading daily record: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parsing daily record: %w", err)
	}
	return rec, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding memory record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing memory record: %w", err)
	}
	return nil
}
