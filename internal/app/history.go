package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
)

func historyFilePath() string {
	base := defaultUserConfigPath()
	if strings.TrimSpace(base) == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(base), "history.jsonl")
}

func historyEntryFor(res contract.ReminderResult) contract.HistoryEntry {
	return contract.HistoryEntry{
		Input:   res.Input,
		Command: res.Command,
		Link:    res.Link,
	}
}

func appendHistory(entry contract.HistoryEntry) error {
	path := historyFilePath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}

func decodeHistoryLine(line string) (contract.HistoryEntry, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return contract.HistoryEntry{}, false
	}
	var e contract.HistoryEntry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return contract.HistoryEntry{}, false
	}
	return e, true
}

// readHistory returns every entry, oldest first. Corrupt lines are skipped.
func readHistory() ([]contract.HistoryEntry, error) {
	path := historyFilePath()
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(raw), "\n")
	out := make([]contract.HistoryEntry, 0, len(lines))
	for _, line := range lines {
		if e, ok := decodeHistoryLine(line); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// readHistoryPage reads the file backwards from the end and returns up to
// limit entries, newest first, after skipping offset newer ones.
func readHistoryPage(limit, offset int) ([]contract.HistoryEntry, bool, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		return nil, false, fmt.Errorf("offset must be >= 0")
	}
	path := historyFilePath()
	if path == "" {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, err
	}

	need := limit + offset + 1
	newest := make([]contract.HistoryEntry, 0, need)
	pos := info.Size()
	carry := ""
	buf := make([]byte, 8192)
	for pos > 0 && len(newest) < need {
		n := int64(len(buf))
		if n > pos {
			n = pos
		}
		pos -= n
		if _, err := f.ReadAt(buf[:n], pos); err != nil && err != io.EOF {
			return nil, false, err
		}
		lines := strings.Split(string(buf[:n])+carry, "\n")
		carry = lines[0]
		for i := len(lines) - 1; i >= 1 && len(newest) < need; i-- {
			if e, ok := decodeHistoryLine(lines[i]); ok {
				newest = append(newest, e)
			}
		}
	}
	if pos == 0 && len(newest) < need {
		if e, ok := decodeHistoryLine(carry); ok {
			newest = append(newest, e)
		}
	}

	if len(newest) <= offset {
		return nil, false, nil
	}
	end := min(offset+limit, len(newest))
	return newest[offset:end], len(newest) > end, nil
}

// findHistoryEntry matches a full id or a prefix shared by exactly one entry.
func findHistoryEntry(entries []contract.HistoryEntry, id string) (contract.HistoryEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return contract.HistoryEntry{}, fmt.Errorf("history id is empty")
	}
	var matches []contract.HistoryEntry
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return contract.HistoryEntry{}, fmt.Errorf("history entry not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return contract.HistoryEntry{}, fmt.Errorf("history id prefix %q matches %d entries", id, len(matches))
	}
}

func clearHistory() (int, error) {
	entries, err := readHistory()
	if err != nil {
		return 0, err
	}
	path := historyFilePath()
	if path == "" {
		return 0, nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	return len(entries), nil
}
