package reminder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// record is the on-disk shape of one reminder.
type record struct {
	ID       string `json:"id,omitempty"`
	Desc     string `json:"desc"`
	Datetime string `json:"datetime"`
	Repeat   string `json:"repeat"`
}

func encode(reminders []Reminder) ([]byte, error) {
	records := make([]record, 0, len(reminders))
	for _, r := range reminders {
		records = append(records, record{
			ID:       r.ID,
			Desc:     r.Description,
			Datetime: FormatTime(r.DueAt),
			Repeat:   string(r.Repeat),
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decode parses file contents. Records without an id get one from newID.
func decode(data []byte, newID func() string) ([]Reminder, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	reminders := make([]Reminder, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		desc := strings.TrimSpace(rec.Desc)
		if desc == "" {
			return nil, fmt.Errorf("record %d: empty desc", i)
		}
		due, err := ParseTime(rec.Datetime)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		repeat, err := ParseRepeat(rec.Repeat)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		id := rec.ID
		if id == "" || seen[id] {
			id = newID()
		}
		seen[id] = true

		reminders = append(reminders, Reminder{
			ID:          id,
			Description: desc,
			DueAt:       due,
			Repeat:      repeat,
		})
	}
	return reminders, nil
}

// readFile loads the reminders file. A missing file yields an empty collection.
func readFile(path string, newID func() string) ([]Reminder, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	reminders, err := decode(data, newID)
	if err != nil {
		return nil, &PersistenceError{Op: "parse", Path: path, Err: err}
	}
	return reminders, nil
}

// writeFile replaces the reminders file atomically via a temp file and rename.
func writeFile(path string, reminders []Reminder) error {
	data, err := encode(reminders)
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: fmt.Errorf("create dir: %w", err)}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: fmt.Errorf("create temp file: %w", err)}
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err == nil {
		err = tmpFile.Sync()
	}
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return &PersistenceError{Op: "write", Path: path, Err: fmt.Errorf("write temp file: %w", err)}
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return &PersistenceError{Op: "write", Path: path, Err: fmt.Errorf("rename temp file: %w", err)}
	}
	return nil
}
