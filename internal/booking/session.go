package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pulse-backend/internal/model"
)

// SessionFile persists the most recent reservation for session continuity,
// the way the browser client keeps it in local storage.
type SessionFile struct {
	path string
}

// NewSessionFile creates a session store at the given path.
func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

// SaveLast records the most recent reservation, replacing any prior one.
func (s *SessionFile) SaveLast(r model.Reservation) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode last reservation: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write last reservation: %w", err)
	}
	return nil
}

// LoadLast returns the persisted reservation. The second return is false
// when nothing has been saved yet.
func (s *SessionFile) LoadLast() (model.Reservation, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Reservation{}, false, nil
		}
		return model.Reservation{}, false, fmt.Errorf("read last reservation: %w", err)
	}
	var r model.Reservation
	if err := json.Unmarshal(b, &r); err != nil {
		return model.Reservation{}, false, fmt.Errorf("decode last reservation: %w", err)
	}
	return r, true, nil
}
