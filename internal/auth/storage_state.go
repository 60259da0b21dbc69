package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// storageState is the on-disk shape written by browser automation tools
// (a top-level cookies array plus per-origin local storage, which we ignore).
type storageState struct {
	Cookies []Cookie `json:"cookies"`
}

// ImportStorageState reads a storage-state JSON file and saves it as a named
// session. This lets sessions captured by external browser tooling be reused
// for authenticated rendering.
func ImportStorageState(name, path, siteURL string) (*SessionData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state: %w", err)
	}
	var state storageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse storage state: %w", err)
	}
	if len(state.Cookies) == 0 {
		return nil, fmt.Errorf("storage state %s contains no cookies", path)
	}

	session := &SessionData{
		Name:      name,
		URL:       siteURL,
		Cookies:   state.Cookies,
		CreatedAt: time.Now(),
	}
	if exp := earliestExpiry(state.Cookies); !exp.IsZero() {
		session.ExpiresAt = exp
	}
	if err := Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

func earliestExpiry(cookies []Cookie) time.Time {
	var earliest time.Time
	for _, c := range cookies {
		if c.Expires <= 0 {
			continue
		}
		exp := time.Unix(int64(c.Expires), 0)
		if earliest.IsZero() || exp.Before(earliest) {
			earliest = exp
		}
	}
	return earliest
}
