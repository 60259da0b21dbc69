// Package auth stores authenticated browser sessions. Sessions are written
// to the OS keyring when available, with a file fallback for CI and
// container environments. The inspection pipeline only ever reads sessions;
// writes happen through the login and session-import commands.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name used for keyring entries.
	KeyringService = "socialmeter"
	// FallbackDir holds file-based sessions relative to the home directory.
	FallbackDir = ".socialmeter/sessions"
)

// SessionData is a persisted authenticated browser session.
type SessionData struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cookie mirrors the browser cookie shape used by storage-state files, so
// sessions captured by other tooling can be imported directly.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

var fileStorage *bool

// useFileStorage reports whether sessions should go to disk instead of the
// keyring. Cached after the first probe.
func useFileStorage() bool {
	if fileStorage != nil {
		return *fileStorage
	}
	result := true
	if os.Getenv("CODESPACES") == "" && os.Getenv("CI") == "" {
		probe := "_keyring_probe_"
		if err := keyring.Set(KeyringService, probe, "ok"); err == nil {
			_ = keyring.Delete(KeyringService, probe)
			result = false
		}
	}
	fileStorage = &result
	return result
}

func sessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

// Save persists a session.
func Save(session *SessionData) error {
	if session.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	if useFileStorage() {
		dir, err := sessionDir()
		if err != nil {
			return fmt.Errorf("failed to resolve session dir: %w", err)
		}
		return os.WriteFile(filepath.Join(dir, session.Name+".json"), data, 0600)
	}
	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return updateManifest(session.Name, true)
}

// Load retrieves a session by name. Expired sessions load as an error so
// callers do not silently render unauthenticated.
func Load(name string) (*SessionData, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}
	var raw string
	if useFileStorage() {
		dir, err := sessionDir()
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		raw = string(data)
	} else {
		data, err := keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
		raw = data
	}

	var session SessionData
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session %q expired at %s", name, session.ExpiresAt.Format(time.RFC3339))
	}
	return &session, nil
}

// Delete removes a stored session.
func Delete(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if useFileStorage() {
		dir, err := sessionDir()
		if err != nil {
			return err
		}
		err = os.Remove(filepath.Join(dir, name+".json"))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return updateManifest(name, false)
}

// List returns the names of all stored sessions.
func List() ([]string, error) {
	if useFileStorage() {
		dir, err := sessionDir()
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, strings.TrimSuffix(e.Name(), ".json"))
			}
		}
		return names, nil
	}

	raw, err := keyring.Get(KeyringService, "_manifest")
	if err != nil {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}
	return names, nil
}

// updateManifest keeps the keyring session index in sync. File storage uses
// directory listing instead.
func updateManifest(name string, add bool) error {
	names, _ := List()
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	if add {
		out = append(out, name)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, "_manifest", string(data))
}
