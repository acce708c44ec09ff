// Package prefs provides the JSON preferences file: cached credentials and
// the most recent session summary.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"xsim/internal/model"

	"github.com/adrg/xdg"
)

const prefsFile = "preferences.json"

// Keys used in the preferences file.
const (
	KeyToken       = "token"
	KeyUserID      = "user_id"
	KeyLastSummary = "last_summary"
)

// Prefs stores preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
	path   string
}

// DefaultPath returns $XDG_CONFIG_HOME/xsim/preferences.json.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "xsim", prefsFile)
}

// Load reads preferences from the default path.
func Load() *Prefs {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads preferences from path. A missing or corrupt file yields
// empty preferences.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]json.RawMessage),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	if p.values == nil {
		p.values = make(map[string]json.RawMessage)
	}
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string { return p.path }

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	return os.WriteFile(p.path, data, 0o600)
}

func (p *Prefs) get(key string, out any) bool {
	p.mu.RLock()
	raw, ok := p.values[key]
	p.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (p *Prefs) set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	p.mu.Lock()
	p.values[key] = raw
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	var s string
	p.get(key, &s)
	return s
}

// SetString stores a string preference.
func (p *Prefs) SetString(key, val string) {
	p.set(key, val)
}

// Int returns an int preference, or fallback if not set.
func (p *Prefs) Int(key string, fallback int) int {
	var n int
	if !p.get(key, &n) {
		return fallback
	}
	return n
}

// SetInt stores an int preference.
func (p *Prefs) SetInt(key string, val int) {
	p.set(key, val)
}

// Delete removes a preference.
func (p *Prefs) Delete(key string) {
	p.mu.Lock()
	delete(p.values, key)
	p.mu.Unlock()
}

// Token returns the cached bearer token.
func (p *Prefs) Token() string { return p.String(KeyToken) }

// UserID returns the cached operator id, or 0.
func (p *Prefs) UserID() int { return p.Int(KeyUserID, 0) }

// SetCredentials caches the bearer token and operator id.
func (p *Prefs) SetCredentials(token string, userID int) {
	p.SetString(KeyToken, token)
	p.SetInt(KeyUserID, userID)
}

// LastSummary returns the most recently cached session summary.
func (p *Prefs) LastSummary() (model.Summary, bool) {
	var s model.Summary
	ok := p.get(KeyLastSummary, &s)
	return s, ok
}

// SetLastSummary caches a session summary.
func (p *Prefs) SetLastSummary(s model.Summary) {
	p.set(KeyLastSummary, s)
}
