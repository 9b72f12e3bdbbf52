package config

import (
	"encoding/json"
	"os"
)

// Window is the persisted main-window geometry. It is remembered
// between sessions so the app reopens where the user left it.
type Window struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultWindow is used when nothing was persisted yet.
func DefaultWindow() Window {
	return Window{X: 100, Y: 100, Width: 1280, Height: 800}
}

// LoadWindow reads the persisted geometry. A missing or unreadable
// file silently yields the default; window placement is never worth
// failing startup over.
func LoadWindow(path string) Window {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultWindow()
	}
	w := DefaultWindow()
	if err := json.Unmarshal(data, &w); err != nil {
		return DefaultWindow()
	}
	if w.Width <= 0 || w.Height <= 0 {
		return DefaultWindow()
	}
	return w
}

// SaveWindow persists the geometry.
func SaveWindow(path string, w Window) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
