package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL     = "http://localhost:3000"
	tokenFileName     = ".it_inventory_token"
	checklistFileName = ".it_inventory_checklist.json"
)

// ErrNotLoggedIn is returned when no token has been stored yet.
var ErrNotLoggedIn = errors.New("not logged in: run `inventory login` first")

// APIURL returns the base URL for the inventory API.
// It can be overridden with the INVENTORY_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("INVENTORY_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// ==========================
// Token Storage
// ==========================

func TokenPath() string {
	return homeFile(tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the stored token. A missing file is not an error.
func ClearToken() error {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ChecklistPath is where issuance checklists are kept between runs.
func ChecklistPath() string {
	return homeFile(checklistFileName)
}

func homeFile(name string) string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, name)
}
