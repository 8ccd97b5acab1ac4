package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// fileStore implements Store using a single JSON file on disk. The file is
// read on every access and rewritten whole on every mutation, so a second
// process start observes the same values.
type fileStore struct {
	path string
}

func (s *fileStore) Get(ctx context.Context, key string) (string, error) {
	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *fileStore) Set(ctx context.Context, key string, value string) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *fileStore) Remove(ctx context.Context, key string) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *fileStore) Close() error {
	return nil
}

func (s *fileStore) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		// The file doesn't exist so nothing is stored yet
		return map[string]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	values := map[string]string{}
	err = json.Unmarshal(b, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session file: %w", err)
	}
	return values, nil
}

func (s *fileStore) write(values map[string]string) error {
	b, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal session values: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	// 0600: the file holds a bearer credential
	err = os.WriteFile(s.path, b, 0600)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
