package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	APIKey string `yaml:"api_key"`
	AppID  string `yaml:"app_id"`
}

// FileConfig is the layout of the credentials file:
//
//	default:
//	  api_key: ...
//	apps:
//	  my-app:
//	    api_key: ...
//	    app_id: "42"
type FileConfig struct {
	Default fileEntry            `yaml:"default"`
	Apps    map[string]fileEntry `yaml:"apps"`
}

// FileStore reads credentials from a local YAML file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Name() string { return "credentials file" }

func (s *FileStore) Lookup(_ context.Context, app string) (map[string]string, error) {
	if s.Path == "" {
		return nil, ErrStoreUnavailable
	}

	data, err := os.ReadFile(filepath.Clean(s.Path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrStoreUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}

	entry := cfg.Default
	if app != "" {
		if e, ok := cfg.Apps[app]; ok {
			if e.APIKey != "" {
				entry.APIKey = e.APIKey
			}
			if e.AppID != "" {
				entry.AppID = e.AppID
			}
		}
	}

	return map[string]string{KeyAPIKey: entry.APIKey, KeyAppID: entry.AppID}, nil
}
