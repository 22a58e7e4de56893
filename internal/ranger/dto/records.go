package dto

import (
	"net/url"

	"github.com/Alwanly/heroku-ranger/internal/models"
)

// DependencyRecord is the envelope the Ranger API wraps every dependency in.
type DependencyRecord struct {
	Dependency models.Dependency `json:"dependency"`
}

// WatcherRecord is the envelope the Ranger API wraps every watcher in.
type WatcherRecord struct {
	Watcher models.Watcher `json:"watcher"`
}

const (
	DefaultDependencyName = "Website"
	DefaultCheckEvery     = "1"
)

// CreateDependencyRequest is posted as nested form fields, dependency[url] etc.
type CreateDependencyRequest struct {
	Name       string `validate:"required"`
	URL        string `validate:"required,url"`
	CheckEvery string `validate:"required,numeric"`
}

func NewCreateDependencyRequest(rawURL string) CreateDependencyRequest {
	return CreateDependencyRequest{
		Name:       DefaultDependencyName,
		URL:        rawURL,
		CheckEvery: DefaultCheckEvery,
	}
}

func (r CreateDependencyRequest) Form(apiKey string) url.Values {
	v := url.Values{}
	v.Set("dependency[name]", r.Name)
	v.Set("dependency[url]", r.URL)
	v.Set("dependency[check_every]", r.CheckEvery)
	v.Set("api_key", apiKey)
	return v
}

type CreateWatcherRequest struct {
	Email string `validate:"required,email"`
}

func (r CreateWatcherRequest) Form(apiKey string) url.Values {
	v := url.Values{}
	v.Set("watcher[email]", r.Email)
	v.Set("api_key", apiKey)
	return v
}

func UnwrapDependencies(records []DependencyRecord) []models.Dependency {
	out := make([]models.Dependency, 0, len(records))
	for _, r := range records {
		out = append(out, r.Dependency)
	}
	return out
}

func UnwrapWatchers(records []WatcherRecord) []models.Watcher {
	out := make([]models.Watcher, 0, len(records))
	for _, r := range records {
		out = append(out, r.Watcher)
	}
	return out
}

func WrapDependencies(deps []models.Dependency) []DependencyRecord {
	out := make([]DependencyRecord, 0, len(deps))
	for _, d := range deps {
		out = append(out, DependencyRecord{Dependency: d})
	}
	return out
}

func WrapWatchers(watchers []models.Watcher) []WatcherRecord {
	out := make([]WatcherRecord, 0, len(watchers))
	for _, w := range watchers {
		out = append(out, WatcherRecord{Watcher: w})
	}
	return out
}
