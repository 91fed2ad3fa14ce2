package config

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile names used by the handlers.
const (
	ChatProfile       = "chat"
	StreamProfile     = "stream"
	LessonPlanProfile = "lesson_plan"
)

// Response formats a profile may ask the provider for.
const (
	FormatText       = "text"
	FormatJSONObject = "json_object"
)

//go:embed profiles.yaml
var defaultProfiles []byte

// Profile describes how a single kind of chat request is sent to the llm.
type Profile struct {
	Model          string `yaml:"model"`
	MaxTokens      int    `yaml:"max_tokens"`
	System         string `yaml:"system"`
	ResponseFormat string `yaml:"response_format"`
}

// JSON reports whether the profile asks for a json object response.
func (p Profile) JSON() bool {
	return p.ResponseFormat == FormatJSONObject
}

// Profiles maps profile names to profiles.
type Profiles map[string]Profile

// ParseProfiles decodes a yaml profiles document.
func ParseProfiles(b []byte) (Profiles, error) {
	var doc struct {
		Profiles Profiles `yaml:"profiles"`
	}

	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse profiles")
	}

	for name, p := range doc.Profiles {
		if p.Model == "" {
			return nil, errors.Errorf("profile %q: model is required", name)
		}

		switch p.ResponseFormat {
		case "", FormatText, FormatJSONObject:
		default:
			return nil, errors.Errorf("profile %q: unsupported response_format %q", name, p.ResponseFormat)
		}

		if p.JSON() && !supportsJSONMode(p.Model) {
			return nil, errors.Errorf("profile %q: model %s does not support response_format %s", name, p.Model, FormatJSONObject)
		}

		if p.MaxTokens < 0 {
			return nil, errors.Errorf("profile %q: max_tokens must not be negative", name)
		}
	}

	return doc.Profiles, nil
}

// jsonModeless are the models the provider rejects json_object responses
// for. Later snapshots and the gpt-4o family accept them.
var jsonModeless = map[string]bool{
	"gpt-4":              true,
	"gpt-4-0314":         true,
	"gpt-4-0613":         true,
	"gpt-4-32k":          true,
	"gpt-4-32k-0613":     true,
	"gpt-3.5-turbo-0301": true,
	"gpt-3.5-turbo-0613": true,
	"gpt-3.5-turbo-16k":  true,
}

func supportsJSONMode(model string) bool {
	return !jsonModeless[model]
}

// LoadProfiles reads the profiles from path, or the built in profiles when
// path is empty.
func LoadProfiles(path string) (Profiles, error) {
	if path == "" {
		return ParseProfiles(defaultProfiles)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profiles %s", path)
	}

	return ParseProfiles(b)
}

// Get returns the named profile.
func (p Profiles) Get(name string) (Profile, error) {
	profile, ok := p[name]
	if !ok {
		return Profile{}, errors.Errorf("unknown profile %q", name)
	}

	return profile, nil
}
