// Package seed provides helpers to create demo data for development databases.
package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset describes how much demo data to generate.
type Preset struct {
	Name            string   `yaml:"name"`
	Users           int      `yaml:"users"`
	PostsPerUser    int      `yaml:"posts_per_user"`
	CommentsPerPost int      `yaml:"comments_per_post"`
	LikeRatio       float64  `yaml:"like_ratio"`
	BookmarkRatio   float64  `yaml:"bookmark_ratio"`
	Tags            []string `yaml:"tags"`
	Password        string   `yaml:"password"`
	Seed            int64    `yaml:"seed"`
}

// DefaultPreset is used when no preset file is given.
var DefaultPreset = Preset{
	Name:            "default",
	Users:           20,
	PostsPerUser:    3,
	CommentsPerPost: 2,
	LikeRatio:       0.3,
	BookmarkRatio:   0.1,
	Tags:            []string{"go", "python", "javascript", "devops", "career", "opensource"},
	Password:        "password123",
}

// LoadPreset reads a YAML preset file. Missing keys take their DefaultPreset value.
func LoadPreset(path string) (Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(raw)
}

// ParsePreset decodes a YAML preset on top of DefaultPreset and validates it.
func ParsePreset(raw []byte) (Preset, error) {
	p := DefaultPreset
	p.Tags = append([]string(nil), DefaultPreset.Tags...)
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Validate rejects presets that cannot be generated.
func (p Preset) Validate() error {
	switch {
	case p.Users < 1:
		return errors.New("preset: users must be at least 1")
	case p.PostsPerUser < 0 || p.CommentsPerPost < 0:
		return errors.New("preset: counts must not be negative")
	case p.LikeRatio < 0 || p.LikeRatio > 1 || p.BookmarkRatio < 0 || p.BookmarkRatio > 1:
		return errors.New("preset: ratios must be between 0 and 1")
	case p.Password == "":
		return errors.New("preset: password is required")
	}
	return nil
}
