package catalog

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// File is the on-disk TOML layout of a catalog:
//
//	[[events]]
//	id = "application.created"
//	xp_reward = 20
//	category = "application"
//
//	[[levels]]
//	order = 1
//	required_xp = 0
//
//	[[badges]]
//	id = "first_application"
//	requirements = [{ event_id = "application.created", count = 1 }]
type File struct {
	Events []Event `json:"events" toml:"events"`
	Levels []Level `json:"levels" toml:"levels"`
	Badges []Badge `json:"badges" toml:"badges"`
}

// LoadFile reads and validates a TOML catalog.
func LoadFile(path string) (*Catalog, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return New(f.Events, f.Levels, f.Badges)
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
