package models

import "encoding/json"

// Scope describes which parts of a profile a share exposes. It is built once
// at share creation and never widened afterwards.
type Scope struct {
	Sections map[string]bool     `json:"sections"`
	Products map[string][]string `json:"products"`
}

func (sc Scope) AllowsSection(name string) bool {
	return sc.Sections[name]
}

func (sc Scope) AllowsSubsection(instanceID, key string) bool {
	for _, k := range sc.Products[instanceID] {
		if k == key {
			return true
		}
	}
	return false
}

// ProfileData holds the structured profile content: top-level sections plus
// per-product-instance subsection responses. The same shape is used for the
// live profile, share snapshots and edit submissions.
type ProfileData struct {
	Sections map[string]json.RawMessage            `json:"sections"`
	Products map[string]map[string]json.RawMessage `json:"products"`
}

func (d ProfileData) IsEmpty() bool {
	if len(d.Sections) > 0 {
		return false
	}
	for _, subsections := range d.Products {
		if len(subsections) > 0 {
			return false
		}
	}
	return true
}
