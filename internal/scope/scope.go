// Package scope builds and applies share scope descriptors: which profile
// sections and product subsections a recipient is allowed to see and edit.
package scope

import (
	"encoding/json"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
)

// Section names form a closed set; anything outside it is dropped during
// normalization rather than rejected.
var knownSections = map[string]bool{
	"contact":    true,
	"address":    true,
	"employment": true,
	"vehicle":    true,
	"insurance":  true,
}

func KnownSection(name string) bool {
	return knownSections[name]
}

type ProductSelection struct {
	InstanceID  string   `json:"instance_id"`
	Subsections []string `json:"subsections"`
}

// Selection is the owner's raw choice of what a share should expose.
type Selection struct {
	Sections []string           `json:"sections"`
	Products []ProductSelection `json:"products"`
}

// Build normalizes a selection into an immutable scope. Unknown section names
// and product instances with no subsection keys contribute nothing.
func Build(sel Selection) models.Scope {
	sc := models.Scope{
		Sections: make(map[string]bool),
		Products: make(map[string][]string),
	}

	for _, name := range sel.Sections {
		if knownSections[name] {
			sc.Sections[name] = true
		}
	}

	for _, p := range sel.Products {
		if p.InstanceID == "" {
			continue
		}
		seen := make(map[string]bool)
		var keys []string
		for _, k := range p.Subsections {
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
		// An instance with zero allowed subsections is equivalent to not
		// being listed at all.
		if len(keys) > 0 {
			sc.Products[p.InstanceID] = keys
		}
	}

	return sc
}

// Filter returns only the portions of d whose keys are present in sc. It is
// used both to build a share's initial snapshot from the live profile and to
// strip recipient-submitted edits down to what the share actually exposes.
// Out-of-scope keys are dropped silently; filtering is idempotent.
func Filter(d models.ProfileData, sc models.Scope) models.ProfileData {
	out := models.ProfileData{}

	for name, value := range d.Sections {
		if !sc.AllowsSection(name) {
			continue
		}
		if out.Sections == nil {
			out.Sections = make(map[string]json.RawMessage)
		}
		out.Sections[name] = value
	}

	for instanceID, subsections := range d.Products {
		for key, value := range subsections {
			if !sc.AllowsSubsection(instanceID, key) {
				continue
			}
			if out.Products == nil {
				out.Products = make(map[string]map[string]json.RawMessage)
			}
			if out.Products[instanceID] == nil {
				out.Products[instanceID] = make(map[string]json.RawMessage)
			}
			out.Products[instanceID][key] = value
		}
	}

	return out
}

// Merge applies edits on top of base. Each top-level section is replaced as
// an atomic unit; product responses are replaced per (instance, subsection)
// pair, leaving everything else untouched.
func Merge(base, edits models.ProfileData) models.ProfileData {
	out := models.ProfileData{}

	if len(base.Sections) > 0 || len(edits.Sections) > 0 {
		out.Sections = make(map[string]json.RawMessage, len(base.Sections))
		for name, value := range base.Sections {
			out.Sections[name] = value
		}
		for name, value := range edits.Sections {
			out.Sections[name] = value
		}
	}

	if len(base.Products) > 0 || len(edits.Products) > 0 {
		out.Products = make(map[string]map[string]json.RawMessage, len(base.Products))
		for instanceID, subsections := range base.Products {
			out.Products[instanceID] = make(map[string]json.RawMessage, len(subsections))
			for key, value := range subsections {
				out.Products[instanceID][key] = value
			}
		}
		for instanceID, subsections := range edits.Products {
			if out.Products[instanceID] == nil {
				out.Products[instanceID] = make(map[string]json.RawMessage, len(subsections))
			}
			for key, value := range subsections {
				out.Products[instanceID][key] = value
			}
		}
	}

	return out
}
