package model

import (
	"fmt"
	"strings"
)

// Origin encodes where, if anywhere, an entity already lives.
type Origin int

const (
	// OriginNone marks an entity the user described from scratch.
	OriginNone Origin = iota
	// OriginTarget marks an entity that already exists on the target graph.
	OriginTarget
	// OriginReference marks an entity known only to the reference graph.
	OriginReference
)

func (o Origin) String() string {
	switch o {
	case OriginTarget:
		return "target"
	case OriginReference:
		return "reference"
	default:
		return "none"
	}
}

// EntityReference is a parsed "<tag>:<id>" answer fragment. Invariant:
// Origin == OriginNone implies ID == "".
type EntityReference struct {
	Origin Origin
	ID     string
}

// ParseReference parses a string-encoded entity reference such as
// "mardi:Q123", "wikidata:Q42" or "". Tags are matched against the
// configured target and reference graph namespace markers. Anything
// unrecognized is treated as brand-new.
func ParseReference(s, targetTag, referenceTag string) EntityReference {
	s = strings.TrimSpace(s)
	if s == "" {
		return EntityReference{}
	}
	tag, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return EntityReference{}
	}
	switch tag {
	case targetTag:
		return EntityReference{Origin: OriginTarget, ID: id}
	case referenceTag:
		return EntityReference{Origin: OriginReference, ID: id}
	}
	return EntityReference{}
}

// EntityCandidate is the decomposed, not-yet-resolved representation of one
// entity the user described.
type EntityCandidate struct {
	Label       string
	Description string
	Reference   EntityReference

	// Extra carries category-specific sub-fields (formulas, external
	// identifiers, display names). Values default to "" rather than
	// being absent, keeping downstream formatting total.
	Extra map[string]string
}

// Usable reports whether the candidate carries enough data to create a
// fresh entity when no existing identifier is found.
func (c EntityCandidate) Usable() bool {
	return c.Label != "" && c.Description != ""
}

// PendingID is the placeholder identifier recorded when a run is not
// configured to persist but downstream rendering still needs a reference.
const PendingID = "tbd"

// ResolvedEntity is the outcome of existence resolution.
type ResolvedEntity struct {
	ID     string
	Exists bool

	// Label and Description echo the display pair of the matched entity
	// so callers can surface resolved text instead of raw user input.
	Label       string
	Description string
}

// Pending reports whether resolution deferred creation to a later
// persisting run.
func (r ResolvedEntity) Pending() bool {
	return r.ID == PendingID
}

// Tagged renders the resolved identifier in answer notation, e.g. "mardi:Q7".
func (r ResolvedEntity) Tagged(tag string) string {
	return fmt.Sprintf("%s:%s", tag, r.ID)
}
