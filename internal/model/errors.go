package model

import (
	"errors"
	"fmt"
)

// Every failure below is terminal to the run: there is no partial-success
// path that returns a half-built workflow. A half-created graph of
// entities with no root linking them is worse than no graph at all.
var (
	// ErrDuplicateWorkflow is returned by the pre-flight check when the
	// target graph already holds a workflow with the same title and
	// research objective.
	ErrDuplicateWorkflow = errors.New("workflow with this title and objective already published")

	// ErrNoDOI is returned when portal export is requested but the
	// publication answer carries no DOI to look up.
	ErrNoDOI = errors.New("no DOI provided for the publication")

	// ErrDOINotFound is returned when the citation lookup resolves no
	// bibliographic data for the given DOI.
	ErrDOINotFound = errors.New("DOI could not be resolved to citation data")

	// ErrNoCredentials is returned when portal export is requested but
	// no entity store credentials are configured.
	ErrNoCredentials = errors.New("portal export requires target graph credentials")
)

// MissingRequiredAnswerError reports an absent or unrecognized mandatory
// selection (operation, workflow type, export target, research objective).
type MissingRequiredAnswerError struct {
	Field string
}

func (e *MissingRequiredAnswerError) Error() string {
	return fmt.Sprintf("required answer missing or unrecognized: %s", e.Field)
}

// MissingRequiredEntityError reports a declared entity instance that has
// neither a resolvable identifier nor a usable label/description pair.
type MissingRequiredEntityError struct {
	Category string
	Index    int
}

func (e *MissingRequiredEntityError) Error() string {
	return fmt.Sprintf("entity %s[%d] has neither an identifier nor a label and description", e.Category, e.Index)
}

// EntityStoreError wraps a failed create call against the entity store.
// Creates are never retried: a duplicate entity is worse than an aborted
// run the operator can re-issue.
type EntityStoreError struct {
	Op  string
	Err error
}

func (e *EntityStoreError) Error() string {
	return fmt.Sprintf("entity store %s: %v", e.Op, e.Err)
}

func (e *EntityStoreError) Unwrap() error {
	return e.Err
}
