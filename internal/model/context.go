package model

import "strings"

// WorkflowType distinguishes the two documented workflow shapes; the
// renderer selects its template by this variant.
type WorkflowType int

const (
	WorkflowUnknown WorkflowType = iota
	WorkflowMathematical
	WorkflowExperimental
)

func (t WorkflowType) String() string {
	switch t {
	case WorkflowMathematical:
		return "mathematical"
	case WorkflowExperimental:
		return "experimental"
	}
	return "unknown"
}

// ParseWorkflowType recognizes the workflow-type selection answer.
func ParseWorkflowType(s string) WorkflowType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mathematical", "theoretical":
		return WorkflowMathematical
	case "experimental", "computational":
		return WorkflowExperimental
	}
	return WorkflowUnknown
}

// ExportTarget selects what happens after reconciliation.
type ExportTarget int

const (
	ExportUnknown ExportTarget = iota
	// ExportToMarkdown renders the document locally; nothing is written
	// to the target graph.
	ExportToMarkdown
	// ExportToPreview renders the document for display without persisting.
	ExportToPreview
	// ExportToPortal persists entities to the target graph and appends
	// the rendered document to the portal wiki.
	ExportToPortal
)

func (e ExportTarget) String() string {
	switch e {
	case ExportToMarkdown:
		return ExportMarkdown
	case ExportToPreview:
		return ExportPreview
	case ExportToPortal:
		return ExportPortal
	}
	return "unknown"
}

// ParseExportTarget recognizes the export-target selection answer.
func ParseExportTarget(s string) ExportTarget {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ExportMarkdown:
		return ExportToMarkdown
	case ExportPreview:
		return ExportToPreview
	case ExportPortal:
		return ExportToPortal
	}
	return ExportUnknown
}

// Persist reports whether this export target writes to the target graph.
func (e ExportTarget) Persist() bool {
	return e == ExportToPortal
}

// WorkflowContext is the accumulating state of one pipeline run. It is
// created at the start of a run, exclusively owned by it, and discarded
// at the end; it is never persisted.
type WorkflowContext struct {
	Answers AnswerRecord

	Title     string
	Objective string
	Type      WorkflowType
	Export    ExportTarget

	// Identifiers aggregated while building, in resolution order, for
	// the final workflow root entity.
	Publication string
	Model       string
	Methods     []string
	Software    []string
	Inputs      []string
	Outputs     []string
	Disciplines []string
}

// LinkedEntities returns every model/method/software/dataset identifier
// the workflow root links through its "uses" relation, in declaration
// order, skipping placeholders from non-persisting resolution.
func (wc *WorkflowContext) LinkedEntities() []string {
	var ids []string
	appendReal := func(candidates ...string) {
		for _, id := range candidates {
			if id != "" && id != PendingID {
				ids = append(ids, id)
			}
		}
	}
	appendReal(wc.Model)
	appendReal(wc.Methods...)
	appendReal(wc.Software...)
	appendReal(wc.Inputs...)
	appendReal(wc.Outputs...)
	return ids
}
