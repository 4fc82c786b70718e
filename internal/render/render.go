// Package render turns the fully resolved answers of one run into the
// final workflow document. The template is selected by the workflow-type
// variant; per-category tables grow with the user's instance counts.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mardigraph/graphscribe/internal/model"
)

var placeholderRE = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Renderer renders workflow documents as markdown.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Document renders the document for one run from its resolved answers.
func (r *Renderer) Document(wc *model.WorkflowContext) (string, error) {
	var def templateDef
	switch wc.Type {
	case model.WorkflowMathematical:
		def = mathematicalTemplate
	case model.WorkflowExperimental:
		def = experimentalTemplate
	default:
		return "", fmt.Errorf("no template for workflow type %s", wc.Type)
	}

	doc := def.text
	for _, tab := range def.tables {
		doc = strings.Replace(doc, tab.marker, expandTable(tab, wc.Answers), 1)
	}

	doc = placeholderRE.ReplaceAllStringFunc(doc, func(m string) string {
		key := strings.Trim(m, "{}")
		return cellValue(wc.Answers.Get(key))
	})

	return doc, nil
}

// expandTable renders a markdown table with one row per user-entered
// instance; empty categories render as a dash so the document stays total.
func expandTable(tab tableDef, answers model.AnswerRecord) string {
	count := answers.SetCount(tab.prefix)
	if count == 0 {
		return "—"
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(tab.headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" -- |", len(tab.headers)) + "\n")
	for i := 0; i < count; i++ {
		cells := make([]string, len(tab.keys))
		for n, key := range tab.keys {
			cells[n] = cellValue(answers.Indexed(key, i))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// cellValue normalizes one answer for display: the "Yes: " selection
// prefix disappears and instance-separated lists break onto lines.
func cellValue(v string) string {
	v = strings.TrimPrefix(v, "Yes: ")
	v = strings.ReplaceAll(v, model.InstanceSeparator, "<br/>")
	return v
}
