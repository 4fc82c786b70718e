package render

import (
	"strings"
	"testing"

	"github.com/mardigraph/graphscribe/internal/model"
)

func TestRenderer_Document_Mathematical(t *testing.T) {
	wc := &model.WorkflowContext{
		Type: model.WorkflowMathematical,
		Answers: model.AnswerRecord{
			"workflow/title":       "Turbulence Study",
			"workflow/objective":   "Quantify mixing",
			"discipline/list":      "mathematics; physics",
			"publication/main":     "Yes: 10.1000/abc",
			"model/entity":         "mardi:Q9",
			"model/name":           "Navier-Stokes equations",
			"method/entity_0":      "mardi:Q7",
			"method/name_0":        "finite element method",
			"method/description_0": "numerical method",
			"method/entity_1":      "mardi:Q8",
			"method/name_1":        "finite volume method",
		},
	}

	doc, err := New().Document(wc)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if !strings.Contains(doc, "# Turbulence Study") {
		t.Errorf("title missing:\n%s", doc)
	}
	if !strings.Contains(doc, "Quantify mixing") {
		t.Errorf("objective missing:\n%s", doc)
	}
	// List answers break onto lines for display.
	if !strings.Contains(doc, "mathematics<br/>physics") {
		t.Errorf("discipline list not reformatted:\n%s", doc)
	}
	// The selection prefix disappears in cells.
	if strings.Contains(doc, "Yes: 10.1000/abc") {
		t.Errorf("publication prefix not stripped:\n%s", doc)
	}
	if !strings.Contains(doc, "10.1000/abc") {
		t.Errorf("publication DOI missing:\n%s", doc)
	}
	if !strings.Contains(doc, "Navier-Stokes equations") {
		t.Errorf("model row missing:\n%s", doc)
	}

	// The method table grows one row per instance.
	if !strings.Contains(doc, "| mardi:Q7 | finite element method | numerical method |") {
		t.Errorf("method row 0 missing:\n%s", doc)
	}
	if !strings.Contains(doc, "| mardi:Q8 | finite volume method |") {
		t.Errorf("method row 1 missing:\n%s", doc)
	}

	// Empty categories render as a dash.
	if !strings.Contains(doc, "### Software\n\n—") {
		t.Errorf("empty software table not dashed:\n%s", doc)
	}

	// Every placeholder was substituted.
	if strings.Contains(doc, "{{") {
		t.Errorf("unsubstituted placeholder remains:\n%s", doc)
	}
}

func TestRenderer_Document_Experimental(t *testing.T) {
	wc := &model.WorkflowContext{
		Type: model.WorkflowExperimental,
		Answers: model.AnswerRecord{
			"workflow/title":     "Field Measurements",
			"workflow/objective": "Collect samples",
		},
	}

	doc, err := New().Document(wc)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}

	if !strings.Contains(doc, "## Experimental Setup") {
		t.Errorf("experimental section missing:\n%s", doc)
	}
	if strings.Contains(doc, "Mathematical Model") {
		t.Errorf("experimental template must not carry the model section:\n%s", doc)
	}
}

func TestRenderer_Document_UnknownType(t *testing.T) {
	wc := &model.WorkflowContext{Type: model.WorkflowUnknown, Answers: model.AnswerRecord{}}
	if _, err := New().Document(wc); err == nil {
		t.Error("expected error for unknown workflow type")
	}
}
