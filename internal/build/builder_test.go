package build

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/sparql"
)

// fakeQuerier answers lookup queries from a substring->rows table: the
// first key contained in the query wins.
type fakeQuerier struct {
	rows    map[string][]sparql.Binding
	queries []string
	err     error
}

func (f *fakeQuerier) Select(ctx context.Context, query string) ([]sparql.Binding, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	for needle, rows := range f.rows {
		if strings.Contains(query, needle) {
			return rows, nil
		}
	}
	return nil, nil
}

func qidRow(qid string) []sparql.Binding {
	return []sparql.Binding{{sparql.FieldQID: qid}}
}

// fakeCreator records creations in call order and hands out sequential ids.
type fakeCreator struct {
	created []createdEntity
	err     error
}

type createdEntity struct {
	Label       string
	Description string
	Claims      []model.Claim
}

func (f *fakeCreator) Create(ctx context.Context, label, description string, claims []model.Claim) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, createdEntity{Label: label, Description: description, Claims: claims})
	return fmt.Sprintf("Q%d", 100+len(f.created)), nil
}

func (f *fakeCreator) labels() []string {
	out := make([]string, len(f.created))
	for i, c := range f.created {
		out[i] = c.Label
	}
	return out
}

func newTestBuilder(target, reference *fakeQuerier, writer *fakeCreator, persist bool) *Builder {
	var w Creator
	if writer != nil {
		w = writer
	}
	return NewBuilder(target, reference, w, model.DefaultConfig(), persist)
}

func contextFor(answers model.AnswerRecord) *model.WorkflowContext {
	return &model.WorkflowContext{Answers: answers}
}

func claimValues(claims []model.Claim, p model.PropertyID) []string {
	var out []string
	for _, c := range claims {
		if c.Property == p {
			out = append(out, c.Value)
		}
	}
	return out
}

func TestBuilder_Methods_ExistingReference(t *testing.T) {
	// The method references the reference graph and an entity with the
	// same display pair already lives on the target.
	target := &fakeQuerier{rows: map[string][]sparql.Binding{
		`"finite element method"`: qidRow("Q7"),
	}}
	b := newTestBuilder(target, &fakeQuerier{}, nil, false)

	answers := model.AnswerRecord{
		"method/entity_0": "wikidata:Q42 <|> finite element method <|> numerical method",
	}
	wc := contextFor(answers)

	ids, err := b.Methods(context.Background(), wc)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}

	if len(ids) != 1 || ids[0] != "Q7" {
		t.Errorf("expected [Q7], got %v", ids)
	}
	// The answer is rewritten to target notation for rendering.
	if got := answers.Get("method/entity_0"); got != "mardi:Q7" {
		t.Errorf("answer not rewritten, got %q", got)
	}
	if got := answers.Get("method/name_0"); got != "finite element method" {
		t.Errorf("display label not injected, got %q", got)
	}
}

func TestBuilder_Methods_CreateFresh(t *testing.T) {
	target := &fakeQuerier{}
	writer := &fakeCreator{}
	b := newTestBuilder(target, &fakeQuerier{}, writer, true)

	answers := model.AnswerRecord{
		"method/name_0":        "custom scheme",
		"method/description_0": "bespoke discretization",
		"method/subject_0":     "mardi:Q30 <|> optimization",
		"method/formulas_0":    "$a = b$",
		"method/identifier_0":  "doi:10.1000/XYZ",
	}
	wc := contextFor(answers)

	ids, err := b.Methods(context.Background(), wc)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "Q101" {
		t.Errorf("expected fresh id Q101, got %v", ids)
	}

	if len(writer.created) != 1 {
		t.Fatalf("expected 1 creation, got %d", len(writer.created))
	}
	created := writer.created[0]
	schema := model.DefaultSchema()

	if got := claimValues(created.Claims, schema.PropInstanceOf); len(got) != 1 || got[0] != string(schema.ItemMethod) {
		t.Errorf("instance-of claim wrong: %v", got)
	}
	if got := claimValues(created.Claims, schema.PropMainSubject); len(got) != 1 || got[0] != "Q30" {
		t.Errorf("main-subject claim wrong: %v", got)
	}
	if got := claimValues(created.Claims, schema.PropFormula); len(got) != 1 || got[0] != "a = b" {
		t.Errorf("formula claim wrong: %v", got)
	}
	if got := claimValues(created.Claims, schema.PropDOI); len(got) != 1 || got[0] != "10.1000/XYZ" {
		t.Errorf("identifier claim wrong: %v", got)
	}

	if got := answers.Get("method/entity_0"); got != "mardi:Q101" {
		t.Errorf("fresh id not injected into answers, got %q", got)
	}
}

func TestBuilder_Methods_NotPersisting(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	answers := model.AnswerRecord{
		"method/name_0":        "custom scheme",
		"method/description_0": "bespoke discretization",
		"method/subject_0":     "mardi:Q30 <|> optimization",
	}
	wc := contextFor(answers)

	ids, err := b.Methods(context.Background(), wc)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	// Placeholder ids never reach the aggregated list.
	if len(ids) != 0 {
		t.Errorf("expected no real ids on non-persisting run, got %v", ids)
	}
	if got := answers.Get("method/entity_0"); got != "mardi:"+model.PendingID {
		t.Errorf("expected placeholder in answers, got %q", got)
	}
}

func TestBuilder_Methods_MissingEntity(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	// No identifier, no description: nothing to resolve or create.
	answers := model.AnswerRecord{"method/name_0": "mystery method"}
	_, err := b.Methods(context.Background(), contextFor(answers))

	var missing *model.MissingRequiredEntityError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredEntityError, got %v", err)
	}
	if missing.Category != "method" || missing.Index != 0 {
		t.Errorf("error fields wrong: %+v", missing)
	}
}

func TestBuilder_MainSubject_Unresolvable(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, &fakeCreator{}, true)

	answers := model.AnswerRecord{
		"method/name_0":        "custom scheme",
		"method/description_0": "bespoke discretization",
		// Subject has no identifier and resolves nowhere.
		"method/subject_0": " <|> obscure topic <|> niche field",
	}
	_, err := b.Methods(context.Background(), contextFor(answers))

	var missing *model.MissingRequiredEntityError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredEntityError, got %v", err)
	}
	if missing.Category != "method main subject" {
		t.Errorf("expected subject category, got %q", missing.Category)
	}
}

func TestBuilder_MainSubject_PendingNotPersisting(t *testing.T) {
	// The subject lives only on the reference graph and the run does not
	// persist: the method still previews with the placeholder subject.
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	answers := model.AnswerRecord{
		"method/name_0":        "custom scheme",
		"method/description_0": "bespoke discretization",
		"method/subject_0":     "wikidata:Q42 <|> topology <|> field of mathematics",
	}
	wc := contextFor(answers)

	ids, err := b.Methods(context.Background(), wc)
	if err != nil {
		t.Fatalf("Methods failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no real ids on non-persisting run, got %v", ids)
	}
	if got := answers.Get("method/entity_0"); got != "mardi:"+model.PendingID {
		t.Errorf("expected placeholder in answers, got %q", got)
	}
}

func TestBuilder_SoftwareItems_Languages(t *testing.T) {
	target := &fakeQuerier{rows: map[string][]sparql.Binding{
		`"Python"`: qidRow("Q20"),
	}}
	writer := &fakeCreator{}
	b := newTestBuilder(target, &fakeQuerier{}, writer, true)

	answers := model.AnswerRecord{
		"software/name_0":        "MySolver",
		"software/description_0": "custom CFD solver",
		"software/languages_0":   "wikidata:Q28865 <|> Python",
		"software/identifier_0":  "sw:12345",
	}
	wc := contextFor(answers)

	ids, err := b.SoftwareItems(context.Background(), wc)
	if err != nil {
		t.Fatalf("SoftwareItems failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %v", ids)
	}

	created := writer.created[0]
	schema := model.DefaultSchema()
	if got := claimValues(created.Claims, schema.PropProgrammedIn); len(got) != 1 || got[0] != "Q20" {
		t.Errorf("programming-language claim wrong: %v", got)
	}
	if got := claimValues(created.Claims, schema.PropSoftwareID); len(got) != 1 || got[0] != "12345" {
		t.Errorf("software identifier claim wrong: %v", got)
	}

	// The display list is rewritten with resolved identifiers.
	if got := answers.Get("software/languages_0"); got != "Python (mardi:Q20)" {
		t.Errorf("language display not rewritten, got %q", got)
	}
}

func TestBuilder_SoftwareItems_NoResolvableLanguage(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, &fakeCreator{}, true)

	answers := model.AnswerRecord{
		"software/name_0":        "MySolver",
		"software/description_0": "custom CFD solver",
		"software/languages_0":   " <|> Esperanto++",
	}
	_, err := b.SoftwareItems(context.Background(), contextFor(answers))

	var missing *model.MissingRequiredEntityError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredEntityError, got %v", err)
	}
	if missing.Category != "software programming language" {
		t.Errorf("expected language category, got %q", missing.Category)
	}
}

func TestBuilder_SoftwareItems_PendingLanguageNotPersisting(t *testing.T) {
	// The language lives only on the reference graph and the run does not
	// persist: it counts as resolved and renders with the placeholder.
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	answers := model.AnswerRecord{
		"software/name_0":        "MySolver",
		"software/description_0": "custom CFD solver",
		"software/languages_0":   "wikidata:Q28865 <|> Python",
	}
	wc := contextFor(answers)

	if _, err := b.SoftwareItems(context.Background(), wc); err != nil {
		t.Fatalf("SoftwareItems failed: %v", err)
	}
	if got := answers.Get("software/languages_0"); got != "Python (mardi:"+model.PendingID+")" {
		t.Errorf("language display wrong, got %q", got)
	}
	if got := answers.Get("software/entity_0"); got != "mardi:"+model.PendingID {
		t.Errorf("expected placeholder in answers, got %q", got)
	}
}

func TestBuilder_Model_None(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	id, err := b.Model(context.Background(), contextFor(model.AnswerRecord{}))
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if id != "" {
		t.Errorf("expected no model id, got %q", id)
	}
}

func TestBuilder_Disciplines(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	answers := model.AnswerRecord{
		"discipline/list": "mardi:Q12 <|> mathematics; mardi:Q13 <|> physics",
	}
	wc := contextFor(answers)

	ids, err := b.Disciplines(context.Background(), wc)
	if err != nil {
		t.Fatalf("Disciplines failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "Q12" || ids[1] != "Q13" {
		t.Errorf("expected [Q12 Q13], got %v", ids)
	}

	// The answer is rewritten to plain display labels.
	if got := answers.Get(model.KeyDisciplines); got != "mathematics; physics" {
		t.Errorf("discipline display not rewritten, got %q", got)
	}
}

func TestBuilder_Disciplines_Empty(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	_, err := b.Disciplines(context.Background(), contextFor(model.AnswerRecord{}))

	var missing *model.MissingRequiredEntityError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredEntityError, got %v", err)
	}
	if missing.Category != "discipline" {
		t.Errorf("expected discipline category, got %q", missing.Category)
	}
}

func TestBuilder_Disciplines_Unresolvable(t *testing.T) {
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, nil, false)

	// Disciplines are never synthesized; a label-only one that resolves
	// nowhere aborts the run.
	answers := model.AnswerRecord{
		"discipline/list": "mardi:Q12 <|> mathematics;  <|> alchemy <|> protoscience",
	}
	_, err := b.Disciplines(context.Background(), contextFor(answers))

	var missing *model.MissingRequiredEntityError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredEntityError, got %v", err)
	}
	if missing.Index != 1 {
		t.Errorf("expected failure at index 1, got %d", missing.Index)
	}
}

func TestBuilder_CreateError(t *testing.T) {
	writer := &fakeCreator{err: &model.EntityStoreError{Op: "create", Err: errors.New("api down")}}
	b := newTestBuilder(&fakeQuerier{}, &fakeQuerier{}, writer, true)

	answers := model.AnswerRecord{
		"input/name_0":       "measurements",
		"input/identifier_0": "doi:10.5555/data",
	}
	if _, err := b.Inputs(context.Background(), contextFor(answers)); err == nil {
		t.Error("expected store error to propagate")
	}
}
