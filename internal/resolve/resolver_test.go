package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/sparql"
)

// fakeQuerier answers EntityByLabel lookups from a label->qid table and
// counts queries issued against it.
type fakeQuerier struct {
	byLabel map[string]string
	queries int
	err     error
}

func (f *fakeQuerier) Select(ctx context.Context, query string) ([]sparql.Binding, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	for label, qid := range f.byLabel {
		if strings.Contains(query, sparql.Literal(label)) {
			return []sparql.Binding{{sparql.FieldQID: qid}}, nil
		}
	}
	return nil, nil
}

type fakeCreator struct {
	created []createdEntity
	next    int
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
	f.next++
	return fmt.Sprintf("Q%d", 100+f.next), nil
}

func newTestResolver(target *fakeQuerier, writer *fakeCreator, persist bool) *Resolver {
	schema := model.DefaultSchema()
	return New(target, writer, sparql.NewTemplates(schema, "en"), schema, persist)
}

func TestResolver_Resolve_TargetOrigin(t *testing.T) {
	target := &fakeQuerier{}
	r := newTestResolver(target, nil, false)

	res, err := r.Resolve(context.Background(), model.EntityCandidate{
		Reference: model.EntityReference{Origin: model.OriginTarget, ID: "Q55"},
		Label:     "FEM",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !res.Exists || res.ID != "Q55" {
		t.Errorf("target reference not trusted: %+v", res)
	}
	// A target-graph reference is trusted verbatim, no lookup at all.
	if target.queries != 0 {
		t.Errorf("expected zero queries for target origin, got %d", target.queries)
	}
}

func TestResolver_Resolve_ReferenceOrigin_TargetMatch(t *testing.T) {
	target := &fakeQuerier{byLabel: map[string]string{"FEM": "Q7"}}
	writer := &fakeCreator{}
	r := newTestResolver(target, writer, true)

	res, err := r.Resolve(context.Background(), model.EntityCandidate{
		Reference:   model.EntityReference{Origin: model.OriginReference, ID: "Q42"},
		Label:       "FEM",
		Description: "numerical method",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !res.Exists || res.ID != "Q7" {
		t.Errorf("expected match to win over stub copy: %+v", res)
	}
	if len(writer.created) != 0 {
		t.Errorf("expected no entity creation on match, got %d", len(writer.created))
	}
}

func TestResolver_Resolve_ReferenceOrigin_StubCopy(t *testing.T) {
	target := &fakeQuerier{}
	writer := &fakeCreator{}
	r := newTestResolver(target, writer, true)

	res, err := r.Resolve(context.Background(), model.EntityCandidate{
		Reference:   model.EntityReference{Origin: model.OriginReference, ID: "Q42"},
		Label:       "FEM",
		Description: "numerical method",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !res.Exists || res.ID != "Q101" {
		t.Errorf("expected stub id, got %+v", res)
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected exactly one creation, got %d", len(writer.created))
	}

	// The stub carries only the back-reference claim.
	stub := writer.created[0]
	if stub.Label != "FEM" || stub.Description != "numerical method" {
		t.Errorf("stub display pair wrong: %+v", stub)
	}
	if len(stub.Claims) != 1 {
		t.Fatalf("expected one stub claim, got %d", len(stub.Claims))
	}
	claim := stub.Claims[0]
	if claim.Kind != model.ClaimExternalID || claim.Value != "Q42" || claim.Property != model.DefaultSchema().PropReferenceID {
		t.Errorf("stub claim wrong: %+v", claim)
	}
}

func TestResolver_Resolve_ReferenceOrigin_Idempotent(t *testing.T) {
	target := &fakeQuerier{}
	writer := &fakeCreator{}
	r := newTestResolver(target, writer, true)

	cand := model.EntityCandidate{
		Reference:   model.EntityReference{Origin: model.OriginReference, ID: "Q42"},
		Label:       "FEM",
		Description: "numerical method",
	}

	first, err := r.Resolve(context.Background(), cand)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first.ID != "Q101" || len(writer.created) != 1 {
		t.Fatalf("expected one stub copy, got %+v with %d creations", first, len(writer.created))
	}

	// The stub is now on the target graph; a re-run must find it there
	// instead of copying a second one.
	target.byLabel = map[string]string{"FEM": "Q101"}

	second, err := r.Resolve(context.Background(), cand)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-resolution changed the id: %q then %q", first.ID, second.ID)
	}
	if len(writer.created) != 1 {
		t.Errorf("expected no second creation, got %d", len(writer.created))
	}
}

func TestResolver_Resolve_ReferenceOrigin_NotPersisting(t *testing.T) {
	target := &fakeQuerier{}
	r := newTestResolver(target, nil, false)

	res, err := r.Resolve(context.Background(), model.EntityCandidate{
		Reference:   model.EntityReference{Origin: model.OriginReference, ID: "Q42"},
		Label:       "FEM",
		Description: "numerical method",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !res.Exists || !res.Pending() {
		t.Errorf("expected pending placeholder, got %+v", res)
	}
}

func TestResolver_Resolve_NoOrigin(t *testing.T) {
	target := &fakeQuerier{byLabel: map[string]string{"known model": "Q9"}}
	r := newTestResolver(target, nil, true)

	// Match by display pair.
	res, err := r.Resolve(context.Background(), model.EntityCandidate{
		Label:       "known model",
		Description: "a model",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.Exists || res.ID != "Q9" {
		t.Errorf("expected label match, got %+v", res)
	}

	// A miss signals "create fresh" to the caller, never an error here.
	res, err = r.Resolve(context.Background(), model.EntityCandidate{
		Label:       "unknown model",
		Description: "a model",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Exists {
		t.Errorf("expected miss, got %+v", res)
	}
}

func TestResolver_Resolve_NoOrigin_EmptyDisplayPair(t *testing.T) {
	target := &fakeQuerier{}
	r := newTestResolver(target, nil, true)

	res, err := r.Resolve(context.Background(), model.EntityCandidate{Label: "only label"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Exists {
		t.Errorf("expected miss for incomplete display pair, got %+v", res)
	}
	if target.queries != 0 {
		t.Errorf("expected no lookup for incomplete display pair, got %d", target.queries)
	}
}

func TestResolver_Resolve_LookupError(t *testing.T) {
	target := &fakeQuerier{err: errors.New("endpoint down")}
	r := newTestResolver(target, nil, true)

	if _, err := r.Resolve(context.Background(), model.EntityCandidate{
		Label:       "FEM",
		Description: "numerical method",
	}); err == nil {
		t.Error("expected lookup error to propagate")
	}
}
