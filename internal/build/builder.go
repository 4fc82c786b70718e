// Package build orchestrates resolution and creation of every entity of
// one workflow, in an order that guarantees each relational claim only
// references entities that already have a valid identifier.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mardigraph/graphscribe/internal/decompose"
	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/resolve"
	"github.com/mardigraph/graphscribe/internal/sparql"
)

// Querier executes a lookup query against one graph endpoint.
type Querier = resolve.Querier

// Creator persists one new entity and returns its stable identifier.
type Creator = resolve.Creator

// Builder resolves and, when needed, creates the entities of one
// workflow category by category. It does not cache across categories:
// repeated mentions of the same logical entity always re-check the
// target graph, so a clean re-run observes the latest graph state.
type Builder struct {
	dec       *decompose.Decomposer
	resolver  *resolve.Resolver
	target    Querier
	reference Querier
	writer    Creator
	templates *sparql.Templates
	schema    model.Schema
	locale    string
	targetTag string
	persist   bool
	log       *slog.Logger
}

// NewBuilder wires a Builder from its collaborators. writer may be nil
// when the run does not persist.
func NewBuilder(target, reference Querier, writer Creator, cfg *model.Config, persist bool) *Builder {
	templates := sparql.NewTemplates(cfg.Schema, cfg.Locale)
	return &Builder{
		dec:       decompose.New(cfg.Target.Tag, cfg.Reference.Tag),
		resolver:  resolve.New(target, writer, templates, cfg.Schema, persist),
		target:    target,
		reference: reference,
		writer:    writer,
		templates: templates,
		schema:    cfg.Schema,
		locale:    cfg.Locale,
		targetTag: cfg.Target.Tag,
		persist:   persist,
		log:       logging.New("build"),
	}
}

// categorySpec parameterizes the generic resolve-or-create routine with
// one category's metadata: its instance-of item, its dependency role, and
// how its external identifier maps onto a claim.
type categorySpec struct {
	cat          decompose.Category
	instanceOf   model.ItemID
	needsSubject bool
	hasLanguages bool
	hasFormulas  bool
	// createFresh permits synthesizing a brand-new entity; categories
	// without it (disciplines) must resolve to an existing identifier.
	createFresh bool
}

// Model resolves or creates the zero-or-one mathematical model.
// Returns "" when the user declared none.
func (b *Builder) Model(ctx context.Context, wc *model.WorkflowContext) (string, error) {
	ids, err := b.buildCategory(ctx, wc, categorySpec{
		cat:          decompose.Model,
		instanceOf:   b.schema.ItemModel,
		needsSubject: true,
		hasFormulas:  true,
		createFresh:  true,
	})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// Methods resolves or creates every declared method, each preceded by
// its main subject.
func (b *Builder) Methods(ctx context.Context, wc *model.WorkflowContext) ([]string, error) {
	return b.buildCategory(ctx, wc, categorySpec{
		cat:          decompose.Method,
		instanceOf:   b.schema.ItemMethod,
		needsSubject: true,
		hasFormulas:  true,
		createFresh:  true,
	})
}

// SoftwareItems resolves or creates every declared software item, each
// preceded by its programming languages.
func (b *Builder) SoftwareItems(ctx context.Context, wc *model.WorkflowContext) ([]string, error) {
	return b.buildCategory(ctx, wc, categorySpec{
		cat:          decompose.Software,
		instanceOf:   b.schema.ItemSoftware,
		hasLanguages: true,
		createFresh:  true,
	})
}

// Inputs resolves or creates every declared input dataset.
func (b *Builder) Inputs(ctx context.Context, wc *model.WorkflowContext) ([]string, error) {
	return b.buildCategory(ctx, wc, categorySpec{
		cat:         decompose.Input,
		instanceOf:  b.schema.ItemDataset,
		createFresh: true,
	})
}

// Outputs resolves or creates every declared output dataset.
func (b *Builder) Outputs(ctx context.Context, wc *model.WorkflowContext) ([]string, error) {
	return b.buildCategory(ctx, wc, categorySpec{
		cat:         decompose.Output,
		instanceOf:  b.schema.ItemDataset,
		createFresh: true,
	})
}

// Disciplines resolves every declared research discipline. Disciplines
// are never synthesized: one that resolves nowhere aborts the run.
func (b *Builder) Disciplines(ctx context.Context, wc *model.WorkflowContext) ([]string, error) {
	cands := b.dec.Disciplines(wc.Answers)
	if len(cands) == 0 {
		return nil, &model.MissingRequiredEntityError{Category: "discipline", Index: 0}
	}

	ids := make([]string, 0, len(cands))
	labels := make([]string, 0, len(cands))
	for i, cand := range cands {
		res, err := b.resolver.Resolve(ctx, cand)
		if err != nil {
			return nil, err
		}
		if !res.Exists {
			return nil, &model.MissingRequiredEntityError{Category: "discipline", Index: i}
		}
		ids = append(ids, res.ID)
		labels = append(labels, res.Label)
	}

	// Later steps and the renderer see resolved display labels instead
	// of the raw composite answer.
	wc.Answers.Set(model.KeyDisciplines, strings.Join(labels, model.InstanceSeparator))
	return ids, nil
}

// buildCategory is the generic resolve-or-create routine: resolve every
// instance, resolve its dependencies when a fresh entity is needed, then
// create it (or record a placeholder on non-persisting runs) and inject
// the resulting identifier back into the run's answers.
func (b *Builder) buildCategory(ctx context.Context, wc *model.WorkflowContext, spec categorySpec) ([]string, error) {
	cands := b.dec.Instances(wc.Answers, spec.cat)
	ids := make([]string, 0, len(cands))

	for i, cand := range cands {
		res, err := b.resolver.Resolve(ctx, cand)
		if err != nil {
			return nil, err
		}

		if res.Exists {
			b.inject(wc, spec.cat, i, res)
			if !res.Pending() {
				ids = append(ids, res.ID)
			}
			continue
		}

		if !spec.createFresh || !cand.Usable() {
			return nil, &model.MissingRequiredEntityError{Category: spec.cat.Name, Index: i}
		}

		claims := []model.Claim{model.LinkItem(spec.instanceOf, b.schema.PropInstanceOf)}

		if spec.needsSubject {
			subjectID, err := b.mainSubject(ctx, wc, spec.cat, i)
			if err != nil {
				return nil, err
			}
			claims = append(claims, model.EntityLink(subjectID, b.schema.PropMainSubject))
		}

		if spec.hasLanguages {
			langIDs, err := b.programmingLanguages(ctx, wc, spec.cat, i)
			if err != nil {
				return nil, err
			}
			for _, id := range langIDs {
				claims = append(claims, model.EntityLink(id, b.schema.PropProgrammedIn))
			}
		}

		if spec.hasFormulas {
			for _, f := range decompose.Formulas(cand.Extra[decompose.ExtraFormulas]) {
				claims = append(claims, model.Text(f, b.schema.PropFormula))
			}
		}

		claims = append(claims, b.identifierClaim(cand.Extra[decompose.ExtraIdentifier]))

		id := model.PendingID
		if b.persist {
			id, err = b.writer.Create(ctx, cand.Label, cand.Description, claims)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}

		wc.Answers.SetIndexed(spec.cat.EntityKey, keyIndex(spec.cat, i), b.targetTag+":"+id)
	}

	return ids, nil
}

// mainSubject resolves the main-subject dependency of a model or method
// instance. A fresh model/method cannot exist without one. Resolution
// only defers to the placeholder on non-persisting runs, where no claim
// is ever written, so a pending subject keeps rendering total instead of
// aborting the preview.
func (b *Builder) mainSubject(ctx context.Context, wc *model.WorkflowContext, cat decompose.Category, i int) (string, error) {
	sub := b.dec.Subject(wc.Answers, cat, i)
	res, err := b.resolver.Resolve(ctx, sub)
	if err != nil {
		return "", err
	}
	if !res.Exists || (res.Pending() && b.persist) {
		return "", &model.MissingRequiredEntityError{Category: cat.Name + " main subject", Index: i}
	}
	return res.ID, nil
}

// programmingLanguages resolves the language dependencies of a software
// instance. A fresh software item needs at least one resolved language.
// Languages are never synthesized; unresolvable ones are skipped. A
// pending language only occurs on non-persisting runs, where it renders
// with the placeholder identifier but yields no claim.
func (b *Builder) programmingLanguages(ctx context.Context, wc *model.WorkflowContext, cat decompose.Category, i int) ([]string, error) {
	cands := b.dec.Languages(wc.Answers, i)

	var ids []string
	var display []string
	for _, lc := range cands {
		res, err := b.resolver.Resolve(ctx, lc)
		if err != nil {
			return nil, err
		}
		if !res.Exists {
			continue
		}
		display = append(display, fmt.Sprintf("%s (%s:%s)", res.Label, b.targetTag, res.ID))
		if res.Pending() {
			continue
		}
		ids = append(ids, res.ID)
	}

	if len(display) == 0 {
		return nil, &model.MissingRequiredEntityError{Category: cat.Name + " programming language", Index: i}
	}

	wc.Answers.SetIndexed(model.KeySoftwareLanguages, i, strings.Join(display, model.InstanceSeparator))
	return ids, nil
}

// identifierClaim maps a "scheme:value" identifier answer onto the right
// external-identifier property. Empty identifiers yield an empty claim
// the writer drops.
func (b *Builder) identifierClaim(raw string) model.Claim {
	scheme, value := decompose.Identifier(raw)
	if scheme == "sw" {
		return model.ExternalID(value, b.schema.PropSoftwareID)
	}
	return model.ExternalID(value, b.schema.PropDOI)
}

// inject records a resolved identifier and display pair back into the
// run's answers under the category's designated keys, prefixed with the
// target-graph namespace marker.
func (b *Builder) inject(wc *model.WorkflowContext, cat decompose.Category, i int, res model.ResolvedEntity) {
	idx := keyIndex(cat, i)
	wc.Answers.SetIndexed(cat.EntityKey, idx, res.Tagged(b.targetTag))
	if res.Label != "" && cat.NameKey != "" {
		wc.Answers.SetIndexed(cat.NameKey, idx, res.Label)
	}
	if res.Description != "" && cat.DescriptionKey != "" {
		wc.Answers.SetIndexed(cat.DescriptionKey, idx, res.Description)
	}
}

// keyIndex maps an instance index onto the answer-key suffix; singular
// categories use bare keys.
func keyIndex(cat decompose.Category, i int) int {
	if cat.Repeated {
		return i
	}
	return -1
}
