// Package resolve decides whether a described entity already exists on
// the target graph, can be copied as a stub from the reference graph, or
// must be created fresh by the caller.
package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/sparql"
)

// Querier executes a lookup query against one graph endpoint.
type Querier interface {
	Select(ctx context.Context, query string) ([]sparql.Binding, error)
}

// Creator persists one new entity and returns its stable identifier.
type Creator interface {
	Create(ctx context.Context, label, description string, claims []model.Claim) (string, error)
}

// Resolver implements the tri-state existence policy. It holds no cache:
// every invocation re-checks the target graph, which keeps a clean re-run
// idempotent even when the graph changed between invocations.
type Resolver struct {
	target    Querier
	writer    Creator
	templates *sparql.Templates
	schema    model.Schema
	persist   bool
	log       *slog.Logger
}

// New creates a Resolver. writer may be nil when the run does not persist.
func New(target Querier, writer Creator, templates *sparql.Templates, schema model.Schema, persist bool) *Resolver {
	return &Resolver{
		target:    target,
		writer:    writer,
		templates: templates,
		schema:    schema,
		persist:   persist,
		log:       logging.New("resolve"),
	}
}

// Resolve determines the existence state of one candidate.
//
// Precedence: a target-graph reference is trusted verbatim with zero
// queries; a reference-graph reference is matched against the target by
// label and description, then stub-copied when persisting or deferred
// otherwise; everything else is looked up by label and description, and
// a miss signals "must be created fresh by the caller", since only the
// caller knows the complete claim set of a fresh entity.
func (r *Resolver) Resolve(ctx context.Context, cand model.EntityCandidate) (model.ResolvedEntity, error) {
	switch cand.Reference.Origin {
	case model.OriginTarget:
		return model.ResolvedEntity{
			ID:          cand.Reference.ID,
			Exists:      true,
			Label:       cand.Label,
			Description: cand.Description,
		}, nil

	case model.OriginReference:
		found, err := r.lookup(ctx, cand.Label, cand.Description)
		if err != nil {
			return model.ResolvedEntity{}, err
		}
		if found != "" {
			return model.ResolvedEntity{
				ID:          found,
				Exists:      true,
				Label:       cand.Label,
				Description: cand.Description,
			}, nil
		}
		if !r.persist {
			// Downstream rendering must still succeed with a placeholder.
			return model.ResolvedEntity{
				ID:          model.PendingID,
				Exists:      true,
				Label:       cand.Label,
				Description: cand.Description,
			}, nil
		}
		id, err := r.createStub(ctx, cand)
		if err != nil {
			return model.ResolvedEntity{}, err
		}
		return model.ResolvedEntity{
			ID:          id,
			Exists:      true,
			Label:       cand.Label,
			Description: cand.Description,
		}, nil

	default:
		if cand.Label == "" || cand.Description == "" {
			return model.ResolvedEntity{}, nil
		}
		found, err := r.lookup(ctx, cand.Label, cand.Description)
		if err != nil {
			return model.ResolvedEntity{}, err
		}
		if found != "" {
			return model.ResolvedEntity{
				ID:          found,
				Exists:      true,
				Label:       cand.Label,
				Description: cand.Description,
			}, nil
		}
		return model.ResolvedEntity{}, nil
	}
}

// lookup matches the target graph by exact label and description,
// returning "" on no match.
func (r *Resolver) lookup(ctx context.Context, label, description string) (string, error) {
	rows, err := r.target.Select(ctx, r.templates.EntityByLabel(label, description))
	if err != nil {
		return "", fmt.Errorf("target lookup %q: %w", label, err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Value(sparql.FieldQID), nil
}

// createStub copies a minimal entity from the reference graph: label,
// description, and a single external-identifier claim pointing back at
// the reference-graph identifier.
func (r *Resolver) createStub(ctx context.Context, cand model.EntityCandidate) (string, error) {
	id, err := r.writer.Create(ctx, cand.Label, cand.Description, []model.Claim{
		model.ExternalID(cand.Reference.ID, r.schema.PropReferenceID),
	})
	if err != nil {
		return "", err
	}
	r.log.Info("stub copied from reference graph", "id", id, "reference", cand.Reference.ID)
	return id, nil
}
