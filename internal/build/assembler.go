package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mardigraph/graphscribe/internal/decompose"
	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/render"
	"github.com/mardigraph/graphscribe/internal/sparql"
)

// PageAppender appends rendered wikitext to a portal page.
type PageAppender interface {
	AppendPage(ctx context.Context, title, wikitext string) error
}

// Outcome is the single descriptive result of a successful run.
type Outcome struct {
	Document   string
	WorkflowID string
	ItemURL    string
	PageURL    string
}

// SearchResult is one workflow entity matched by a search run.
type SearchResult struct {
	Label   string
	ID      string
	PageURL string
	ItemURL string
}

// Assembler is the top-level driver of one run: it validates the
// mandatory answers, performs the pre-flight duplicate check, drives the
// Builder through every category in dependency order, creates the
// workflow root entity, and renders the final document.
//
// A run is strictly sequential; concurrent runs against the same target
// graph may race in the check-then-create window, which the target graph
// alone arbitrates.
type Assembler struct {
	cfg       *model.Config
	target    Querier
	builder   *Builder
	citations CitationLookup
	pages     PageAppender
	renderer  *render.Renderer
	templates *sparql.Templates
	hasCreds  bool
	log       *slog.Logger
}

// NewAssembler wires an Assembler from its collaborators. writer and
// pages may be nil when no export target persists.
func NewAssembler(cfg *model.Config, target, reference Querier, writer Creator, pages PageAppender, citations CitationLookup, persist bool) *Assembler {
	return &Assembler{
		cfg:       cfg,
		target:    target,
		builder:   NewBuilder(target, reference, writer, cfg, persist),
		citations: citations,
		pages:     pages,
		renderer:  render.New(),
		templates: sparql.NewTemplates(cfg.Schema, cfg.Locale),
		hasCreds:  cfg.Target.Username != "" && cfg.Target.Password != "",
		log:       logging.New("assemble"),
	}
}

// Run executes the document operation for one answer record.
func (a *Assembler) Run(ctx context.Context, answers model.AnswerRecord) (*Outcome, error) {
	wc, err := a.prepare(answers)
	if err != nil {
		return nil, err
	}
	persist := wc.Export.Persist()

	if persist && !a.hasCreds {
		return nil, model.ErrNoCredentials
	}

	// Pre-flight duplicate check, before any entity creation: partially
	// duplicating an already-published workflow is the worst outcome.
	if persist {
		rows, err := a.target.Select(ctx, a.templates.EntityByLabel(wc.Title, wc.Objective))
		if err != nil {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		if len(rows) > 0 {
			return nil, model.ErrDuplicateWorkflow
		}
	}

	if wc.Publication, err = a.builder.Publication(ctx, wc, a.citations); err != nil {
		return nil, err
	}
	if wc.Model, err = a.builder.Model(ctx, wc); err != nil {
		return nil, err
	}
	if wc.Methods, err = a.builder.Methods(ctx, wc); err != nil {
		return nil, err
	}
	if wc.Software, err = a.builder.SoftwareItems(ctx, wc); err != nil {
		return nil, err
	}
	if wc.Inputs, err = a.builder.Inputs(ctx, wc); err != nil {
		return nil, err
	}
	if wc.Outputs, err = a.builder.Outputs(ctx, wc); err != nil {
		return nil, err
	}
	if wc.Disciplines, err = a.builder.Disciplines(ctx, wc); err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	if persist {
		if outcome.WorkflowID, err = a.createRoot(ctx, wc); err != nil {
			return nil, err
		}
	}

	if outcome.Document, err = a.renderer.Document(wc); err != nil {
		return nil, err
	}

	if persist {
		if err := a.pages.AppendPage(ctx, wc.Title, outcome.Document); err != nil {
			return nil, err
		}
		outcome.PageURL = a.cfg.Target.WikiURL + strings.ReplaceAll(wc.Title, " ", "_")
		outcome.ItemURL = a.cfg.Target.WikiURL + "Item:" + outcome.WorkflowID
	}

	a.log.Info("run complete", "title", wc.Title, "workflow", outcome.WorkflowID, "export", wc.Export.String())
	return outcome, nil
}

// createRoot persists the workflow root entity linking the publication,
// every discipline, and every model/method/software/dataset identifier
// aggregated by the builder. Only reachable once every category built
// without failure.
func (a *Assembler) createRoot(ctx context.Context, wc *model.WorkflowContext) (string, error) {
	schema := a.cfg.Schema
	claims := []model.Claim{
		model.LinkItem(schema.ItemWorkflow, schema.PropInstanceOf),
		model.EntityLink(wc.Publication, schema.PropCites),
	}
	for _, id := range wc.Disciplines {
		claims = append(claims, model.EntityLink(id, schema.PropField))
	}
	for _, id := range wc.LinkedEntities() {
		claims = append(claims, model.EntityLink(id, schema.PropUses))
	}
	return a.builder.writer.Create(ctx, wc.Title, wc.Objective, claims)
}

// prepare validates the mandatory selections and initializes the run's
// context.
func (a *Assembler) prepare(answers model.AnswerRecord) (*model.WorkflowContext, error) {
	if answers.Get(model.KeyOperation) != model.OperationDocument {
		return nil, &model.MissingRequiredAnswerError{Field: model.KeyOperation}
	}

	title := strings.TrimSpace(answers.Get(model.KeyTitle))
	if title == "" {
		return nil, &model.MissingRequiredAnswerError{Field: model.KeyTitle}
	}

	objective := strings.TrimSpace(answers.Get(model.KeyObjective))
	if objective == "" {
		return nil, &model.MissingRequiredAnswerError{Field: model.KeyObjective}
	}

	wfType := model.ParseWorkflowType(answers.Get(model.KeyWorkflowType))
	if wfType == model.WorkflowUnknown {
		return nil, &model.MissingRequiredAnswerError{Field: model.KeyWorkflowType}
	}

	export := model.ParseExportTarget(answers.Get(model.KeyExportTarget))
	if export == model.ExportUnknown {
		return nil, &model.MissingRequiredAnswerError{Field: model.KeyExportTarget}
	}

	return &model.WorkflowContext{
		Answers:   answers,
		Title:     title,
		Objective: objective,
		Type:      wfType,
		Export:    export,
	}, nil
}

// Search executes the search operation: filter published workflows by
// objective keywords, disciplines, and linked entities.
func (a *Assembler) Search(ctx context.Context, answers model.AnswerRecord) ([]SearchResult, error) {
	if answers.Get(model.KeyOperation) != model.OperationSearch {
		return nil, &model.MissingRequiredAnswerError{Field: model.KeyOperation}
	}

	var keywords []string
	if strings.EqualFold(answers.Get(model.KeySearchByObjective), model.AnswerYes) {
		for _, kw := range decompose.SplitInstances(answers.Get(model.KeySearchObjectives)) {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
	}

	var disciplineIDs []string
	if strings.EqualFold(answers.Get(model.KeySearchByDiscipline), model.AnswerYes) {
		disciplineIDs = compositeIDs(answers.Get(model.KeySearchDisciplines))
	}

	var entityIDs []string
	if strings.EqualFold(answers.Get(model.KeySearchByEntity), model.AnswerYes) {
		entityIDs = compositeIDs(answers.Get(model.KeySearchEntities))
	}

	rows, err := a.target.Select(ctx, a.templates.WorkflowSearch(keywords, disciplineIDs, entityIDs))
	if err != nil {
		return nil, fmt.Errorf("workflow search: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		label := row.Value(sparql.FieldLabel)
		results = append(results, SearchResult{
			Label:   label,
			ID:      row.Value(sparql.FieldQID),
			PageURL: a.cfg.Target.WikiURL + strings.ReplaceAll(label, " ", "_"),
			ItemURL: a.cfg.Target.WikiURL + "Item:" + row.Value(sparql.FieldQID),
		})
	}

	a.log.Info("search complete", "results", len(results))
	return results, nil
}

// compositeIDs extracts the bare identifiers from a ";"-joined list of
// composite "tag:id <|> label" answers.
func compositeIDs(raw string) []string {
	var ids []string
	for _, part := range decompose.SplitInstances(raw) {
		fields := decompose.SplitFields(part)
		if len(fields) == 0 {
			continue
		}
		if _, id, ok := strings.Cut(strings.TrimSpace(fields[0]), ":"); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
