package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/mardigraph/graphscribe/internal/citation"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/sparql"
)

// CitationLookup resolves a DOI to structured bibliographic data.
type CitationLookup interface {
	Lookup(ctx context.Context, doi string) (*citation.Citation, error)
}

// Publication resolves or creates the workflow's publication. The DOI is
// read from the publication answer ("Yes: <doi>" or "No"); runs without
// one, and runs that do not persist, link no publication and return "".
//
// Creation order is strict: authors, then journal, then language are each
// resolved or created before the publication entity that references them.
func (b *Builder) Publication(ctx context.Context, wc *model.WorkflowContext, lookup CitationLookup) (string, error) {
	if !b.persist {
		return "", nil
	}

	answer := wc.Answers.Get(model.KeyPublication)
	yes, doi := splitPublicationAnswer(answer)
	if !yes {
		return "", nil
	}
	if doi == "" {
		return "", model.ErrNoDOI
	}

	cit, err := lookup.Lookup(ctx, doi)
	if err != nil {
		return "", err
	}

	// Known to the target graph by DOI.
	if id, err := b.firstQID(ctx, b.target, b.templates.PublicationByDOI(doi)); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	// Known to the reference graph by DOI: match the target by display
	// pair, else copy a stub.
	refRow, err := b.firstRow(ctx, b.reference, sparql.RefPublicationByDOI(doi, b.locale))
	if err != nil {
		return "", err
	}
	if refRow != nil {
		return b.adoptReference(ctx, refRow)
	}

	if cit.Title != "" {
		// Known to the target graph by title.
		if id, err := b.firstQID(ctx, b.target, b.templates.PublicationByTitle(cit.Title)); err != nil {
			return "", err
		} else if id != "" {
			return id, nil
		}

		// Known to the reference graph by title.
		refRow, err := b.firstRow(ctx, b.reference, sparql.RefPublicationByTitle(cit.Title, b.locale))
		if err != nil {
			return "", err
		}
		if refRow != nil {
			return b.adoptReference(ctx, refRow)
		}
	}

	return b.createPublication(ctx, doi, cit)
}

// createPublication synthesizes the publication and its leaf
// dependencies, leaves first.
func (b *Builder) createPublication(ctx context.Context, doi string, cit *citation.Citation) (string, error) {
	authorIDs := make([]string, 0, len(cit.IdentifiedAuthors()))
	for _, author := range cit.IdentifiedAuthors() {
		id, err := b.author(ctx, author)
		if err != nil {
			return "", err
		}
		authorIDs = append(authorIDs, id)
	}

	var journalID string
	if cit.Journal != "" {
		id, err := b.leafEntity(ctx,
			b.templates.JournalByName(cit.Journal),
			sparql.RefEntityByLabel(cit.Journal, b.locale),
			cit.Journal, "scientific journal",
			[]model.Claim{model.LinkItem(b.schema.ItemJournal, b.schema.PropInstanceOf)})
		if err != nil {
			return "", err
		}
		journalID = id
	}

	var languageID string
	if cit.Language != "" {
		name := citation.LanguageName(cit.Language)
		id, err := b.leafEntity(ctx,
			b.templates.LanguageByName(name),
			sparql.RefEntityByLabel(name, b.locale),
			name, "language",
			[]model.Claim{model.LinkItem(b.schema.ItemLanguage, b.schema.PropInstanceOf)})
		if err != nil {
			return "", err
		}
		languageID = id
	}

	instanceOf := b.schema.ItemPublication
	if cit.IsArticle() {
		instanceOf = b.schema.ItemScholarlyArticle
	}

	claims := []model.Claim{model.LinkItem(instanceOf, b.schema.PropInstanceOf)}
	for _, id := range authorIDs {
		claims = append(claims, model.EntityLink(id, b.schema.PropAuthor))
	}
	for _, name := range cit.AnonymousAuthors() {
		claims = append(claims, model.Text(name, b.schema.PropAuthorName))
	}
	claims = append(claims,
		model.EntityLink(languageID, b.schema.PropLanguageOfWork),
		model.EntityLink(journalID, b.schema.PropPublishedIn),
		model.LocalizedText(cit.Title, b.schema.PropTitle),
		model.Timestamp(cit.Published, b.schema.PropPublicationDate),
		model.Text(cit.Volume, b.schema.PropVolume),
		model.Text(cit.Issue, b.schema.PropIssue),
		model.Text(cit.Pages, b.schema.PropPages),
		model.ExternalID(strings.ToUpper(doi), b.schema.PropDOI),
	)

	return b.writer.Create(ctx, cit.Title, "publication", claims)
}

// author resolves one ORCID-identified contributor: target by ORCID,
// reference by ORCID with stub copy, or a fresh researcher entity.
func (b *Builder) author(ctx context.Context, a citation.Author) (string, error) {
	if id, err := b.firstQID(ctx, b.target, b.templates.AuthorByORCID(a.ORCID)); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	refRow, err := b.firstRow(ctx, b.reference, sparql.RefAuthorByORCID(a.ORCID, b.locale))
	if err != nil {
		return "", err
	}
	if refRow != nil {
		return b.adoptReference(ctx, refRow)
	}

	return b.freshOrMatched(ctx, a.Name, "researcher", []model.Claim{
		model.LinkItem(b.schema.ItemHuman, b.schema.PropInstanceOf),
		model.LinkItem(b.schema.ItemResearcher, b.schema.PropOccupation),
		model.ExternalID(a.ORCID, b.schema.PropORCID),
	})
}

// leafEntity resolves one journal/language leaf: target by its role
// query, reference by label with stub copy, or a fresh entity.
func (b *Builder) leafEntity(ctx context.Context, targetQuery, refQuery, label, description string, claims []model.Claim) (string, error) {
	if id, err := b.firstQID(ctx, b.target, targetQuery); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	refRow, err := b.firstRow(ctx, b.reference, refQuery)
	if err != nil {
		return "", err
	}
	if refRow != nil {
		return b.adoptReference(ctx, refRow)
	}

	return b.freshOrMatched(ctx, label, description, claims)
}

// adoptReference reuses a reference-graph hit: an entity with the same
// display pair on the target wins, otherwise a minimal stub is copied
// over carrying only the back-reference claim.
func (b *Builder) adoptReference(ctx context.Context, row sparql.Binding) (string, error) {
	label := row.Value(sparql.FieldLabel)
	description := row.Value(sparql.FieldDescription)

	if id, err := b.firstQID(ctx, b.target, b.templates.EntityByLabel(label, description)); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}

	return b.writer.Create(ctx, label, description, []model.Claim{
		model.ExternalID(row.Value(sparql.FieldQID), b.schema.PropReferenceID),
	})
}

// freshOrMatched creates a new entity unless one with the same display
// pair already exists on the target graph.
func (b *Builder) freshOrMatched(ctx context.Context, label, description string, claims []model.Claim) (string, error) {
	if id, err := b.firstQID(ctx, b.target, b.templates.EntityByLabel(label, description)); err != nil {
		return "", err
	} else if id != "" {
		return id, nil
	}
	return b.writer.Create(ctx, label, description, claims)
}

func (b *Builder) firstQID(ctx context.Context, q Querier, query string) (string, error) {
	row, err := b.firstRow(ctx, q, query)
	if err != nil || row == nil {
		return "", err
	}
	return row.Value(sparql.FieldQID), nil
}

func (b *Builder) firstRow(ctx context.Context, q Querier, query string) (sparql.Binding, error) {
	rows, err := q.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// splitPublicationAnswer parses the "Yes: <doi>" answer convention.
func splitPublicationAnswer(answer string) (yes bool, doi string) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, ""
	}
	head, rest, _ := strings.Cut(answer, ":")
	if !strings.EqualFold(strings.TrimSpace(head), "yes") {
		return false, ""
	}
	return true, strings.TrimSpace(rest)
}
