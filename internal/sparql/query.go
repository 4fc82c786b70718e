// Package sparql builds and executes the lookup queries sent to the
// target and reference knowledge graphs.
package sparql

import (
	"fmt"
	"strings"

	"github.com/mardigraph/graphscribe/internal/model"
)

// Fixed properties of the reference graph. Unlike the target schema these
// are not configurable: the reference graph is the public one and its
// numbering never changes under us.
const (
	refPropDOI   = "P356"
	refPropORCID = "P496"
	refPropTitle = "P1476"
)

// Result field names shared by all templates.
const (
	FieldQID         = "qid"
	FieldLabel       = "label"
	FieldDescription = "quote"
)

// Templates synthesizes queries against the target graph using its
// configured schema.
type Templates struct {
	Schema model.Schema
	Locale string
}

// NewTemplates returns a synthesizer for the given target schema and locale.
func NewTemplates(schema model.Schema, locale string) *Templates {
	return &Templates{Schema: schema, Locale: locale}
}

// EntityByLabel matches a target-graph entity whose label and description
// both equal the given pair exactly.
func (t *Templates) EntityByLabel(label, description string) string {
	return fmt.Sprintf(`SELECT ?qid WHERE {
  ?item rdfs:label %s@%s ;
        schema:description %s@%s .
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, Literal(label), t.Locale, Literal(description), t.Locale)
}

// PublicationByDOI matches a target-graph publication by its DOI claim.
func (t *Templates) PublicationByDOI(doi string) string {
	return t.entityByProperty(t.Schema.PropDOI, strings.ToUpper(doi))
}

// PublicationByTitle matches a target-graph publication by its title claim.
func (t *Templates) PublicationByTitle(title string) string {
	return fmt.Sprintf(`SELECT ?qid ?label ?quote WHERE {
  ?item wdt:%s %s@%s ;
        rdfs:label ?label ;
        schema:description ?quote .
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, t.Schema.PropTitle, Literal(title), t.Locale)
}

// AuthorByORCID matches a target-graph author by ORCID identifier.
func (t *Templates) AuthorByORCID(orcid string) string {
	return t.entityByProperty(t.Schema.PropORCID, orcid)
}

// JournalByName matches a target-graph journal by exact label.
func (t *Templates) JournalByName(name string) string {
	return t.itemByLabel(name, t.Schema.ItemJournal)
}

// LanguageByName matches a target-graph language by exact label.
func (t *Templates) LanguageByName(name string) string {
	return t.itemByLabel(name, t.Schema.ItemLanguage)
}

func (t *Templates) itemByLabel(label string, instanceOf model.ItemID) string {
	return fmt.Sprintf(`SELECT ?qid WHERE {
  ?item rdfs:label %s@%s ;
        wdt:%s wd:%s .
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, Literal(label), t.Locale, t.Schema.PropInstanceOf, instanceOf)
}

func (t *Templates) entityByProperty(p model.PropertyID, value string) string {
	return fmt.Sprintf(`SELECT ?qid ?label ?quote WHERE {
  ?item wdt:%s %s ;
        rdfs:label ?label ;
        schema:description ?quote .
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, p, Literal(value))
}

// WorkflowSearch filters published workflow entities by lowercased
// research-objective keywords, discipline identifiers, and linked
// model/method/software/dataset identifiers. Empty filter sets impose
// no constraint.
func (t *Templates) WorkflowSearch(objectiveKeywords, disciplineIDs, entityIDs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT ?label ?qid WHERE {\n")
	fmt.Fprintf(&b, "  ?workflow wdt:%s wd:%s .\n", t.Schema.PropInstanceOf, t.Schema.ItemWorkflow)
	for _, id := range disciplineIDs {
		fmt.Fprintf(&b, "  ?workflow wdt:%s wd:%s .\n", t.Schema.PropField, id)
	}
	for _, id := range entityIDs {
		fmt.Fprintf(&b, "  ?workflow wdt:%s wd:%s .\n", t.Schema.PropUses, id)
	}
	if len(objectiveKeywords) > 0 {
		fmt.Fprintf(&b, "  ?workflow schema:description ?quote .\n")
		for _, kw := range objectiveKeywords {
			fmt.Fprintf(&b, "  FILTER(CONTAINS(LCASE(?quote), %s))\n", Literal(strings.ToLower(kw)))
		}
	}
	fmt.Fprintf(&b, "  ?workflow rdfs:label ?label .\n")
	fmt.Fprintf(&b, `  BIND(STRAFTER(STR(?workflow), "entity/") AS ?qid)`+"\n")
	fmt.Fprintf(&b, "}")
	return b.String()
}

// Reference-graph templates. The reference graph serves labels and
// descriptions through its label service so stub copies carry display
// text without a second query.

// RefPublicationByDOI matches a reference-graph publication by DOI.
func RefPublicationByDOI(doi, locale string) string {
	return refEntityByProperty(refPropDOI, strings.ToUpper(doi), locale)
}

// RefPublicationByTitle matches a reference-graph publication by title.
func RefPublicationByTitle(title, locale string) string {
	return fmt.Sprintf(`SELECT ?qid ?label ?quote WHERE {
  ?item wdt:%s %s@%s .
  SERVICE wikibase:label {
    bd:serviceParam wikibase:language "%s" .
    ?item rdfs:label ?label ; schema:description ?quote .
  }
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, refPropTitle, Literal(title), locale, locale)
}

// RefAuthorByORCID matches a reference-graph person by ORCID.
func RefAuthorByORCID(orcid, locale string) string {
	return refEntityByProperty(refPropORCID, orcid, locale)
}

// RefEntityByLabel matches a reference-graph entity by exact label, used
// for journals and languages named in citation data.
func RefEntityByLabel(label, locale string) string {
	return fmt.Sprintf(`SELECT ?qid ?label ?quote WHERE {
  ?item rdfs:label %s@%s .
  SERVICE wikibase:label {
    bd:serviceParam wikibase:language "%s" .
    ?item rdfs:label ?label ; schema:description ?quote .
  }
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, Literal(label), locale, locale)
}

func refEntityByProperty(p, value, locale string) string {
	return fmt.Sprintf(`SELECT ?qid ?label ?quote WHERE {
  ?item wdt:%s %s .
  SERVICE wikibase:label {
    bd:serviceParam wikibase:language "%s" .
    ?item rdfs:label ?label ; schema:description ?quote .
  }
  BIND(STRAFTER(STR(?item), "entity/") AS ?qid)
} LIMIT 1`, p, Literal(value), locale)
}

// Literal escapes a string for verbatim interpolation into a query
// template; no semantic transformation is applied.
func Literal(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
