// Package decompose parses composite delimited answer strings into
// structured per-entity records. Parsing of string-encoded entity
// references happens exactly once, here; downstream components only ever
// see typed candidates.
package decompose

import (
	"strings"

	"github.com/mardigraph/graphscribe/internal/model"
)

// Extra-field names carried on candidates for category-specific claims.
const (
	ExtraFormulas   = "formulas"
	ExtraIdentifier = "identifier"
)

// Category describes one repeatable entity category of the questionnaire:
// which answer keys hold its fields and what a fresh instance defaults to.
type Category struct {
	Name string

	EntityKey      string // composite "<ref> <|> <label> <|> <description>"
	NameKey        string // fallback label when no composite is given
	DescriptionKey string // fallback description ("" means DefaultDescription)
	SubjectKey     string // main-subject composite, if the category has one
	LanguagesKey   string // programming-language composites, software only
	FormulasKey    string // ";"-separated defining formulas
	IdentifierKey  string // "doi:..." or "sw:..." external identifier

	// Repeated categories read instance-indexed keys; singular ones read
	// the bare key.
	Repeated bool

	// DefaultDescription fills the description of instances whose answers
	// never carry one (datasets default to "data set").
	DefaultDescription string
}

// Categories of the workflow questionnaire, in build order.
var (
	Model = Category{
		Name:           "model",
		EntityKey:      model.KeyModelEntity,
		NameKey:        model.KeyModelName,
		DescriptionKey: model.KeyModelDescription,
		SubjectKey:     model.KeyModelSubject,
		FormulasKey:    model.KeyModelFormulas,
		IdentifierKey:  model.KeyModelIdentifier,
	}

	Method = Category{
		Name:           "method",
		EntityKey:      model.KeyMethodEntity,
		NameKey:        model.KeyMethodName,
		DescriptionKey: model.KeyMethodDescription,
		SubjectKey:     model.KeyMethodSubject,
		FormulasKey:    model.KeyMethodFormulas,
		IdentifierKey:  model.KeyMethodIdentifier,
		Repeated:       true,
	}

	Software = Category{
		Name:           "software",
		EntityKey:      model.KeySoftwareEntity,
		NameKey:        model.KeySoftwareName,
		DescriptionKey: model.KeySoftwareDescription,
		LanguagesKey:   model.KeySoftwareLanguages,
		IdentifierKey:  model.KeySoftwareIdentifier,
		Repeated:       true,
	}

	Input = Category{
		Name:               "input",
		EntityKey:          model.KeyInputEntity,
		NameKey:            model.KeyInputName,
		IdentifierKey:      model.KeyInputIdentifier,
		Repeated:           true,
		DefaultDescription: "data set",
	}

	Output = Category{
		Name:               "output",
		EntityKey:          model.KeyOutputEntity,
		NameKey:            model.KeyOutputName,
		IdentifierKey:      model.KeyOutputIdentifier,
		Repeated:           true,
		DefaultDescription: "data set",
	}
)

// Decomposer splits raw answers into entity candidates. Tags configure
// which namespace markers map to which reference origin.
type Decomposer struct {
	targetTag    string
	referenceTag string
}

// New returns a Decomposer for the given graph namespace tags.
func New(targetTag, referenceTag string) *Decomposer {
	return &Decomposer{targetTag: targetTag, referenceTag: referenceTag}
}

// Count derives how many instances of a repeated category the user
// entered. Singular categories report 1 when any of their answers are
// present and 0 otherwise.
func (d *Decomposer) Count(a model.AnswerRecord, c Category) int {
	if c.Repeated {
		prefix, _, _ := strings.Cut(c.EntityKey, "/")
		return a.SetCount(prefix)
	}
	if a.Get(c.EntityKey) != "" || a.Get(c.NameKey) != "" {
		return 1
	}
	return 0
}

// Instances decomposes every user-entered instance of a category, in
// declaration order.
func (d *Decomposer) Instances(a model.AnswerRecord, c Category) []model.EntityCandidate {
	n := d.Count(a, c)
	out := make([]model.EntityCandidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.instance(a, c, i))
	}
	return out
}

func (d *Decomposer) instance(a model.AnswerRecord, c Category, i int) model.EntityCandidate {
	get := func(key string) string {
		if key == "" {
			return ""
		}
		if c.Repeated {
			return a.Indexed(key, i)
		}
		return a.Get(key)
	}

	cand := d.Candidate(get(c.EntityKey))
	if cand.Label == "" {
		cand.Label = get(c.NameKey)
	}
	if cand.Description == "" {
		cand.Description = get(c.DescriptionKey)
	}
	if cand.Description == "" {
		cand.Description = c.DefaultDescription
	}
	cand.Extra = map[string]string{
		ExtraFormulas:   get(c.FormulasKey),
		ExtraIdentifier: get(c.IdentifierKey),
	}
	return cand
}

// Subject decomposes the main-subject of instance i, or a zero candidate
// when the category has none or the answer is empty.
func (d *Decomposer) Subject(a model.AnswerRecord, c Category, i int) model.EntityCandidate {
	if c.SubjectKey == "" {
		return model.EntityCandidate{}
	}
	raw := a.Get(c.SubjectKey)
	if c.Repeated {
		raw = a.Indexed(c.SubjectKey, i)
	}
	return d.Candidate(raw)
}

// Languages decomposes the programming-language list of software instance i.
func (d *Decomposer) Languages(a model.AnswerRecord, i int) []model.EntityCandidate {
	raw := a.Indexed(model.KeySoftwareLanguages, i)
	if raw == "" {
		return nil
	}
	var out []model.EntityCandidate
	for _, part := range SplitInstances(raw) {
		cand := d.Candidate(part)
		if cand.Label == "" && cand.Reference.Origin == model.OriginNone {
			continue
		}
		out = append(out, cand)
	}
	return out
}

// Disciplines decomposes the single ";"-joined disciplines answer.
func (d *Decomposer) Disciplines(a model.AnswerRecord) []model.EntityCandidate {
	raw := a.Get(model.KeyDisciplines)
	if raw == "" {
		return nil
	}
	parts := SplitInstances(raw)
	out := make([]model.EntityCandidate, 0, len(parts))
	for _, part := range parts {
		out = append(out, d.Candidate(part))
	}
	return out
}

// Candidate parses one composite instance string of the form
// "<origin-tag>:<id> <|> <label> <|> <description>". An empty reference
// field yields a brand-new candidate; missing optional fields default to
// the empty string, never null.
func (d *Decomposer) Candidate(raw string) model.EntityCandidate {
	fields := SplitFields(raw)
	cand := model.EntityCandidate{
		Reference: model.ParseReference(field(fields, 0), d.targetTag, d.referenceTag),
		Label:     field(fields, 1),
	}
	cand.Description = field(fields, 2)
	return cand
}

// SplitInstances splits a composite answer into its per-instance parts.
func SplitInstances(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, model.InstanceSeparator)
}

// SplitFields splits one instance into its fields.
func SplitFields(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, model.FieldSeparator)
}

// Formulas splits a ";"-separated formula answer, trimming whitespace and
// stripping the math delimiters the questionnaire collects them with.
func Formulas(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ";") {
		f = strings.ReplaceAll(strings.TrimSpace(f), "$", "")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Identifier splits a "scheme:value" identifier answer at the first colon.
// Unqualified identifiers report an empty scheme.
func Identifier(s string) (scheme, value string) {
	if s == "" {
		return "", ""
	}
	before, after, ok := strings.Cut(s, ":")
	if !ok {
		return "", s
	}
	return before, after
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}
