package model

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Answer keys follow a fixed <category>/<field> convention; repeatable
// set instances carry a numeric "_<i>" suffix.
const (
	KeyOperation    = "workflow/operation" // document | search
	KeyWorkflowType = "workflow/type"      // mathematical | experimental
	KeyExportTarget = "workflow/export"    // markdown | preview | portal
	KeyTitle        = "workflow/title"
	KeyObjective    = "workflow/objective"

	KeyPublication = "publication/main" // "Yes: <doi>" or "No"

	KeyModelEntity      = "model/entity"
	KeyModelName        = "model/name"
	KeyModelDescription = "model/description"
	KeyModelSubject     = "model/subject"
	KeyModelFormulas    = "model/formulas"
	KeyModelIdentifier  = "model/identifier"

	KeyMethodEntity      = "method/entity"
	KeyMethodName        = "method/name"
	KeyMethodDescription = "method/description"
	KeyMethodSubject     = "method/subject"
	KeyMethodFormulas    = "method/formulas"
	KeyMethodIdentifier  = "method/identifier"

	KeySoftwareEntity      = "software/entity"
	KeySoftwareName        = "software/name"
	KeySoftwareDescription = "software/description"
	KeySoftwareLanguages   = "software/languages"
	KeySoftwareIdentifier  = "software/identifier"

	KeyInputEntity     = "input/entity"
	KeyInputName       = "input/name"
	KeyInputIdentifier = "input/identifier"

	KeyOutputEntity     = "output/entity"
	KeyOutputName       = "output/name"
	KeyOutputIdentifier = "output/identifier"

	KeyDisciplines = "discipline/list"

	KeySearchObjectives    = "search/objectives"
	KeySearchByObjective   = "search/by_objective"
	KeySearchDisciplines   = "search/disciplines"
	KeySearchByDiscipline  = "search/by_discipline"
	KeySearchEntities      = "search/entities"
	KeySearchByEntity      = "search/by_entity"
)

// Answer values for selection questions.
const (
	OperationDocument = "document"
	OperationSearch   = "search"

	ExportMarkdown = "markdown"
	ExportPreview  = "preview"
	ExportPortal   = "portal"

	AnswerYes = "yes"
)

// Delimiters of composite answers: instances are joined by "; ", fields
// within one instance by " <|> ".
const (
	InstanceSeparator = "; "
	FieldSeparator    = " <|> "
)

// AnswerRecord is the normalized flat mapping of answer-key to value
// produced by the answer source. It is mutated in place during a run so
// later steps and the document renderer see resolved references instead
// of the raw user text.
type AnswerRecord map[string]string

var whitespaceRE = regexp.MustCompile(`\s+`)

// LoadAnswers reads a flat YAML mapping from disk. Scalar values are
// stringified with whitespace collapsed; missing keys simply stay absent.
func LoadAnswers(path string) (AnswerRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var flat map[string]any
	if err := yaml.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	rec := make(AnswerRecord, len(flat))
	for k, v := range flat {
		rec[k] = Stringify(v)
	}
	return rec, nil
}

// Stringify renders an answer value as a flat string, joining lists on
// the instance separator and collapsing internal whitespace.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return whitespaceRE.ReplaceAllString(val, " ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, InstanceSeparator)
	default:
		return whitespaceRE.ReplaceAllString(fmt.Sprint(val), " ")
	}
}

// Get returns the answer for key, or "" when unanswered.
func (a AnswerRecord) Get(key string) string {
	return a[key]
}

// Indexed returns the answer for a repeated set instance, e.g.
// Indexed("method/name", 2) reads "method/name_2". A negative index
// addresses the bare key of a singular set.
func (a AnswerRecord) Indexed(key string, i int) string {
	return a[IndexedKey(key, i)]
}

// Set records an answer value.
func (a AnswerRecord) Set(key, value string) {
	a[key] = value
}

// SetIndexed records an answer for a repeated set instance.
func (a AnswerRecord) SetIndexed(key string, i int, value string) {
	a[IndexedKey(key, i)] = value
}

// IndexedKey renders the conventional key for instance i of a repeated
// set; negative indexes address singular sets.
func IndexedKey(key string, i int) string {
	if i < 0 {
		return key
	}
	return key + "_" + strconv.Itoa(i)
}

// SetCount derives how many instances of a repeated set the user entered:
// the maximum numeric suffix over keys sharing the category prefix, plus one.
func (a AnswerRecord) SetCount(prefix string) int {
	count := 0
	for key := range a {
		if !strings.HasPrefix(key, prefix+"/") {
			continue
		}
		idx := strings.LastIndex(key, "_")
		if idx < 0 {
			continue
		}
		n, err := strconv.Atoi(key[idx+1:])
		if err != nil {
			continue
		}
		if n+1 > count {
			count = n + 1
		}
	}
	return count
}
