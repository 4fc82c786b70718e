package model

import "strings"

// PropertyID identifies a property on the target graph (e.g. "P4").
type PropertyID string

// ItemID identifies an item on the target graph (e.g. "Q2").
type ItemID string

// ClaimKind selects the wire representation of a claim value.
type ClaimKind int

const (
	// ClaimExternalID is an external-identifier literal.
	ClaimExternalID ClaimKind = iota
	// ClaimEntityLink is a relational link to another item.
	ClaimEntityLink
	// ClaimText is a plain string literal.
	ClaimText
	// ClaimLocalizedText is a monolingual text literal tagged with the
	// run's locale.
	ClaimLocalizedText
	// ClaimTimestamp is a precision-qualified point in time.
	ClaimTimestamp
)

func (k ClaimKind) String() string {
	switch k {
	case ClaimExternalID:
		return "external-id"
	case ClaimEntityLink:
		return "entity-link"
	case ClaimText:
		return "text"
	case ClaimLocalizedText:
		return "localized-text"
	case ClaimTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// Claim is one typed assertion attached to an entity at creation time.
// Claims with empty values are skipped by the entity writer: absent data
// is never written as an empty claim.
type Claim struct {
	Kind     ClaimKind
	Property PropertyID
	Value    string
}

// ExternalID builds an external-identifier claim.
func ExternalID(value string, p PropertyID) Claim {
	return Claim{Kind: ClaimExternalID, Property: p, Value: value}
}

// EntityLink builds a relational claim pointing at another item.
func EntityLink(id string, p PropertyID) Claim {
	return Claim{Kind: ClaimEntityLink, Property: p, Value: id}
}

// LinkItem builds a relational claim pointing at a schema item.
func LinkItem(item ItemID, p PropertyID) Claim {
	return EntityLink(string(item), p)
}

// Text builds a plain string claim.
func Text(value string, p PropertyID) Claim {
	return Claim{Kind: ClaimText, Property: p, Value: value}
}

// LocalizedText builds a monolingual text claim; the language tag is
// supplied by the writer from the run locale.
func LocalizedText(value string, p PropertyID) Claim {
	return Claim{Kind: ClaimLocalizedText, Property: p, Value: value}
}

// Timestamp builds a point-in-time claim. Date-only values are completed
// to midnight UTC; full timestamps pass through unchanged.
func Timestamp(value string, p PropertyID) Claim {
	return Claim{Kind: ClaimTimestamp, Property: p, Value: TimeValue(value)}
}

// TimeValue normalizes a date or timestamp to full ISO-8601. A bare date
// receives a fixed midnight-UTC time of day.
func TimeValue(v string) string {
	if v == "" {
		return ""
	}
	if strings.ContainsRune(v, 'T') {
		return v
	}
	return v + "T00:00:00Z"
}

// Schema holds the process-wide property and item identifiers of the
// target graph. Defaults mirror the production portal; deployments against
// a differently-numbered wikibase override them in configuration.
type Schema struct {
	PropReferenceID     PropertyID `yaml:"prop_reference_id" mapstructure:"prop_reference_id"`         // mapping to the reference-graph id
	PropCites           PropertyID `yaml:"prop_cites" mapstructure:"prop_cites"`                       // workflow -> publication
	PropInstanceOf      PropertyID `yaml:"prop_instance_of" mapstructure:"prop_instance_of"`           // category tag
	PropField           PropertyID `yaml:"prop_field" mapstructure:"prop_field"`                       // workflow -> discipline
	PropUses            PropertyID `yaml:"prop_uses" mapstructure:"prop_uses"`                         // workflow -> model/method/software/dataset
	PropTitle           PropertyID `yaml:"prop_title" mapstructure:"prop_title"`                       // monolingual title
	PropAuthor          PropertyID `yaml:"prop_author" mapstructure:"prop_author"`                     // publication -> author item
	PropAuthorName      PropertyID `yaml:"prop_author_name" mapstructure:"prop_author_name"`           // author name string
	PropLanguageOfWork  PropertyID `yaml:"prop_language_of_work" mapstructure:"prop_language_of_work"` //
	PropPublicationDate PropertyID `yaml:"prop_publication_date" mapstructure:"prop_publication_date"` //
	PropPublishedIn     PropertyID `yaml:"prop_published_in" mapstructure:"prop_published_in"`         // publication -> journal
	PropVolume          PropertyID `yaml:"prop_volume" mapstructure:"prop_volume"`                     //
	PropIssue           PropertyID `yaml:"prop_issue" mapstructure:"prop_issue"`                       //
	PropPages           PropertyID `yaml:"prop_pages" mapstructure:"prop_pages"`                       //
	PropDOI             PropertyID `yaml:"prop_doi" mapstructure:"prop_doi"`                           //
	PropMainSubject     PropertyID `yaml:"prop_main_subject" mapstructure:"prop_main_subject"`         // model/method -> topic
	PropFormula         PropertyID `yaml:"prop_formula" mapstructure:"prop_formula"`                   // defining formula
	PropProgrammedIn    PropertyID `yaml:"prop_programmed_in" mapstructure:"prop_programmed_in"`       // software -> language
	PropSoftwareID      PropertyID `yaml:"prop_software_id" mapstructure:"prop_software_id"`           // software catalogue id
	PropOccupation      PropertyID `yaml:"prop_occupation" mapstructure:"prop_occupation"`             //
	PropORCID           PropertyID `yaml:"prop_orcid" mapstructure:"prop_orcid"`                       //

	ItemScholarlyArticle ItemID `yaml:"item_scholarly_article" mapstructure:"item_scholarly_article"`
	ItemWorkflow         ItemID `yaml:"item_workflow" mapstructure:"item_workflow"`
	ItemModel            ItemID `yaml:"item_model" mapstructure:"item_model"`
	ItemMethod           ItemID `yaml:"item_method" mapstructure:"item_method"`
	ItemSoftware         ItemID `yaml:"item_software" mapstructure:"item_software"`
	ItemDataset          ItemID `yaml:"item_dataset" mapstructure:"item_dataset"`
	ItemHuman            ItemID `yaml:"item_human" mapstructure:"item_human"`
	ItemResearcher       ItemID `yaml:"item_researcher" mapstructure:"item_researcher"`
	ItemJournal          ItemID `yaml:"item_journal" mapstructure:"item_journal"`
	ItemPublication      ItemID `yaml:"item_publication" mapstructure:"item_publication"`
	ItemLanguage         ItemID `yaml:"item_language" mapstructure:"item_language"`
}

// DefaultSchema returns the property/item numbering of the production
// target graph.
func DefaultSchema() Schema {
	return Schema{
		PropReferenceID:     "P2",
		PropCites:           "P3",
		PropInstanceOf:      "P4",
		PropField:           "P5",
		PropUses:            "P6",
		PropTitle:           "P7",
		PropAuthor:          "P8",
		PropAuthorName:      "P9",
		PropLanguageOfWork:  "P10",
		PropPublicationDate: "P11",
		PropPublishedIn:     "P12",
		PropVolume:          "P13",
		PropIssue:           "P14",
		PropPages:           "P15",
		PropDOI:             "P16",
		PropMainSubject:     "P17",
		PropFormula:         "P18",
		PropProgrammedIn:    "P19",
		PropSoftwareID:      "P20",
		PropOccupation:      "P21",
		PropORCID:           "P22",

		ItemScholarlyArticle: "Q1",
		ItemWorkflow:         "Q2",
		ItemModel:            "Q3",
		ItemMethod:           "Q4",
		ItemSoftware:         "Q5",
		ItemDataset:          "Q6",
		ItemHuman:            "Q7",
		ItemResearcher:       "Q8",
		ItemJournal:          "Q9",
		ItemPublication:      "Q10",
		ItemLanguage:         "Q11",
	}
}
