package wikibase

import (
	"encoding/json"
	"fmt"

	"github.com/mardigraph/graphscribe/internal/model"
)

// entityPayload renders the wbeditentity data document for a new item.
// Claims with empty values are dropped here, before anything reaches the
// wire.
func entityPayload(label, description string, claims []model.Claim, locale string) (string, error) {
	doc := map[string]any{
		"labels": map[string]any{
			locale: map[string]string{"language": locale, "value": label},
		},
		"descriptions": map[string]any{
			locale: map[string]string{"language": locale, "value": description},
		},
	}

	var statements []map[string]any
	for _, c := range claims {
		if c.Value == "" {
			continue
		}
		snak, err := snakFor(c, locale)
		if err != nil {
			return "", err
		}
		statements = append(statements, map[string]any{
			"mainsnak": snak,
			"type":     "statement",
			"rank":     "normal",
		})
	}
	if len(statements) > 0 {
		doc["claims"] = statements
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func snakFor(c model.Claim, locale string) (map[string]any, error) {
	snak := map[string]any{
		"snaktype": "value",
		"property": string(c.Property),
	}

	switch c.Kind {
	case model.ClaimExternalID:
		snak["datavalue"] = map[string]any{"type": "string", "value": c.Value}
		snak["datatype"] = "external-id"
	case model.ClaimText:
		snak["datavalue"] = map[string]any{"type": "string", "value": c.Value}
		snak["datatype"] = "string"
	case model.ClaimEntityLink:
		snak["datavalue"] = map[string]any{
			"type": "wikibase-entityid",
			"value": map[string]string{
				"entity-type": "item",
				"id":          c.Value,
			},
		}
		snak["datatype"] = "wikibase-item"
	case model.ClaimLocalizedText:
		snak["datavalue"] = map[string]any{
			"type": "monolingualtext",
			"value": map[string]string{
				"text":     c.Value,
				"language": locale,
			},
		}
		snak["datatype"] = "monolingualtext"
	case model.ClaimTimestamp:
		snak["datavalue"] = map[string]any{
			"type": "time",
			"value": map[string]any{
				"time":          "+" + c.Value,
				"timezone":      0,
				"before":        0,
				"after":         0,
				"precision":     11, // day
				"calendarmodel": "http://www.wikidata.org/entity/Q1985727",
			},
		}
		snak["datatype"] = "time"
	default:
		return nil, fmt.Errorf("unsupported claim kind %v", c.Kind)
	}

	return snak, nil
}
