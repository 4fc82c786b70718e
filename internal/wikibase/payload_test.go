package wikibase

import (
	"encoding/json"
	"testing"

	"github.com/mardigraph/graphscribe/internal/model"
)

type payloadDoc struct {
	Labels map[string]struct {
		Language string `json:"language"`
		Value    string `json:"value"`
	} `json:"labels"`
	Descriptions map[string]struct {
		Value string `json:"value"`
	} `json:"descriptions"`
	Claims []struct {
		Type     string `json:"type"`
		Rank     string `json:"rank"`
		Mainsnak struct {
			Snaktype  string          `json:"snaktype"`
			Property  string          `json:"property"`
			Datatype  string          `json:"datatype"`
			Datavalue json.RawMessage `json:"datavalue"`
		} `json:"mainsnak"`
	} `json:"claims"`
}

func decodePayload(t *testing.T, raw string) payloadDoc {
	t.Helper()
	var doc payloadDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	return doc
}

func TestEntityPayload(t *testing.T) {
	raw, err := entityPayload("finite element method", "numerical method", []model.Claim{
		model.LinkItem("Q4", "P4"),
		model.ExternalID("10.1000/XYZ", "P16"),
		model.LocalizedText("Ein Titel", "P7"),
		model.Timestamp("2021-05-01", "P11"),
	}, "en")
	if err != nil {
		t.Fatalf("entityPayload failed: %v", err)
	}

	doc := decodePayload(t, raw)

	if doc.Labels["en"].Value != "finite element method" || doc.Labels["en"].Language != "en" {
		t.Errorf("label block wrong: %+v", doc.Labels)
	}
	if doc.Descriptions["en"].Value != "numerical method" {
		t.Errorf("description block wrong: %+v", doc.Descriptions)
	}

	if len(doc.Claims) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(doc.Claims))
	}

	for i, want := range []string{"wikibase-item", "external-id", "monolingualtext", "time"} {
		if doc.Claims[i].Mainsnak.Datatype != want {
			t.Errorf("statement %d datatype = %q, want %q", i, doc.Claims[i].Mainsnak.Datatype, want)
		}
		if doc.Claims[i].Type != "statement" || doc.Claims[i].Rank != "normal" {
			t.Errorf("statement %d envelope wrong: %+v", i, doc.Claims[i])
		}
	}

	var entityValue struct {
		Value struct {
			EntityType string `json:"entity-type"`
			ID         string `json:"id"`
		} `json:"value"`
	}
	if err := json.Unmarshal(doc.Claims[0].Mainsnak.Datavalue, &entityValue); err != nil {
		t.Fatalf("entity datavalue: %v", err)
	}
	if entityValue.Value.EntityType != "item" || entityValue.Value.ID != "Q4" {
		t.Errorf("entity-link datavalue wrong: %+v", entityValue.Value)
	}

	var timeValue struct {
		Value struct {
			Time      string `json:"time"`
			Precision int    `json:"precision"`
		} `json:"value"`
	}
	if err := json.Unmarshal(doc.Claims[3].Mainsnak.Datavalue, &timeValue); err != nil {
		t.Fatalf("time datavalue: %v", err)
	}
	if timeValue.Value.Time != "+2021-05-01T00:00:00Z" {
		t.Errorf("time value wrong: %q", timeValue.Value.Time)
	}
	if timeValue.Value.Precision != 11 {
		t.Errorf("expected day precision, got %d", timeValue.Value.Precision)
	}
}

func TestEntityPayload_DropsEmptyClaims(t *testing.T) {
	raw, err := entityPayload("label", "description", []model.Claim{
		model.Text("", "P13"),
		model.EntityLink("", "P12"),
		model.ExternalID("kept", "P16"),
	}, "en")
	if err != nil {
		t.Fatalf("entityPayload failed: %v", err)
	}

	doc := decodePayload(t, raw)
	if len(doc.Claims) != 1 {
		t.Fatalf("expected empty claims dropped, got %d statements", len(doc.Claims))
	}
	if doc.Claims[0].Mainsnak.Property != "P16" {
		t.Errorf("surviving statement wrong: %+v", doc.Claims[0])
	}
}

func TestEntityPayload_NoClaims(t *testing.T) {
	raw, err := entityPayload("label", "description", nil, "en")
	if err != nil {
		t.Fatalf("entityPayload failed: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if _, present := doc["claims"]; present {
		t.Error("expected no claims key for claim-less entity")
	}
}
