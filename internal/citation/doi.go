// Package citation resolves DOIs to structured bibliographic data via the
// Crossref works API.
package citation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mardigraph/graphscribe/internal/cache"
	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/ratelimit"
)

// Author is one contributor of a publication. ORCID is empty when the
// registry holds no identifier for the contributor.
type Author struct {
	Name  string `json:"name"`
	ORCID string `json:"orcid,omitempty"`
}

// Citation is the structured bibliographic record of one publication.
type Citation struct {
	DOI       string   `json:"doi"`
	Title     string   `json:"title"`
	Journal   string   `json:"journal,omitempty"`
	Language  string   `json:"language,omitempty"`
	Volume    string   `json:"volume,omitempty"`
	Issue     string   `json:"issue,omitempty"`
	Pages     string   `json:"pages,omitempty"`
	Published string   `json:"published,omitempty"` // YYYY-MM-DD
	EntryType string   `json:"entry_type,omitempty"`
	Authors   []Author `json:"authors"`
}

// IsArticle reports whether the record describes a journal article, which
// selects the instance-of category on the target graph.
func (c *Citation) IsArticle() bool {
	return c.EntryType == "journal-article" || c.EntryType == "article"
}

// IdentifiedAuthors returns the contributors that carry an ORCID.
func (c *Citation) IdentifiedAuthors() []Author {
	var out []Author
	for _, a := range c.Authors {
		if a.ORCID != "" {
			out = append(out, a)
		}
	}
	return out
}

// AnonymousAuthors returns the names of contributors without an ORCID;
// they become plain name-string claims on the publication.
func (c *Citation) AnonymousAuthors() []string {
	var out []string
	for _, a := range c.Authors {
		if a.ORCID == "" {
			out = append(out, a.Name)
		}
	}
	return out
}

// Client looks up citation data over HTTP.
type Client struct {
	endpoint  string
	hc        *http.Client
	userAgent string
	maxBytes  int64
	limiter   *ratelimit.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
	log       *slog.Logger
}

// NewClient creates a citation client against the given works endpoint.
func NewClient(endpoint string, httpCfg model.HTTPConfig, limiter *ratelimit.Limiter, store cache.Cache, ttl time.Duration) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		hc:        &http.Client{Timeout: httpCfg.Timeout},
		userAgent: httpCfg.UserAgent,
		maxBytes:  httpCfg.MaxBodyBytes,
		limiter:   limiter,
		cache:     store,
		cacheTTL:  ttl,
		log:       logging.New("citation"),
	}
}

// crossrefWork mirrors the subset of the Crossref message we consume.
type crossrefWork struct {
	Message struct {
		DOI            string     `json:"DOI"`
		Title          []string   `json:"title"`
		ContainerTitle []string   `json:"container-title"`
		Language       string     `json:"language"`
		Volume         string     `json:"volume"`
		Issue          string     `json:"issue"`
		Page           string     `json:"page"`
		Type           string     `json:"type"`
		Published      dateParts  `json:"published"`
		Author         []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
			ORCID  string `json:"ORCID"`
		} `json:"author"`
	} `json:"message"`
}

type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Lookup resolves a DOI. An empty doi yields ErrNoDOI; an unresolvable
// one yields ErrDOINotFound.
func (c *Client) Lookup(ctx context.Context, doi string) (*Citation, error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return nil, model.ErrNoDOI
	}

	key := cache.Key(c.endpoint, doi)
	var cached Citation
	if cache.GetRecord(c.cache, key, &cached) {
		return &cached, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+url.PathEscape(doi), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("citation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.ErrDOINotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("citation lookup: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var work crossrefWork
	if err := json.Unmarshal(raw, &work); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	cit := fromCrossref(&work)
	if cit.Title == "" {
		return nil, model.ErrDOINotFound
	}

	if err := cache.SetRecord(c.cache, key, cit, c.cacheTTL); err != nil {
		c.log.Warn("cache write failed", "error", err)
	}

	c.log.Debug("citation resolved", "doi", doi, "title", cit.Title)
	return cit, nil
}

func fromCrossref(work *crossrefWork) *Citation {
	m := &work.Message
	cit := &Citation{
		DOI:       strings.ToUpper(m.DOI),
		Language:  m.Language,
		Volume:    m.Volume,
		Issue:     m.Issue,
		Pages:     m.Page,
		EntryType: m.Type,
	}
	if len(m.Title) > 0 {
		cit.Title = m.Title[0]
	}
	if len(m.ContainerTitle) > 0 {
		cit.Journal = m.ContainerTitle[0]
	}
	cit.Published = formatDate(m.Published)
	for _, a := range m.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			continue
		}
		cit.Authors = append(cit.Authors, Author{
			Name:  name,
			ORCID: bareORCID(a.ORCID),
		})
	}
	return cit
}

// formatDate renders Crossref date-parts as YYYY-MM-DD, defaulting the
// month and day to 01 when the registry only knows the year.
func formatDate(d dateParts) string {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return ""
	}
	parts := d.DateParts[0]
	year := parts[0]
	month, day := 1, 1
	if len(parts) > 1 {
		month = parts[1]
	}
	if len(parts) > 2 {
		day = parts[2]
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// bareORCID strips the registry URL prefix from an ORCID value.
func bareORCID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
