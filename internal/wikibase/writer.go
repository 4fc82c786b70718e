// Package wikibase persists entities and wiki pages through the target
// graph's MediaWiki action API.
package wikibase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/ratelimit"
)

// Writer creates entities on the target graph. One Writer holds one
// authenticated session; it is not safe for concurrent use, which matches
// the strictly sequential creation order of a run.
type Writer struct {
	api       string
	username  string
	password  string
	locale    string
	userAgent string
	hc        *http.Client
	limiter   *ratelimit.Limiter
	csrfToken string
	log       *slog.Logger
}

// NewWriter creates a Writer for the given action API endpoint. The
// session is established lazily on the first write.
func NewWriter(cfg model.TargetConfig, httpCfg model.HTTPConfig, locale string, limiter *ratelimit.Limiter) (*Writer, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Writer{
		api:       cfg.APIEndpoint,
		username:  cfg.Username,
		password:  cfg.Password,
		locale:    locale,
		userAgent: httpCfg.UserAgent,
		hc: &http.Client{
			Timeout: httpCfg.Timeout,
			Jar:     jar,
		},
		limiter: limiter,
		log:     logging.New("wikibase"),
	}, nil
}

// Create persists a new entity with the given label, description and
// claims, returning its stable identifier. Claims with empty values are
// skipped so absent data is never written. Any transport or validation
// error is fatal to the run; creates are never retried.
func (w *Writer) Create(ctx context.Context, label, description string, claims []model.Claim) (string, error) {
	if err := w.ensureSession(ctx); err != nil {
		return "", &model.EntityStoreError{Op: "login", Err: err}
	}

	payload, err := entityPayload(label, description, claims, w.locale)
	if err != nil {
		return "", &model.EntityStoreError{Op: "encode", Err: err}
	}

	resp, err := w.post(ctx, url.Values{
		"action": {"wbeditentity"},
		"new":    {"item"},
		"token":  {w.csrfToken},
		"data":   {payload},
		"format": {"json"},
	})
	if err != nil {
		return "", &model.EntityStoreError{Op: "create", Err: err}
	}

	var parsed struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return "", &model.EntityStoreError{Op: "create", Err: err}
	}
	if parsed.Error != nil {
		return "", &model.EntityStoreError{Op: "create", Err: parsed.Error}
	}
	if parsed.Entity.ID == "" {
		return "", &model.EntityStoreError{Op: "create", Err: fmt.Errorf("no entity id in response")}
	}

	w.log.Info("entity created", "id", parsed.Entity.ID, "label", label)
	return parsed.Entity.ID, nil
}

// AppendPage appends rendered wikitext to the page with the given title,
// creating the page when absent.
func (w *Writer) AppendPage(ctx context.Context, title, wikitext string) error {
	if err := w.ensureSession(ctx); err != nil {
		return &model.EntityStoreError{Op: "login", Err: err}
	}

	resp, err := w.post(ctx, url.Values{
		"action":     {"edit"},
		"title":      {title},
		"token":      {w.csrfToken},
		"appendtext": {wikitext},
		"format":     {"json"},
	})
	if err != nil {
		return &model.EntityStoreError{Op: "edit page", Err: err}
	}

	var parsed struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return &model.EntityStoreError{Op: "edit page", Err: err}
	}
	if parsed.Error != nil {
		return &model.EntityStoreError{Op: "edit page", Err: parsed.Error}
	}

	w.log.Info("wiki page updated", "title", title)
	return nil
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Info)
}

// ensureSession performs the token dance once per Writer: fetch a login
// token, log in, fetch the CSRF token used by all subsequent writes.
func (w *Writer) ensureSession(ctx context.Context) error {
	if w.csrfToken != "" {
		return nil
	}
	if w.username == "" || w.password == "" {
		return model.ErrNoCredentials
	}

	loginToken, err := w.fetchToken(ctx, "login")
	if err != nil {
		return fmt.Errorf("login token: %w", err)
	}

	resp, err := w.post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {w.username},
		"lgpassword": {w.password},
		"lgtoken":    {loginToken},
		"format":     {"json"},
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var login struct {
		Login struct {
			Result string `json:"result"`
		} `json:"login"`
	}
	if err := json.Unmarshal(resp, &login); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if login.Login.Result != "Success" {
		return fmt.Errorf("login rejected: %s", login.Login.Result)
	}

	csrf, err := w.fetchToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("csrf token: %w", err)
	}
	w.csrfToken = csrf
	return nil
}

func (w *Writer) fetchToken(ctx context.Context, kind string) (string, error) {
	params := url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"format": {"json"},
	}
	if kind == "login" {
		params.Set("type", "login")
	}

	raw, err := w.get(ctx, params)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Query struct {
			Tokens map[string]string `json:"tokens"`
		} `json:"query"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}

	token := parsed.Query.Tokens[kind+"token"]
	if token == "" {
		return "", fmt.Errorf("no %s token in response", kind)
	}
	return token, nil
}

func (w *Writer) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.api+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return w.do(req)
}

func (w *Writer) post(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.api, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return w.do(req)
}

func (w *Writer) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", w.userAgent)

	if w.limiter != nil {
		if err := w.limiter.Wait(req.Context(), w.api); err != nil {
			return nil, err
		}
	}

	resp, err := w.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
