package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mardigraph/graphscribe/internal/build"
	"github.com/mardigraph/graphscribe/internal/cache"
	"github.com/mardigraph/graphscribe/internal/citation"
	"github.com/mardigraph/graphscribe/internal/model"
	"github.com/mardigraph/graphscribe/internal/ratelimit"
	"github.com/mardigraph/graphscribe/internal/sparql"
	"github.com/mardigraph/graphscribe/internal/wikibase"
)

var (
	exportFlag string
	outPath    string
	runTimeout time.Duration
	noCache    bool
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish <answers.yaml>",
	Short: "Reconcile a workflow's entities and publish its documentation",
	Long: `Publish reads a flat answer file, reconciles every described entity
against the target and reference graphs, creates missing entities in
dependency order, and renders the workflow document.

Export targets:
  markdown  render the document locally, no graph writes
  preview   render for display, no graph writes
  portal    create entities on the target graph and append the wiki page

Example:
  graphscribe publish workflow.yaml
  graphscribe publish workflow.yaml --export portal --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVar(&exportFlag, "export", "", "override the export-target answer (markdown, preview, portal)")
	publishCmd.Flags().StringVar(&outPath, "out", "", "output path for the rendered document (default: stdout)")
	publishCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout wrapping the whole pipeline")
	publishCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of reference-graph and citation lookups")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	answers, err := model.LoadAnswers(args[0])
	if err != nil {
		return err
	}
	applyExportDefault(answers, exportFlag, cfg)
	answers.Set(model.KeyOperation, model.OperationDocument)

	persist := model.ParseExportTarget(answers.Get(model.KeyExportTarget)).Persist()

	assembler, err := newAssembler(cfg, persist)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	outcome, err := assembler.Run(ctx, answers)
	if err != nil {
		return describeFailure(err)
	}

	if dest := documentPath(outPath, cfg); dest != "" {
		if err := os.WriteFile(dest, []byte(outcome.Document), 0o644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote document: %s\n", dest)
		}
	} else {
		fmt.Println(outcome.Document)
	}

	if outcome.WorkflowID != "" {
		fmt.Fprintf(os.Stderr, "Workflow published: %s\n", outcome.ItemURL)
		fmt.Fprintf(os.Stderr, "Documentation page: %s\n", outcome.PageURL)
	}
	return nil
}

// applyExportDefault records the export override on the answer set. The
// flag wins over the answer file; when both are silent, a configured
// persisting target selects the portal export.
func applyExportDefault(answers model.AnswerRecord, flag string, cfg *model.Config) {
	switch {
	case flag != "":
		answers.Set(model.KeyExportTarget, flag)
	case answers.Get(model.KeyExportTarget) == "" && cfg.Target.Persist:
		answers.Set(model.KeyExportTarget, model.ExportPortal)
	}
}

// documentPath picks the rendered-document destination. The flag wins
// over the configured path; empty means stdout.
func documentPath(flag string, cfg *model.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Output.Path
}

// newAssembler wires the real clients behind the assembler's interfaces.
func newAssembler(cfg *model.Config, persist bool) (*build.Assembler, error) {
	limiter := ratelimit.New(cfg.Target.RateLimit, cfg.Target.Burst)
	if host := endpointHost(cfg.Reference.SPARQLEndpoint); host != "" {
		limiter.SetHostRate(host, cfg.Reference.RateLimit, cfg.Reference.Burst)
	}

	target := sparql.NewClient(cfg.Target.SPARQLEndpoint, cfg.HTTP, sparql.WithLimiter(limiter))

	refOpts := []sparql.Option{sparql.WithLimiter(limiter)}
	var citationCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".graphscribe", "cache")
			}
		}
		refOpts = append(refOpts, sparql.WithCache(cache.NewMemoryCache(cfg.Cache.TTL), cfg.Cache.TTL))
		if dir != "" {
			citationCache = cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
		}
	}
	reference := sparql.NewClient(cfg.Reference.SPARQLEndpoint, cfg.HTTP, refOpts...)

	citations := citation.NewClient(cfg.Citation.Endpoint, cfg.HTTP, limiter, citationCache, cfg.Cache.TTL)

	var writer build.Creator
	var pages build.PageAppender
	if persist {
		w, err := wikibase.NewWriter(cfg.Target, cfg.HTTP, cfg.Locale, limiter)
		if err != nil {
			return nil, err
		}
		writer, pages = w, w
	}

	return build.NewAssembler(cfg, target, reference, writer, pages, citations, persist), nil
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

// describeFailure turns the run's terminal error into a user-facing
// message naming exactly what went wrong.
func describeFailure(err error) error {
	var missingAnswer *model.MissingRequiredAnswerError
	var missingEntity *model.MissingRequiredEntityError
	switch {
	case errors.Is(err, model.ErrDuplicateWorkflow):
		return fmt.Errorf("a workflow with this title and research objective is already published; nothing was created")
	case errors.Is(err, model.ErrNoDOI):
		return fmt.Errorf("portal export needs a DOI: answer the publication question with \"Yes: <doi>\"")
	case errors.Is(err, model.ErrDOINotFound):
		return fmt.Errorf("the provided DOI resolved no citation data; check it and re-run")
	case errors.Is(err, model.ErrNoCredentials):
		return fmt.Errorf("portal export needs target graph credentials (GRAPHSCRIBE_TARGET_USERNAME / GRAPHSCRIBE_TARGET_PASSWORD)")
	case errors.As(err, &missingAnswer):
		return fmt.Errorf("answer the mandatory question %q before exporting", missingAnswer.Field)
	case errors.As(err, &missingEntity):
		return fmt.Errorf("%s #%d needs either an existing identifier or a name and description", missingEntity.Category, missingEntity.Index+1)
	}
	return err
}
