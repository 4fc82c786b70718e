package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mardigraph/graphscribe/internal/model"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <answers.yaml>",
	Short: "Search published workflows on the target graph",
	Long: `Search filters the workflow entities already published on the target
graph by research-objective keywords, disciplines, and linked entities
(models, methods, software, datasets), as declared in the answer file.

Example:
  graphscribe search filters.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "overall search timeout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	answers, err := model.LoadAnswers(args[0])
	if err != nil {
		return err
	}
	answers.Set(model.KeyOperation, model.OperationSearch)

	assembler, err := newAssembler(cfg, false)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	results, err := assembler.Search(ctx, answers)
	if err != nil {
		return describeFailure(err)
	}

	fmt.Fprintf(os.Stderr, "%d workflow(s) found\n", len(results))
	for _, r := range results {
		fmt.Printf("%s\n  page: %s\n  item: %s\n", r.Label, r.PageURL, r.ItemURL)
	}
	return nil
}
