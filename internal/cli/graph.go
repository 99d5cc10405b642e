package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

var (
	graphClaim   string
	graphCatalog string
)

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphClaim, "claim", "", "Path to claim YAML/JSON (optional)")
	graphCmd.Flags().StringVar(&graphCatalog, "catalog", "", "Path to policy catalog YAML (required with --claim)")
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the guard chain as Graphviz DOT",
	Long: "Without --claim, prints the bare guard chain. With --claim and --catalog,\n" +
		"evaluates the claim and highlights the path it took.\n\n" +
		"Pipe into `dot -Tsvg` to render.",
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	var trace *claims.DecisionTrace

	if graphClaim != "" {
		if graphCatalog == "" {
			return fmt.Errorf("--catalog is required with --claim")
		}
		claim, err := catalog.LoadClaimFile(graphClaim)
		if err != nil {
			return err
		}
		policies, _, err := catalog.LoadFile(graphCatalog)
		if err != nil {
			return err
		}
		_, trace = claims.NewEngine().EvaluateWithTrace(claim, policies)
	}

	dot, err := claims.RenderTrace(trace)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), dot)
	return nil
}
