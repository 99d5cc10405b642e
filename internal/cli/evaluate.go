package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/app"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog/cache"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/claimdto"
)

var (
	evalClaim   string
	evalCatalog string
	evalTrace   bool
	evalStrict  bool
	evalFormat  string
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalClaim, "claim", "", "Path to claim YAML/JSON (required)")
	evaluateCmd.Flags().StringVar(&evalCatalog, "catalog", "", "Path to policy catalog YAML (required)")
	evaluateCmd.Flags().BoolVar(&evalTrace, "trace", false, "Include the guard trace")
	evaluateCmd.Flags().BoolVar(&evalStrict, "strict", false, "Reject malformed claims and policies")
	evaluateCmd.Flags().StringVarP(&evalFormat, "format", "f", "text", "Output format (text|json)")
	evaluateCmd.MarkFlagRequired("claim")
	evaluateCmd.MarkFlagRequired("catalog")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Decide a single claim against a catalog",
	Long: "Loads a claim and a policy catalog, runs the guard chain and prints\n" +
		"the decision. A rejected claim still exits 0; only bad input fails.",
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	claim, err := catalog.LoadClaimFile(evalClaim)
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(evalCatalog)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", evalCatalog, err)
	}

	svc := app.NewService(
		catalog.NewParser(),
		claims.NewEngine(),
		cache.NewInMemory(1),
		app.WithStrictValidation(evalStrict),
	)
	req := app.Request{Claim: claim, Catalog: app.Catalog{YAML: string(doc)}}

	var d *app.Decision
	if evalTrace {
		d, err = svc.EvaluateWithTrace(req)
	} else {
		d, err = svc.Evaluate(req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch evalFormat {
	case "json":
		b, err := json.MarshalIndent(claimdto.FromDecision(d), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
	default:
		writeDecisionText(out, d)
	}
	return nil
}

func writeDecisionText(w io.Writer, d *app.Decision) {
	verdict := "REJECTED"
	if d.Result.Approved {
		verdict = "APPROVED"
	}
	fmt.Fprintf(w, "%s  %s  payout=%.2f\n", verdict, d.Result.ReasonCode, d.Result.Payout)
	fmt.Fprintf(w, "decision: %s\n", d.ID)
	if d.Catalog != nil {
		fmt.Fprintf(w, "catalog:  %s (%d policies)\n", d.Catalog.Hash, d.Catalog.Policies)
	}
	if d.Trace == nil {
		return
	}
	fmt.Fprintln(w, "trace:")
	for _, s := range d.Trace.Steps {
		mark := "ok"
		if !s.Passed {
			mark = "FAIL"
		}
		if s.Detail != "" {
			fmt.Fprintf(w, "  %-16s %-4s %s\n", s.Guard, mark, s.Detail)
			continue
		}
		fmt.Fprintf(w, "  %-16s %s\n", s.Guard, mark)
	}
}
