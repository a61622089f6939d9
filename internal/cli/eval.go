package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"textorder/internal/evaluation"
	"textorder/internal/processing"
)

var (
	evalParser   string
	evalScenario string
	evalJSON     bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score a parser against the built-in scenarios",
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalParser, "parser", "p", "rule", "parser to evaluate: rule or llm")
	evalCmd.Flags().StringVarP(&evalScenario, "scenario", "s", "", "evaluate a single scenario")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	mode, err := processing.ParseMode(evalParser)
	if err != nil {
		return err
	}
	if mode == processing.ModeBoth {
		return fmt.Errorf("eval runs one parser at a time, got %q", evalParser)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.processor.Parser(mode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var results []*evaluation.EvaluationResult
	if evalScenario != "" {
		result, err := a.evaluator.EvaluateParser(ctx, string(mode), p, evalScenario)
		if err != nil {
			return err
		}
		results = append(results, result)
	} else {
		results, err = a.evaluator.EvaluateAll(ctx, string(mode), p)
		if err != nil {
			return err
		}
	}

	if a.store != nil {
		for _, r := range results {
			if _, err := a.store.SaveEvaluation(r); err != nil {
				return err
			}
		}
	}

	average := evaluation.Average(results)
	if evalJSON {
		data, err := json.MarshalIndent(map[string]interface{}{
			"parser":  string(mode),
			"results": results,
			"average": average,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tEXACT\tPRECISION\tRECALL\tLATENCY MS\tERROR")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.0f\t%.2f\t%.2f\t%.3f\t%s\n",
			r.Scenario,
			r.Metrics[evaluation.MetricExactMatch],
			r.Metrics[evaluation.MetricItemPrecision],
			r.Metrics[evaluation.MetricItemRecall],
			r.Metrics[evaluation.MetricLatencyMS],
			r.Error,
		)
	}
	w.Flush()

	cmd.Println()
	for _, name := range evaluation.MetricNames() {
		cmd.Printf("%-20s %.3f\n", name, average[name])
	}
	return nil
}
