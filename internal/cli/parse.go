package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"textorder/internal/processing"
)

var (
	parseParser string
	parseJSON   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [order text]",
	Short: "Parse order text into a priced order",
	Long: `Parses free-form order text against the catalog and prints the
resulting order. With --parser both the rule and LLM parsers run side by
side and their results are compared.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseParser, "parser", "p", "rule", "parser to use: rule, llm or both")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	mode, err := processing.ParseMode(parseParser)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if mode != processing.ModeRule && cfg.LLM.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LLM.Timeout)
		defer cancel()
	}

	text := strings.Join(args, " ")
	result, err := a.processor.Process(ctx, text, mode)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if parseJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Parsed with %s parser\n", result.PreferredParser())
	fmt.Fprint(out, result.Preferred().Summary())
	if result.Comparison != nil {
		fmt.Fprintln(out)
		if result.Comparison.Agree() {
			fmt.Fprintln(out, "Rule and LLM parsers agree")
		}
		for _, diff := range result.Comparison.Differences {
			fmt.Fprintf(out, "Difference: %s\n", diff)
		}
	}
	for _, note := range result.Notes {
		fmt.Fprintf(out, "Note: %s\n", note)
	}
	return nil
}
