package cli

import (
	"github.com/spf13/cobra"

	"textorder/internal/catalog"
)

var menuCmd = &cobra.Command{
	Use:   "menu [restaurant]",
	Short: "Print the menu of one or every restaurant",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		restaurant := ""
		if len(args) == 1 {
			restaurant = args[0]
		}
		menu, err := catalog.FormatMenu(a.catalog, restaurant)
		if err != nil {
			return err
		}
		cmd.Print(menu)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}
