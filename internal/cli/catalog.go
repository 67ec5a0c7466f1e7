package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var catalogJSON bool

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective risk catalog",
	Long: `Print the risk categories and remediation texts used to annotate flagged clauses.

The built-in catalog can be replaced with --catalog <file.yaml>:

  entries:
    - category: payment
      remediation: Specify clear payment terms and criteria for approval.

Catalog order is significant: on equal similarity the earlier entry wins.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if catalogJSON {
			data, err := json.MarshalIndent(cfg.Catalog, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal catalog: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		for i, entry := range cfg.Catalog {
			fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, entry.Category, entry.Remediation)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print the catalog as JSON")
}
