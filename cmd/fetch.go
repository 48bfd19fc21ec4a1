package cmd

import (
	"fmt"

	"datasync/core/provider"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var keysOnly bool

// fetchCmd runs a single pass and prints the collection
var fetchCmd = &cobra.Command{
	Use:   "fetch [endpoint]",
	Short: "Fetch the configured endpoint once and print the collection",
	Long: `Runs one reconciliation pass against the configured source and prints the
resulting collection as JSON, in the order the source returned it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := ""
		if len(args) == 1 {
			endpoint = args[0]
		}

		s, err := openSession(cmd.Context(), endpoint)
		if err != nil {
			return err
		}
		defer s.Close()

		changed, err := s.provider.FetchOnce(cmd.Context(), s.endpoint, provider.Request{})
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		s.log.Debug("Fetch completed", zap.Bool("changed", changed), zap.Int("objects", s.provider.Len()))

		var out any = s.provider.Objects()
		if keysOnly {
			out = s.provider.Keys()
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode collection: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&keysOnly, "keys", false, "Print only the collection keys")
	RootCmd.AddCommand(fetchCmd)
}
