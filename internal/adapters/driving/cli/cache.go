package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cachePrefix string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Provider response cache commands",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached provider responses",
	Long: `Remove cached provider responses so the next run refetches them.

Keys are prefixed by provider, e.g. "sec:", "yahoo:", "gdelt:" or
"patentsview:". Without --prefix the whole cache is cleared.`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	cacheClearCmd.Flags().StringVar(&cachePrefix, "prefix", "", "only remove keys with this prefix")
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if responseCache == nil {
		return errors.New("response cache not configured")
	}

	n, err := responseCache.Clear(cmd.Context(), cachePrefix)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Printf("Removed %d cached responses\n", n)
	return nil
}
