package cmd

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Long: `Clears the locally stored session token and identity. A best-effort
server-side invalidation is attempted; its failure does not prevent the local
logout.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	c, err := setupClients(ctx)
	if err != nil {
		return err
	}
	defer c.close(ctx)

	if err := c.auth.Restore(ctx); err != nil {
		return err
	}

	// Logout always succeeds locally, even when already anonymous
	c.auth.Logout(ctx)
	return nil
}
