package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the answering service",
	Long: `Exchanges credentials for a session token and stores it locally. Use
--email and --password for a password login, or --google-id-token with an ID
token obtained from the external identity provider.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&config.Email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&config.Password, "password", "", "Account password")
	loginCmd.Flags().StringVar(&config.GoogleIDToken, "google-id-token", "", "Federated ID token from the identity provider")

	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	c, err := setupClients(ctx)
	if err != nil {
		return err
	}
	defer c.close(ctx)

	if config.GoogleIDToken != "" {
		err = c.auth.LoginWithIDToken(ctx, config.GoogleIDToken)
	} else {
		if config.Email == "" || config.Password == "" {
			return fmt.Errorf("either --google-id-token or both --email and --password are required")
		}
		err = c.auth.Login(ctx, config.Email, config.Password)
	}
	if err != nil {
		return err
	}

	log.Printf("Logged in as %s", c.auth.CurrentUser().Email)
	return nil
}
