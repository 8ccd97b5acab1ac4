package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in with it",
	RunE:  runSignup,
}

func init() {
	signupCmd.Flags().StringVar(&config.Email, "email", "", "Account email")
	signupCmd.Flags().StringVar(&config.Password, "password", "", "Account password")

	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(signupCmd)
}

func runSignup(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	c, err := setupClients(ctx)
	if err != nil {
		return err
	}
	defer c.close(ctx)

	if err := c.auth.Signup(ctx, config.Email, config.Password); err != nil {
		return err
	}

	log.Printf("Signed up and logged in as %s", c.auth.CurrentUser().Email)
	return nil
}
