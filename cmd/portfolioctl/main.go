package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	admintokencmder "portfolio-backend/cmd/portfolioctl/admintoken"
	chatcmder "portfolio-backend/cmd/portfolioctl/chat"
	migratecmder "portfolio-backend/cmd/portfolioctl/migrate"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Operator tooling for the portfolio backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Same .env the server reads; missing file is fine.
			godotenv.Load()
		},
	}

	cmd.AddCommand(migratecmder.NewMigrateCmd())
	cmd.AddCommand(admintokencmder.NewAdminTokenCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
