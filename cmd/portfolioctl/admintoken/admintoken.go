package admintokencmder

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"portfolio-backend/internal/middleware"
)

const adminTokenLongDesc string = `Mint a bearer token for the admin contact inbox.

The token is signed with ADMIN_JWT_SECRET (or --secret) and is accepted on
/api/v1/admin routes until it expires.

Examples:
  portfolioctl admin-token
  portfolioctl admin-token --ttl 1h`

const adminTokenShortDesc string = "Mint an admin inbox token"

type adminTokenCommander struct {
	ttl    time.Duration
	secret string
}

func NewAdminTokenCmd() *cobra.Command {
	cmder := &adminTokenCommander{}

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: adminTokenShortDesc,
		Long:  adminTokenLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().DurationVar(&cmder.ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&cmder.secret, "secret", "", "Signing secret (defaults to ADMIN_JWT_SECRET)")

	return cmd
}

func (c *adminTokenCommander) run(cmd *cobra.Command) error {
	secret := c.secret
	if secret == "" {
		secret = os.Getenv("ADMIN_JWT_SECRET")
	}
	if secret == "" {
		return errors.New("no signing secret: pass --secret or set ADMIN_JWT_SECRET")
	}
	if c.ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", c.ttl)
	}

	token, err := middleware.NewJWTAuth(secret).GenerateAdminToken(c.ttl)
	if err != nil {
		return fmt.Errorf("could not sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("expires %s", time.Now().Add(c.ttl).Format(time.RFC3339)))
	return nil
}
