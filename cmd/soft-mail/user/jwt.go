package user

import (
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	// cmd is a command that generates a JSON Web Token.
	cmd := &cobra.Command{
		Use:   "jwt USERNAME",
		Short: "Generate a JSON Web Token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			u, err := be.User(ctx, args[0])
			if err != nil {
				return err
			}

			j, expiresAt, err := be.IssueToken(ctx, u)
			if err != nil {
				return err
			}

			cmd.PrintErrln("Token expires " + humanize.Time(expiresAt))
			cmd.Println(j)
			return nil
		},
	}

	Command.AddCommand(cmd)
}
