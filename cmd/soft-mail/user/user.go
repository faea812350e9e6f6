package user

import (
	"strconv"

	"github.com/caarlos0/tablewriter"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/soft-mail/cmd"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/spf13/cobra"
)

var (
	// Command returns the user subcommand.
	Command = &cobra.Command{
		Use:                "user",
		Aliases:            []string{"users"},
		Short:              "Manage users",
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
	}

	headingStyle = lipgloss.NewStyle().Bold(true)
)

func init() {
	var admin bool
	var password, email string
	userCreateCommand := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)

			u, err := be.CreateUser(ctx, args[0], proto.UserOptions{
				Admin:    admin,
				Password: password,
				Email:    email,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Created user %s (%d)\n", u.Username(), u.ID())
			return nil
		},
	}

	userCreateCommand.Flags().BoolVarP(&admin, "admin", "a", false, "make the user an admin")
	userCreateCommand.Flags().StringVarP(&password, "password", "p", "", "set the user password")
	userCreateCommand.Flags().StringVarP(&email, "email", "e", "", "set the user's verified primary email address")

	userDeleteCommand := &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			return be.DeleteUser(ctx, args[0])
		},
	}

	userListCommand := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			users, err := be.Users(ctx)
			if err != nil {
				return err
			}

			if len(users) == 0 {
				cmd.Println("No users found")
				return nil
			}

			return tablewriter.Render(
				cmd.OutOrStdout(),
				users,
				[]string{"ID", "Username", "Email", "Admin"},
				func(u proto.User) ([]string, error) {
					return []string{
						strconv.FormatInt(u.ID(), 10),
						u.Username(),
						u.Email(),
						strconv.FormatBool(u.IsAdmin()),
					}, nil
				},
			)
		},
	}

	userInfoCommand := &cobra.Command{
		Use:   "info USERNAME",
		Short: "Show information about a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			u, err := be.User(ctx, args[0])
			if err != nil {
				return err
			}

			addrs, err := be.EmailAddresses(ctx, u)
			if err != nil {
				return err
			}

			cmd.Println(headingStyle.Render("Username:"), u.Username())
			cmd.Println(headingStyle.Render("Admin:"), u.IsAdmin())
			cmd.Println(headingStyle.Render("Primary email:"), u.Email())
			cmd.Println(headingStyle.Render("Email addresses:"))
			for _, a := range addrs {
				cmd.Printf("  %s%s\n", a.Email, addressFlags(a))
			}

			return nil
		},
	}

	userSetAdminCommand := &cobra.Command{
		Use:   "set-admin USERNAME true|false",
		Short: "Make a user an admin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			admin, err := strconv.ParseBool(args[1])
			if err != nil {
				return err
			}

			return be.SetAdmin(ctx, args[0], admin)
		},
	}

	userSetPasswordCommand := &cobra.Command{
		Use:   "set-password USERNAME PASSWORD",
		Short: "Set the password of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			return be.SetPassword(ctx, args[0], args[1])
		},
	}

	Command.AddCommand(
		userCreateCommand,
		userDeleteCommand,
		userListCommand,
		userInfoCommand,
		userSetAdminCommand,
		userSetPasswordCommand,
	)
}

func addressFlags(a proto.EmailAddress) string {
	var s string
	if a.Primary {
		s += " (primary)"
	}
	if !a.Verified {
		s += " (unverified)"
	}
	return s
}
