package email

import (
	"errors"
	"strconv"

	"github.com/caarlos0/tablewriter"
	"github.com/charmbracelet/soft-mail/cmd"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/serializer"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Command is the email subcommand.
var Command = &cobra.Command{
	Use:                "email",
	Aliases:            []string{"emails"},
	Short:              "Manage user email addresses",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

// userAndID resolves the USERNAME ID arguments.
func userAndID(c *cobra.Command, args []string) (proto.User, int64, error) {
	ctx := c.Context()
	be := backend.FromContext(ctx)
	u, err := be.User(ctx, args[0])
	if err != nil {
		return nil, 0, err
	}

	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, 0, err
	}

	return u, id, nil
}

func init() {
	listCmd := &cobra.Command{
		Use:     "list USERNAME",
		Aliases: []string{"ls"},
		Short:   "List the email addresses of a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			u, err := be.User(ctx, args[0])
			if err != nil {
				return err
			}

			addrs, err := be.EmailAddresses(ctx, u)
			if err != nil {
				return err
			}

			if len(addrs) == 0 {
				c.Println("No email addresses found")
				return nil
			}

			return tablewriter.Render(
				c.OutOrStdout(),
				addrs,
				[]string{"ID", "Email", "Verified", "Primary", "Added"},
				func(a proto.EmailAddress) ([]string, error) {
					return []string{
						strconv.FormatInt(a.ID, 10),
						a.Email,
						strconv.FormatBool(a.Verified),
						strconv.FormatBool(a.Primary),
						humanize.Time(a.CreatedAt),
					}, nil
				},
			)
		},
	}

	var verified bool
	addCmd := &cobra.Command{
		Use:   "add USERNAME EMAIL",
		Short: "Add an email address and send its confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			cfg := config.FromContext(ctx)
			u, err := be.User(ctx, args[0])
			if err != nil {
				return err
			}

			s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicyFromConfig(cfg), u, serializer.Email(args[1]))
			if !s.IsValid(ctx) {
				return s.Errors()
			}

			addr, err := s.Save(ctx)
			if err != nil && addr.ID == 0 {
				return err
			}
			if err != nil {
				c.PrintErrln("Could not send confirmation email:", err)
			}

			if verified {
				addr, err = be.VerifyEmailAddress(ctx, u, addr.ID)
				if err != nil {
					return err
				}
			}

			c.Printf("Added %s (%d)%s\n", addr.Email, addr.ID, primaryNote(addr))
			return nil
		},
	}

	addCmd.Flags().BoolVar(&verified, "verified", false, "mark the address as verified")

	verifyCmd := &cobra.Command{
		Use:   "verify USERNAME ID",
		Short: "Mark an email address as verified",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			u, id, err := userAndID(c, args)
			if err != nil {
				return err
			}

			addr, err := be.VerifyEmailAddress(ctx, u, id)
			if err != nil {
				return err
			}

			c.Printf("Verified %s%s\n", addr.Email, primaryNote(addr))
			return nil
		},
	}

	primaryCmd := &cobra.Command{
		Use:   "primary USERNAME ID",
		Short: "Make an email address the primary one",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			u, id, err := userAndID(c, args)
			if err != nil {
				return err
			}

			addr, err := be.SetPrimaryEmailAddress(ctx, u, id)
			if err != nil {
				return err
			}

			c.Printf("%s is now the primary address of %s\n", addr.Email, u.Username())
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:     "remove USERNAME ID",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove an email address",
		Args:    cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			u, id, err := userAndID(c, args)
			if err != nil {
				return err
			}

			return be.RemoveEmailAddress(ctx, u, id)
		},
	}

	resendCmd := &cobra.Command{
		Use:   "resend USERNAME ID",
		Short: "Send the confirmation email again",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			u, id, err := userAndID(c, args)
			if err != nil {
				return err
			}

			if err := be.SendConfirmation(ctx, u, id); err != nil {
				return err
			}

			c.PrintErrln("Confirmation email sent")
			return nil
		},
	}

	confirmCmd := &cobra.Command{
		Use:   "confirm KEY",
		Short: "Confirm an email address with its confirmation key",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			addr, err := be.ConfirmEmail(ctx, args[0])
			if errors.Is(err, proto.ErrConfirmationExpired) {
				return errors.New("confirmation key expired, use resend to get a new one")
			}
			if err != nil {
				return err
			}

			c.Printf("Confirmed %s%s\n", addr.Email, primaryNote(addr))
			return nil
		},
	}

	Command.AddCommand(
		listCmd,
		addCmd,
		verifyCmd,
		primaryCmd,
		removeCmd,
		resendCmd,
		confirmCmd,
	)
}

func primaryNote(a proto.EmailAddress) string {
	if a.Primary {
		return " (primary)"
	}
	return ""
}
