package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:    "man",
	Short:  "Generate man pages",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		manPage = manPage.WithSection("Environment", "Every configuration option can be set with a SOFT_MAIL_ prefixed variable, "+
			"for example SOFT_MAIL_EMAIL_SET_PRIMARY_AT_VERIFIED=true.")
		manPage = manPage.WithSection("Copyright", "(C) 2024 Charmbracelet, Inc.\n"+
			"Released under MIT license.")
		fmt.Fprintln(cmd.OutOrStdout(), manPage.Build(roff.NewDocument()))
		return nil
	},
}
