package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to build man page: %w", err)
		}

		manPage = manPage.WithSection("Narration", "Reading aloud uses the Gemini speech API. Set GEMINI_API_KEY\n"+
			"or gemini.api_key in the config file to enable it.")
		manPage = manPage.WithSection("Files", "flipbook.yml in the user configuration directory.\n"+
			"flipbook.log and cached narration in the user cache directory.")

		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
