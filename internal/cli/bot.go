package cli

import (
	"github.com/spf13/cobra"
)

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the periodic job check",
		Long: `Serve the Telegram commands and, when TELEGRAM_CHAT_ID is set, scrape the
configured search every CHECK_INTERVAL and notify the chat about new relevant
jobs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return a.RunBot(cmd.Context())
		},
	}
}
