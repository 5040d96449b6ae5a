package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app, err := wireApp()
	return newRootCmdWithApp(app, err)
}

func newRootCmdWithApp(app *app, wireErr error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "instaflow",
		Short:         "Follow/unfollow automation across multiple accounts",
		Long:          "instaflow drives a browser session per account, applies follow and unfollow actions from a target list with pacing and retries, and records every outcome to CSV ledgers.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	if wireErr != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return wireErr
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Log debug details to the console")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newProxyCmd(app),
		newRunCmd(app),
	)

	return rootCmd
}
