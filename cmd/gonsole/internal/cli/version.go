package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gonsole/internal/version"
)

// addVersionCommand adds the version command
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version of gonsole with build information.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if constraint, _ := cmd.Flags().GetString("require"); constraint != "" {
				ok, err := version.Satisfies(constraint)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("gonsole %s does not satisfy %q", version.Version, constraint)
				}
			}

			if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.Detailed())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Short())
			return nil
		},
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	versionCmd.Flags().String("require", "", "Fail unless the version satisfies this semver constraint")
	rootCmd.AddCommand(versionCmd)
}
