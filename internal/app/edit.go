package app

import (
	"github.com/spf13/cobra"
)

var (
	manifestFlagDiff bool

	editCmd = &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration in your editor",
		Long: `Open the package configuration in $VISUAL, $EDITOR, the editor named in
settings.toml, or nano, in that order. The configuration is reloaded
afterwards so mistakes are reported right away.`,
		Args: cobra.NoArgs,
		RunE: runEdit,
	}

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Regenerate the Brewfile from the configuration",
		Long: `Write the Brewfile for this machine from the configuration: taps, brews,
casks, then mas apps. mas apps without a store ID are written as comments.

With --diff nothing is written; the difference between the Brewfile on disk
and the generated one is printed instead.`,
		Example: `  brewfile manifest
  brewfile manifest --diff`,
		Args: cobra.NoArgs,
		RunE: runManifest,
	}
)

func init() {
	manifestCmd.Flags().BoolVar(&manifestFlagDiff, "diff", false, "show changes instead of writing the Brewfile")
}

func runEdit(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.mgr.Edit(cmd.Context())
}

func runManifest(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if manifestFlagDiff {
		diff, err := sess.mgr.ManifestDiff()
		if err != nil {
			return err
		}
		if diff == "" {
			sess.out.Success("%s is up to date", sess.settings.BrewfilePath)
			return nil
		}
		sess.out.Printf("%s", diff)
		return nil
	}

	if err := sess.mgr.WriteManifest(); err != nil {
		return err
	}
	sess.out.Success("Wrote %s", sess.settings.BrewfilePath)
	return nil
}
