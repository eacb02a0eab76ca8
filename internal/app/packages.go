package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/brew"
)

var (
	addFlagCask bool
	addFlagType string

	addCmd = &cobra.Command{
		Use:   "add <package>",
		Short: "Add a package to this machine's first group and install it",
		Long: `Add a package to the first group assigned to this machine, save the
configuration and install it with 'brew bundle install'.

Without --type or --cask the type is detected with 'brew search': an exact
cask match wins, then an exact formula match, otherwise it is treated as a
formula. If the install fails the package stays in the configuration so the
command can be retried.`,
		Example: `  brewfile add ripgrep
  brewfile add --cask firefox
  brewfile add --type tap homebrew/cask-fonts`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	removeCmd = &cobra.Command{
		Use:   "remove <package>",
		Short: "Uninstall a package and remove it from the configuration",
		Long: `Uninstall a configured package and then remove it from every group that
lists it.

If the uninstall fails the configuration is left unchanged. mas apps cannot
be uninstalled automatically and must be removed by hand.`,
		Example: `  brewfile remove htop
  brewfile remove homebrew/cask-fonts`,
		Args: cobra.ExactArgs(1),
		RunE: runRemove,
	}
)

func init() {
	addCmd.Flags().BoolVar(&addFlagCask, "cask", false, "add as a cask (same as --type cask)")
	addCmd.Flags().StringVar(&addFlagType, "type", "", "package type: tap, brew (formula), cask or mas")
}

// addType resolves the --cask and --type flags. A nil result means the type
// should be detected.
func addType(cask bool, typeFlag string) (*brew.PackageType, error) {
	if cask && typeFlag != "" {
		return nil, fmt.Errorf("--cask and --type cannot be used together")
	}
	if cask {
		t := brew.Cask
		return &t, nil
	}
	if typeFlag == "" {
		return nil, nil
	}
	t, err := brew.ParsePackageType(typeFlag)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	typ, err := addType(addFlagCask, addFlagType)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.mgr.Add(cmd.Context(), args[0], typ)
}

func runRemove(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.mgr.Remove(cmd.Context(), args[0])
}
