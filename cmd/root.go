package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mountaineer/mountaineer/cmd/alias"
	"github.com/mountaineer/mountaineer/cmd/config"
	"github.com/mountaineer/mountaineer/cmd/favorites"
	"github.com/mountaineer/mountaineer/cmd/folders"
	"github.com/mountaineer/mountaineer/cmd/install"
	"github.com/mountaineer/mountaineer/cmd/monitor"
	"github.com/mountaineer/mountaineer/cmd/mount"
	"github.com/mountaineer/mountaineer/cmd/reconcile"
	"github.com/mountaineer/mountaineer/cmd/status"
	"github.com/mountaineer/mountaineer/cmd/switchcmd"
	"github.com/mountaineer/mountaineer/cmd/uninstall"
	"github.com/mountaineer/mountaineer/cmd/unmount"
	"github.com/mountaineer/mountaineer/cmd/verify"
	"github.com/mountaineer/mountaineer/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mountaineer",
		Short: "Mountaineer: macOS SMB share mount reconciler",
	}

	rootCmd.AddCommand(monitor.NewMonitorCmd())
	rootCmd.AddCommand(reconcile.NewReconcileCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(switchcmd.NewSwitchCmd())
	rootCmd.AddCommand(verify.NewVerifyCmd())
	rootCmd.AddCommand(mount.NewMountCmd())
	rootCmd.AddCommand(unmount.NewUnmountCmd())
	rootCmd.AddCommand(folders.NewFoldersCmd())
	rootCmd.AddCommand(alias.NewAliasCmd())
	rootCmd.AddCommand(favorites.NewFavoritesCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(install.NewInstallCmd())
	rootCmd.AddCommand(uninstall.NewUninstallCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd
}
