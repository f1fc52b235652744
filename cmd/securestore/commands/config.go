package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/securestore-go/config"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
	}
	cmd.AddCommand(configShowCmd(a), configInitCmd(a))
	return cmd
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cfg
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config = %s\n", a.configPath)
			fmt.Fprintf(out, "datadir = %s\n", c.DataDir)
			for _, r := range c.FileRoots() {
				fmt.Fprintf(out, "root = %s\n", r)
			}
			fmt.Fprintf(out, "kvbackend = %s\n", c.KVBackend)
			fmt.Fprintf(out, "cipher = %s\n", c.Cipher)
			fmt.Fprintf(out, "keysource = %s\n", c.KeySource)
			fmt.Fprintf(out, "encryptfiles = %t\n", c.EncryptFiles)
			fmt.Fprintf(out, "compression = %s\n", c.Compression)
			fmt.Fprintf(out, "loglevel = %s\n", c.LogLevel)
			return nil
		},
	}
}

func configInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(a.configPath); err == nil {
					return fmt.Errorf("%s already exists (use --force)", a.configPath)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := config.SaveConfig(a.configPath, a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
