package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/securestore-go/storage"
)

func kvCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Read and write the encrypted key-value store",
	}
	cmd.AddCommand(kvSetCmd(a), kvGetCmd(a), kvRemoveCmd(a), kvClearCmd(a))
	return cmd
}

func kvSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.kvStore()
			if err != nil {
				return err
			}
			return s.Set(cmd.Context(), args[0], args[1])
		},
	}
}

func kvGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.kvStore()
			if err != nil {
				return err
			}
			value, found, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: key %q", storage.ErrNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func kvRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.kvStore()
			if err != nil {
				return err
			}
			return s.Remove(cmd.Context(), args[0])
		},
	}
}

func kvClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.kvStore()
			if err != nil {
				return err
			}
			return s.Clear(cmd.Context())
		},
	}
}
