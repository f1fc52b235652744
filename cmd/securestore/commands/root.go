package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/securestore-go/storage"
)

// Exit codes.
const (
	exitOK             = 0
	exitFailure        = 1
	exitPathNotAllowed = 2
	exitDecryption     = 3
	exitParse          = 4
	exitIO             = 5
	exitNotFound       = 6
	exitEncryption     = 7
)

// Execute runs the CLI against the process arguments and returns the exit
// code.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if closeErr := a.close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(stderr, "securestore: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "securestore",
		Short:         "Encrypted key-value and scoped file storage",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default ~/.securestore)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default <data-dir>/config)")
	root.PersistentFlags().StringVarP(&a.password, "password", "p", "", "password for the password key source (or SECURESTORE_PASSWORD)")

	root.AddCommand(kvCmd(a), fsCmd(a), configCmd(a))
	return root
}

// exitCode maps an error to the process exit code by its storage category.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, storage.ErrPathNotAllowed):
		return exitPathNotAllowed
	case errors.Is(err, storage.ErrDecryption):
		return exitDecryption
	case errors.Is(err, storage.ErrEncryption):
		return exitEncryption
	case errors.Is(err, storage.ErrParse):
		return exitParse
	case errors.Is(err, storage.ErrNotFound):
		return exitNotFound
	case errors.Is(err, storage.ErrIOFailure):
		return exitIO
	default:
		return exitFailure
	}
}
