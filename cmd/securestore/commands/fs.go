package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/securestore-go/fsstore"
	"github.com/bitfsorg/securestore-go/storage"
)

func fsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fs",
		Short: "Work with files inside the allowed roots",
		Long: "Work with files inside the allowed roots.\n\n" +
			"Relative paths are taken relative to the document directory, the first allowed root.",
	}
	cmd.AddCommand(
		fsSaveCmd(a),
		fsReadCmd(a),
		fsReadJSONCmd(a),
		fsWriteJSONCmd(a),
		fsListCmd(a),
		fsMoveCmd(a),
		fsRemoveCmd(a),
		fsExistsCmd(a),
		fsDataURLCmd(a),
		fsInfoCmd(a),
	)
	return cmd
}

// absPath maps a relative command-line path onto the document directory.
func absPath(s *fsstore.Store, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return s.ResolveRelative(p)
}

func fsSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save PATH [DATA]",
		Short: "Write DATA, or standard input, to a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			var data []byte
			if len(args) == 2 {
				data = []byte(args[1])
			} else if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return s.Save(absPath(s, args[0]), data)
		},
	}
}

func fsReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read PATH",
		Short: "Print a file's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			p := absPath(s, args[0])
			data, found, err := s.Read(p)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, p)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func fsReadJSONCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-json PATH",
		Short: "Decode a JSON file and print it indented",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			p := absPath(s, args[0])
			var v any
			found, err := s.ReadJSON(p, &v)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, p)
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func fsWriteJSONCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write-json PATH JSON",
		Short: "Validate JSON and write it indented to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
				pe := &storage.ParseError{Path: "<argument>", Offset: -1, Err: err}
				var syntaxErr *json.SyntaxError
				if errors.As(err, &syntaxErr) {
					pe.Offset = syntaxErr.Offset
				}
				return pe
			}
			return s.WriteJSON(absPath(s, args[0]), v)
		},
	}
}

func fsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PATH]",
		Short: "List a directory, the document directory by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			p := s.Constants().DocumentDirectory
			if len(args) == 1 {
				p = absPath(s, args[0])
			}
			names, err := s.List(p)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func fsMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv FROM TO",
		Short: "Move a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			return s.Move(absPath(s, args[0]), absPath(s, args[1]))
		},
	}
}

func fsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PATH",
		Short: "Remove a file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			return s.Remove(absPath(s, args[0]))
		},
	}
}

func fsExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists PATH",
		Short: "Print whether a path exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			ok, err := s.Exists(absPath(s, args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func fsDataURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "data-url PATH",
		Short: "Print a file as a base64 data URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			p := absPath(s, args[0])
			url, found, err := s.ReadAsDataURL(p)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, p)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func fsInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the file store's roots and capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.fileStore()
			if err != nil {
				return err
			}
			c := s.Constants()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "document directory: %s\n", c.DocumentDirectory)
			for _, r := range s.Roots() {
				fmt.Fprintf(out, "allowed root: %s\n", r)
			}
			fmt.Fprintf(out, "supports directory move: %t\n", c.SupportsDirectoryMove)
			fmt.Fprintf(out, "supports encryption: %t\n", c.SupportsEncryption)
			fmt.Fprintf(out, "encryption enabled: %t\n", s.EncryptionEnabled())
			return nil
		},
	}
}
