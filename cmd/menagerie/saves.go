package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/menagerie/internal/game/roster"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the owner's saved roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			return a.withStore(cmd.Context(), func(store saveStore) error {
				st, err := store.Load(cmd.Context(), a.owner)
				if err != nil {
					return fmt.Errorf("loading %q: %w", a.owner, err)
				}
				return writeRoster(a.out, st)
			})
		},
	}
}

func newSavesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List every owner with a saved roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			return a.withStore(cmd.Context(), func(store saveStore) error {
				owners, err := store.Owners(cmd.Context())
				if err != nil {
					return err
				}
				for _, o := range owners {
					fmt.Fprintln(a.out, o)
				}
				return nil
			})
		},
	}
}

func newResetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the owner's saved roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			return a.withStore(cmd.Context(), func(store saveStore) error {
				if err := store.Delete(cmd.Context(), a.owner); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "deleted roster for %s\n", a.owner)
				return nil
			})
		},
	}
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the owner's saved roster as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			return a.withStore(cmd.Context(), func(store saveStore) error {
				st, err := store.Load(cmd.Context(), a.owner)
				if err != nil {
					return fmt.Errorf("loading %q: %w", a.owner, err)
				}
				data, err := roster.EncodeState(st)
				if err != nil {
					return err
				}
				if path == "" || path == "-" {
					_, err = a.out.Write(data)
					return err
				}
				return os.WriteFile(path, data, 0o644)
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the owner's saved roster with a YAML export",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			data, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			st, err := roster.DecodeState(data)
			if err != nil {
				return err
			}
			b, err := a.loadContent()
			if err != nil {
				return err
			}
			// Import resolves every template and item before anything is written.
			if _, err := roster.Import(st, b.Items, roster.Options{Templates: b.Templates, Rules: b.Rules}); err != nil {
				return fmt.Errorf("checking roster against content: %w", err)
			}
			return a.withStore(cmd.Context(), func(store saveStore) error {
				if err := store.Save(cmd.Context(), a.owner, st); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "imported %d creatures for %s\n", len(st.Creatures), a.owner)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "input file (default stdin)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return data, nil
}

func newCatalogCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the creatures and items defined in content",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()
			b, err := a.loadContent()
			if err != nil {
				return err
			}
			return writeCatalog(a.out, b)
		},
	}
}
