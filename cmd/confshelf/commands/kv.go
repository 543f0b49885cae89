package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"confshelf/internal/domain"
	"confshelf/internal/store"
)

func getCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				v, ok := s.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: key %q", domain.ErrNotFound, args[0])
				}
				return render(cmd.OutOrStdout(), format, plain(v))
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "json", "output format: json or yaml")
	return cmd
}

func setCmd(c *cli) *cobra.Command {
	var vf valueFlags
	var keepFalsy bool
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Long: `Store VALUE under KEY. VALUE is parsed as YAML unless --text or
--base64 is given. Empty, zero and false values are ignored, like any
other falsy assignment, unless --keep-falsy is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vf.parse(args[1])
			if err != nil {
				return err
			}
			return c.run(cmd, func(s *store.Store) error {
				if keepFalsy {
					s.Update(nil, domain.Pair{Key: args[0], Value: v})
					return nil
				}
				s.Set(args[0], v)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&vf.text, "text", false, "store VALUE as a plain string")
	cmd.Flags().BoolVar(&vf.base64, "base64", false, "decode VALUE from base64 into bytes")
	cmd.Flags().BoolVar(&keepFalsy, "keep-falsy", false, "store falsy values too")
	return cmd
}

func deleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete KEY...",
		Aliases: []string{"rm"},
		Short:   "Remove keys; missing keys are ignored",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				for _, k := range args {
					s.Delete(k)
				}
				return nil
			})
		},
	}
}

func popCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "pop KEY",
		Short: "Remove KEY and print its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				v, err := s.Pop(args[0])
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, plain(v))
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "json", "output format: json or yaml")
	return cmd
}

func keysCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List keys in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				for _, k := range s.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

func dumpCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the whole store; cells show metadata only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				out := map[string]any{}
				for k, v := range s.All() {
					out[k] = plain(v)
				}
				return render(cmd.OutOrStdout(), format, out)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format: json or yaml")
	return cmd
}

func clearCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the snapshot file and every key in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			return c.run(cmd, func(s *store.Store) error {
				return s.Clear(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func syncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge and rewrite the snapshot under the current settings",
		Long: `Open the store and sync it. Use this after changing --encrypt or
--compression to rewrite an existing snapshot in the new format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d keys\n", s.Path(), s.Len())
				return nil
			})
		},
	}
}
