package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"confshelf/internal/domain"
	"confshelf/internal/store"
)

func setcryptCmd(c *cli) *cobra.Command {
	var vf valueFlags
	var private bool
	cmd := &cobra.Command{
		Use:   "setcrypt KEY [VALUE]",
		Short: "Store an encryption cell under KEY",
		Long: `Store an encryption cell under KEY, sealing VALUE into it when given.
Cells are encrypted with the salt even when the snapshot is not.
Private cells cannot be revealed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := domain.Null()
			if len(args) == 2 {
				var err error
				if v, err = vf.parse(args[1]); err != nil {
					return err
				}
			}
			return c.run(cmd, func(s *store.Store) error {
				cell, err := s.SetCrypt(args[0], v, private)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cell)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&vf.text, "text", false, "seal VALUE as a plain string")
	cmd.Flags().BoolVar(&vf.base64, "base64", false, "decode VALUE from base64 into bytes")
	cmd.Flags().BoolVar(&private, "private", false, "refuse to reveal the cell later")
	return cmd
}

func revealCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "reveal KEY",
		Short: "Decrypt and print the cell stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				cell, ok := s.Cell(args[0])
				if !ok {
					return fmt.Errorf("%w: no cell under %q", domain.ErrNotFound, args[0])
				}
				v, err := cell.Peek()
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
