package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"confshelf/internal/store"
)

func backupCmd(c *cli) *cobra.Command {
	var opts store.BackupOptions
	cmd := &cobra.Command{
		Use:   "backup DEST_DIR",
		Short: "Copy the snapshot into DEST_DIR",
		Long: `Copy the snapshot, and with --with-salt the salt file, into existing
directories. --migrate moves the files instead and leaves the store
empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(s *store.Store) error {
				if err := s.Backup(cmd.Context(), args[0], opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "backed up %s to %s\n", s.Path(), args[0])
				if opts.Migrate {
					// Otherwise the closing sync would write the data back.
					return s.Clear(cmd.Context())
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Salt, "with-salt", false, "also back up the salt file")
	cmd.Flags().StringVar(&opts.SaltDir, "salt-dir", "", "directory for the salt file (default DEST_DIR)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "move instead of copy")
	return cmd
}
