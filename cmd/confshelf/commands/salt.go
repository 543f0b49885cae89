package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"confshelf/internal/crypto"
	"confshelf/internal/fileio"
	"confshelf/internal/store"
)

func saltCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salt",
		Short: "Manage the salt file all encryption keys derive from",
	}
	cmd.AddCommand(saltInitCmd(c), saltShowCmd(c))
	return cmd
}

func saltInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the salt file if it does not exist",
		Long: `Create the salt file if it does not exist. An existing salt is never
replaced: everything sealed with it would become unreadable. Set a
passphrase (--ask-passphrase or CONFSHELF_PASSPHRASE) to seal the salt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.app.Config.SaltFile()
			if err != nil {
				return err
			}
			if _, err := c.app.Config.EnsureHome(); err != nil {
				return err
			}
			ctx, cancel := c.saltContext(cmd)
			defer cancel()

			salt, created, err := crypto.LoadOrCreateSalt(ctx, path, c.app.Config.Passphrase)
			if err != nil {
				return err
			}
			if created {
				c.app.Log.Info("created salt material", "path", path)
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", salt.Fingerprint())
			return nil
		},
	}
}

func saltShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the salt fingerprint and creation time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.app.Config.SaltFile()
			if err != nil {
				return err
			}
			ctx, cancel := c.saltContext(cmd)
			defer cancel()

			data, err := fileio.ReadBytes(ctx, path)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("no salt at %s; run salt init", path)
			}
			salt, err := crypto.DecodeSalt(data, c.app.Config.Passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "path:        %s\nfingerprint: %s\ncreated:     %s\n",
				path, salt.Fingerprint(), salt.Created().Format(time.RFC3339))
			return nil
		},
	}
}

func (c *cli) saltContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.app.Config.LockTimeout
	if timeout <= 0 {
		timeout = store.DefaultLockTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
