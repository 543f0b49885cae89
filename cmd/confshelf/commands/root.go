package commands

import (
	"context"

	"github.com/spf13/cobra"

	"confshelf/internal/app"
	"confshelf/internal/logging"
	"confshelf/internal/store"
)

// cli is the state shared by the subcommands of one invocation.
type cli struct {
	configFile    string
	askPassphrase bool
	app           *app.App
}

func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree.
func NewRoot() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "confshelf",
		Short:         "File-backed key-value store with optional encryption",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd.Flags(), c.configFile)
			if err != nil {
				return err
			}
			if c.askPassphrase {
				if cfg.Passphrase, err = readPassphrase(cmd.ErrOrStderr(), "Salt passphrase: "); err != nil {
					return err
				}
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			c.app = app.New(cfg, log)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default searches ~/.config/confshelf and .)")
	pf.String("home", "", "state dir (default ~/.config/confshelf)")
	pf.String("dir", "", "snapshot dir (default the state dir)")
	pf.String("prefix", "config", "snapshot name without extension")
	pf.String("ext", store.DefaultExt, "snapshot extension")
	pf.Bool("encrypt", false, "seal the whole snapshot under the salt")
	pf.String("compression", "", `snapshot compression ("" or zstd)`)
	pf.String("salt", "", "salt file (default <home>/master.salt)")
	pf.Bool("create-salt", false, "create the --salt file when missing")
	pf.Duration("lock-timeout", store.DefaultLockTimeout, "lock acquisition timeout")
	pf.String("log-level", logging.DefaultLevel, "debug, info, warn or error")
	pf.BoolVar(&c.askPassphrase, "ask-passphrase", false, "prompt for the salt passphrase")

	root.AddCommand(
		getCmd(c), setCmd(c), deleteCmd(c), popCmd(c),
		keysCmd(c), dumpCmd(c),
		setcryptCmd(c), revealCmd(c),
		backupCmd(c), clearCmd(c), syncCmd(c),
		saltCmd(c),
	)
	return root
}

// run executes fn against the configured store.
func (c *cli) run(cmd *cobra.Command, fn func(*store.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return c.app.Run(ctx, fn)
}
