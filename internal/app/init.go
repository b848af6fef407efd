package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/readshelf/internal/config"
	"github.com/blackwell-systems/readshelf/internal/util"
)

func newInitCmd() *cobra.Command {
	var (
		dataDir string
		backend string
		quota   int64
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file for a new library",
		Long: `Write a config file with the given data directory and storage backend.
Values not given on the command line keep their defaults or come from
READSHELF_* environment variables. An existing file is kept unless --force
is set.`,
		Example: `  readshelf init
  readshelf init --data-dir ~/books --backend sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := flagConfig
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			c, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading defaults: %w", err)
			}
			if dataDir != "" {
				c.Library.DataDir = util.ExpandHome(dataDir)
			}
			if backend != "" {
				c.Storage.Backend = backend
			}
			if cmd.Flags().Changed("quota") {
				c.Storage.QuotaBytes = quota
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			if err := config.Save(c, path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok(out, "Wrote %s", path)
			printField(out, "data dir", c.Library.DataDir)
			printField(out, "backend", c.Storage.Backend)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Library data directory")
	cmd.Flags().StringVar(&backend, "backend", "", "Blob store: disk, sqlite, minio or memory")
	cmd.Flags().Int64Var(&quota, "quota", 0, "Storage quota in bytes (0 = unlimited)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
