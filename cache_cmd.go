package main

import (
	"fmt"

	"github.com/dgnsrekt/flipbook/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var clearCache bool

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Show or clear cached narration",
	Long:    paragraph(fmt.Sprintf("\n%s where synthesized narration is kept and how much space it takes.", keyword("Show"))),
	Example: paragraph("flipbook cache\nflipbook cache --clear"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := cacheConfig()
		if err != nil {
			return err
		}
		cfg.Disk = true

		store, err := cache.New(cfg)
		if err != nil {
			return fmt.Errorf("unable to open cache: %w", err)
		}
		defer func() { _ = store.Close() }()

		w := cmd.OutOrStdout()
		if clearCache {
			size := store.Size()
			if err := store.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Fprintf(w, "Removed %s of cached narration from %s\n", humanize.Bytes(uint64(size)), cfg.Dir) //nolint:gosec
			return nil
		}

		disk, _ := store.Tier(cache.LevelDisk)
		fmt.Fprintf(w, "Location: %s\n", cfg.Dir)
		fmt.Fprintf(w, "Entries:  %d\n", disk.Items)
		fmt.Fprintf(w, "Size:     %s of %s\n", humanize.Bytes(uint64(disk.Size)), humanize.Bytes(uint64(disk.Capacity))) //nolint:gosec
		return nil
	},
}

func init() {
	cacheCmd.Flags().BoolVar(&clearCache, "clear", false, "remove all cached narration")
}
