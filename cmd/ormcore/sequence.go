package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/sequence"
)

func newSequenceCommand(cfgPath *string) *cobra.Command {
	var prefix, name string
	var shards int

	cmd := &cobra.Command{
		Use:   "migrate-sequence <name>",
		Short: "Allocate the next value of a sequence and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			name = args[0]
			if prefix == "" {
				prefix = cfg.KVFilePrefix
			}
			if prefix == "" {
				return fmt.Errorf("migrate-sequence: --prefix (or config kv_file_prefix) is required")
			}
			if shards <= 0 {
				shards = cfg.SequenceShard
			}
			if shards <= 0 {
				shards = 1
			}

			store, err := kv.OpenFileStore(prefix)
			if err != nil {
				return fmt.Errorf("migrate-sequence: opening %q: %w", prefix, err)
			}

			var next int64
			if shards == 1 {
				next, err = sequence.New(store, name).Next(context.Background())
			} else {
				next, err = sequence.NewShardedAllocator(store, name, shards).Next(context.Background())
			}
			if err != nil {
				return fmt.Errorf("migrate-sequence: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %d\n", name, next)
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "file prefix for the <prefix>.nosql_db/<prefix>.nosql_log pair")
	cmd.Flags().IntVar(&shards, "shards", 0, "number of counter shards (0 = use config/default of 1)")
	return cmd
}
