package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/recordcodec"
)

func newKVDumpCommand(cfgPath *string) *cobra.Command {
	var prefix string
	var limit int

	cmd := &cobra.Command{
		Use:   "kvdump",
		Short: "Dump every row of a file-backed KvStore snapshot as inspectable text",
		Long: "kvdump opens the <prefix>.nosql_db/<prefix>.nosql_log pair, " +
			"replays the log, and prints every row in key order. Each value is decoded " +
			"with recordcodec.DecodeRaw (no schema required), keyed by column id, and " +
			"re-rendered through msgpack as JSON. A length-delimited field prints as a " +
			"string when it unboxes as one and as hex otherwise, so a nested record is " +
			"not expanded; when a column id repeats only its last value is kept, so a " +
			"repeated field shows its last element only.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = cfg.KVFilePrefix
			}
			if prefix == "" {
				return fmt.Errorf("kvdump: --prefix (or config kv_file_prefix) is required")
			}

			store, err := kv.OpenFileStore(prefix)
			if err != nil {
				return fmt.Errorf("kvdump: opening %q: %w", prefix, err)
			}

			rows, err := store.Scan(context.Background(), nil, infinityKey(), limit, true)
			if err != nil {
				return fmt.Errorf("kvdump: scanning: %w", err)
			}
			for _, row := range rows {
				printRow(cmd, row.Key, row.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "file prefix for the <prefix>.nosql_db/<prefix>.nosql_log pair")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to print (0 = unlimited)")
	return cmd
}

// infinityKey is the 0xFF 0xFF sentinel used as an open-ended scan
// upper bound; kvdump never builds it through keyenc.Builder because it
// wants the literal bytes, not a component appended to a larger key.
func infinityKey() []byte { return []byte{0xFF, 0xFF} }

func printRow(cmd *cobra.Command, key, value []byte) {
	fields, err := recordcodec.DecodeRaw(value)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t(undecodable: %v)\t%s\n", displayKey(key), err, hex.EncodeToString(value))
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", displayKey(key), renderFields(fields))
}

// displayKey prints a row's raw key bytes as hex, since an unescaped
// composite key is not valid UTF-8 in general — the
// delimiter and sentinel bytes are deliberately outside the printable ASCII
// range used by escaped string components.
func displayKey(key []byte) string {
	return hex.EncodeToString(key)
}

// renderFields turns a record's raw tagged fields into a JSON-like
// rendering: each field becomes a generic Go value, msgpack round-trips it to normalize wire-level
// distinctions (fixed64 vs varint) away, and the result prints as JSON.
func renderFields(fields []recordcodec.RawField) string {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		key := fmt.Sprintf("col%d", f.ColumnID)
		switch f.Wire {
		case recordcodec.WireLengthDelimited:
			if b, err := recordcodec.UnboxBytes(f.Bytes); err == nil {
				m[key] = string(b)
			} else {
				m[key] = hex.EncodeToString(f.Bytes)
			}
		default:
			m[key] = f.Uint
		}
	}

	packed, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Sprintf("(msgpack encode error: %v)", err)
	}
	var generic any
	if err := msgpack.Unmarshal(packed, &generic); err != nil {
		return fmt.Sprintf("(msgpack decode error: %v)", err)
	}
	rendered, err := json.Marshal(generic)
	if err != nil {
		return fmt.Sprintf("(json encode error: %v)", err)
	}
	return string(rendered)
}
