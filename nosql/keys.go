package nosql

import (
	"github.com/syssam/ormcore/keyenc"
	"github.com/syssam/ormcore/querycompiler"
	"github.com/syssam/ormcore/recordcodec"
	"github.com/syssam/ormcore/schema"
)

// dataKey builds the data-row key: relName DELIM pk.
func dataKey(relName string, pk []byte) []byte {
	b := keyenc.NewBuilderWithCap(len(relName) + 2 + len(pk))
	b.AddString(relName)
	b.Delimiter()
	b.Raw(pk)
	return b.Bytes()
}

// dataKeyPrefix builds the relName DELIM prefix shared by every data row.
func dataKeyPrefix(relName string) []byte {
	b := keyenc.NewBuilder()
	b.AddString(relName)
	b.Delimiter()
	return b.Bytes()
}

// indexKeyPrefix builds the relName '.' idxName DELIM prefix shared by
// every row of one secondary index.
func indexKeyPrefix(relName, idxName string) []byte {
	b := keyenc.NewBuilder()
	b.AddString(relName)
	b.AddString(".")
	b.AddString(idxName)
	b.Delimiter()
	return b.Bytes()
}

// indexRowKey builds the full index-row key for obj under fn:
// relName '.' idxName DELIM idx_fields DELIM pk.
func indexRowKey(relName string, fn *querycompiler.IndexFunction, rec querycompiler.Record, pk []byte) ([]byte, error) {
	b := keyenc.NewBuilder()
	b.AddString(relName)
	b.AddString(".")
	b.AddString(fn.Name())
	b.Delimiter()
	if err := fn.Encode(b, rec); err != nil {
		return nil, err
	}
	b.Delimiter()
	b.Raw(pk)
	return b.Bytes(), nil
}

func encodePrimaryKey(pk schema.Key, rec querycompiler.Record) ([]byte, error) {
	b := keyenc.NewBuilder()
	if err := querycompiler.EncodePrimaryKey(b, pk, rec); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// indexEnvelope is the value stored at every index row. DataCopy is the
// optional co-located snapshot that lets a reader skip the primary fetch;
// it is nil unless the accessor was built with WithInlineCopies.
type indexEnvelope struct {
	TimestampMs   uint64 `col:"1"`
	DataKeySuffix []byte `col:"2"`
	DataCopy      []byte `col:"3"`
}

func encodeIndexEnvelope(pkSuffix, dataCopy []byte, nowMs uint64) ([]byte, error) {
	return recordcodec.Encode(&indexEnvelope{
		TimestampMs:   nowMs,
		DataKeySuffix: pkSuffix,
		DataCopy:      dataCopy,
	})
}

func decodeIndexEnvelope(data []byte) (*indexEnvelope, error) {
	env := &indexEnvelope{}
	if err := recordcodec.Decode(data, env); err != nil {
		return nil, err
	}
	return env, nil
}
