package nosql

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/querycompiler"
	"github.com/syssam/ormcore/recordcodec"
)

// scanPageSize bounds how many index rows ScanIndex asks the store for in
// one round when the caller's limit is 0 (unlimited).
const scanPageSize = 256

// Query runs a compiled named query: it binds params into the plan, then
// dispatches to ScanPrimaryKey when q targets the primary key (its
// IndexFunction carries no name) or ScanIndex otherwise.
func (a *Accessor[T, PT]) Query(ctx context.Context, q *querycompiler.CompiledQuery, params map[string]any) ([]PT, error) {
	from, to, limit, preserveOrder, err := q.Bind(params)
	if err != nil {
		return nil, ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
	}
	fn := q.IndexFunction()
	if fn.Name() == "" {
		return a.ScanPrimaryKey(ctx, from, to, limit, preserveOrder)
	}
	return a.ScanIndex(ctx, fn, from, to, limit, preserveOrder)
}

// Get is the primary-key point lookup: decode and return the data row for
// keyObj's primary-key fields, or nil if none exists.
func (a *Accessor[T, PT]) Get(ctx context.Context, keyObj PT) (PT, error) {
	pk, err := a.pkBytes(keyObj)
	if err != nil {
		return nil, err
	}
	return a.lookup(ctx, pk)
}

func concatPrefix(prefix, suffix []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(suffix))
	out = append(out, prefix...)
	out = append(out, suffix...)
	return out
}

// ScanPrimaryKey scans data rows directly. from/to are the parameter
// portion of the range as produced by a CompiledQuery bound against the
// relation's primary key — the relName prefix is prepended here.
func (a *Accessor[T, PT]) ScanPrimaryKey(ctx context.Context, from, to []byte, limit int, preserveOrder bool) ([]PT, error) {
	prefix := dataKeyPrefix(a.rel.Name)
	rows, err := a.store.Scan(ctx, concatPrefix(prefix, from), concatPrefix(prefix, to), limit, preserveOrder)
	if err != nil {
		return nil, ormerr.NewStorageFailure(a.rel.Name, err)
	}
	out := make([]PT, 0, len(rows))
	for _, row := range rows {
		obj := a.newT()
		if err := recordcodec.Decode(row.Value, obj); err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		pk := row.Key[len(prefix):]
		a.cache.add(pk, row.Value)
		out = append(out, obj)
	}
	return out, nil
}

// ScanIndex implements the index read path and fossil-collection loop: it
// prepends the relName/idxName prefix to from/to, pages through the index
// rows, resolves each against its live data row (via the inlined data_copy
// when present, else a batched FetchRows), and heals any index row whose
// referenced object is gone or no longer matches, bounded by maxFossilAge.
func (a *Accessor[T, PT]) ScanIndex(ctx context.Context, fn *querycompiler.IndexFunction, from, to []byte, limit int, preserveOrder bool) ([]PT, error) {
	prefix := indexKeyPrefix(a.rel.Name, fn.Name())
	lastKey := concatPrefix(prefix, from)
	toFull := concatPrefix(prefix, to)

	page := limit
	if page <= 0 {
		page = scanPageSize
	}

	var results []PT
	for {
		batch, err := a.store.Scan(ctx, lastKey, toFull, page, preserveOrder)
		if err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		if len(batch) == 0 {
			break
		}

		live, err := a.resolveIndexBatch(ctx, fn, batch)
		if err != nil {
			return nil, err
		}
		results = append(results, live...)

		if limit > 0 && len(results) >= limit {
			return results[:limit], nil
		}
		if len(batch) < page {
			break
		}
		lastKey = append(append([]byte(nil), batch[len(batch)-1].Key...), 0x00)
	}
	return results, nil
}

// fossilCandidate is an index row resolveIndexBatch decided no longer
// belongs, paired with the age needed to decide whether it may be deleted.
type fossilCandidate struct {
	idxKey []byte
	ageMs  int64
}

// resolveIndexBatch decodes each index row's envelope, fetches the
// referenced data rows it doesn't already carry a copy of, validates
// membership + key agreement, and fossil-collects anything that fails
//.
func (a *Accessor[T, PT]) resolveIndexBatch(ctx context.Context, fn *querycompiler.IndexFunction, batch []kv.KeyValue) ([]PT, error) {
	type candidate struct {
		idxKey   []byte
		env      *indexEnvelope
		dataKey  []byte
	}
	candidates := make([]candidate, len(batch))
	var needFetch [][]byte
	nowMs := a.now().UnixMilli()

	for i, row := range batch {
		env, err := decodeIndexEnvelope(row.Value)
		if err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		dk := dataKey(a.rel.Name, env.DataKeySuffix)
		candidates[i] = candidate{idxKey: row.Key, env: env, dataKey: dk}
		if env.DataCopy == nil {
			needFetch = append(needFetch, dk)
		}
	}

	fetched := make(map[string][]byte, len(needFetch))
	if len(needFetch) > 0 {
		rows, err := a.store.FetchRows(ctx, needFetch)
		if err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		for _, r := range rows {
			if r.Value != nil {
				fetched[string(r.Key)] = r.Value
			}
		}
	}

	var live []PT
	var fossils []fossilCandidate
	for _, c := range candidates {
		data := c.env.DataCopy
		if data == nil {
			data = fetched[string(c.dataKey)]
		}
		age := nowMs - int64(c.env.TimestampMs)
		if data == nil {
			fossils = append(fossils, fossilCandidate{idxKey: c.idxKey, ageMs: age})
			continue
		}
		obj := a.newT()
		if err := recordcodec.Decode(data, obj); err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		wantKey, err := indexRowKey(a.rel.Name, fn, obj, c.env.DataKeySuffix)
		if err != nil {
			return nil, ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
		}
		if fn.Includes(obj) && bytes.Equal(wantKey, c.idxKey) {
			live = append(live, obj)
			a.cache.add(c.env.DataKeySuffix, data)
			continue
		}
		fossils = append(fossils, fossilCandidate{idxKey: c.idxKey, ageMs: age})
	}

	a.collectFossils(ctx, fossils)
	return live, nil
}

// collectFossils deletes every candidate at least maxFossilAge old,
// concurrently. A delete failure never fails the scan: it is
// logged and swallowed.
func (a *Accessor[T, PT]) collectFossils(ctx context.Context, candidates []fossilCandidate) {
	threshold := a.maxFossilAge.Milliseconds()
	eg, egCtx := errgroup.WithContext(ctx)
	for _, c := range candidates {
		if c.ageMs < threshold {
			continue
		}
		key := c.idxKey
		eg.Go(func() error {
			if err := a.store.Delete(egCtx, key); err != nil {
				a.log.Warn("nosql: fossil collection failed to delete stale index row",
					"relation", a.rel.Name, "error", err)
			}
			return nil
		})
	}
	_ = eg.Wait()
}
