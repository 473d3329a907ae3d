package nosql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/querycompiler"
	"github.com/syssam/ormcore/recordcodec"
	"github.com/syssam/ormcore/schema"
)

// defaultMaxFossilAge is the minimum age an apparently-stale index row
// must reach before a reader may delete it.
const defaultMaxFossilAge = 5 * time.Minute

// Accessor is NoSqlAccess for one relation. T is the relation's row type;
// PT constrains *T to implement querycompiler.Record, the minimum
// capability the compiler and index maintenance need from a row.
type Accessor[T any, PT interface {
	*T
	querycompiler.Record
}] struct {
	store         kv.Store
	rel           *schema.Relation
	indexFns      []*querycompiler.IndexFunction
	cache         *cacheOf
	maxFossilAge  time.Duration
	inlineCopies  bool
	now           func() time.Time
	log           *slog.Logger
}

// cacheOf is the per-accessor 64-entry LRU of encoded rows, keyed by
// encoded primary key.
type cacheOf = rowCache

// Option configures an Accessor at construction time.
type Option func(*accessorConfig)

type accessorConfig struct {
	maxFossilAge time.Duration
	inlineCopies bool
	now          func() time.Time
	log          *slog.Logger
}

// WithMaxFossilAge overrides the default 5-minute MaxFossilAge. A reader
// never deletes an index row younger than this, even if its referenced
// data row is already gone.
func WithMaxFossilAge(d time.Duration) Option {
	return func(c *accessorConfig) { c.maxFossilAge = d }
}

// WithInlineCopies makes every index-row write embed a co-located snapshot
// of the encoded object, letting ScanIndex skip the primary-row fetch for
// rows it wrote itself.
func WithInlineCopies() Option {
	return func(c *accessorConfig) { c.inlineCopies = true }
}

// WithLogger sets the structured logger fossil collection uses when a
// stale-row delete fails. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *accessorConfig) { c.log = l }
}

// WithClock overrides the clock fossil-age comparisons use against the
// stored timestamp_ms. Defaults to time.Now; tests use this to
// deterministically age an index row past maxFossilAge.
func WithClock(fn func() time.Time) Option {
	return func(c *accessorConfig) { c.now = fn }
}

// NewAccessor builds an accessor for rel backed by store. One
// querycompiler.IndexFunction is maintained per secondary key declared on
// rel: if a relation query shares the key's name, that query's compiled
// IndexFunction defines the index — its column order, DESC encodings, and
// literal-equality membership predicate — so the rows written here are
// bytewise identical to the keys the query's scan validates against.
// A key with no defining query falls back to the ascending encoding of its
// leaf columns.
func NewAccessor[T any, PT interface {
	*T
	querycompiler.Record
}](store kv.Store, rel *schema.Relation, opts ...Option) (*Accessor[T, PT], error) {
	indexFns := make([]*querycompiler.IndexFunction, len(rel.SecondaryKeys))
	for i, k := range rel.SecondaryKeys {
		fn := querycompiler.ForKey(k)
		if q := rel.NamedQuery(k.Name); q != nil {
			cq, err := querycompiler.Compile(rel, k, q)
			if err != nil {
				return nil, fmt.Errorf("nosql: compiling index query %q: %w", k.Name, err)
			}
			fn = cq.IndexFunction()
		}
		indexFns[i] = fn
	}
	cache, err := newRowCacheWrapper()
	if err != nil {
		return nil, fmt.Errorf("nosql: building row cache: %w", err)
	}
	cfg := accessorConfig{maxFossilAge: defaultMaxFossilAge, now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Accessor[T, PT]{
		store:        store,
		rel:          rel,
		indexFns:     indexFns,
		cache:        cache,
		maxFossilAge: cfg.maxFossilAge,
		inlineCopies: cfg.inlineCopies,
		now:          cfg.now,
		log:          cfg.log,
	}, nil
}

func (a *Accessor[T, PT]) newT() PT {
	return PT(new(T))
}

func (a *Accessor[T, PT]) clone(obj PT) (PT, error) {
	buf, err := recordcodec.Encode(obj)
	if err != nil {
		return nil, err
	}
	cp := a.newT()
	if err := recordcodec.Decode(buf, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (a *Accessor[T, PT]) pkBytes(obj PT) ([]byte, error) {
	b, err := encodePrimaryKey(a.rel.PrimaryKey, obj)
	if err != nil {
		return nil, ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
	}
	return b, nil
}

// Insert writes every applicable index row, then the data row. It does not
// check for a duplicate beyond the store's own Insert semantics.
func (a *Accessor[T, PT]) Insert(ctx context.Context, obj PT) error {
	pk, err := a.pkBytes(obj)
	if err != nil {
		return err
	}
	if err := a.writeIndexRows(ctx, obj, pk); err != nil {
		return err
	}
	data, err := recordcodec.Encode(obj)
	if err != nil {
		return ormerr.NewSchemaError("relation %q: encoding row: %v", a.rel.Name, err)
	}
	if err := a.store.Insert(ctx, dataKey(a.rel.Name, pk), data); err != nil {
		if errors.Is(err, kv.ErrDuplicateKey) {
			return ormerr.NewDuplicateKey(a.rel.Name, err)
		}
		return ormerr.NewStorageFailure(a.rel.Name, err)
	}
	a.cache.add(pk, data)
	return nil
}

// Upsert writes new index rows, replaces the data row, then prunes any
// index rows the prior object had that the new one no longer warrants.
func (a *Accessor[T, PT]) Upsert(ctx context.Context, obj PT) error {
	pk, err := a.pkBytes(obj)
	if err != nil {
		return err
	}
	old, err := a.lookup(ctx, pk)
	if err != nil {
		return err
	}
	return a.upsertWithOld(ctx, old, obj, pk)
}

// Update behaves like Upsert but requires the prior row to exist.
func (a *Accessor[T, PT]) Update(ctx context.Context, obj PT) error {
	pk, err := a.pkBytes(obj)
	if err != nil {
		return err
	}
	old, err := a.lookup(ctx, pk)
	if err != nil {
		return err
	}
	if old == nil {
		return ormerr.NewConcurrency(a.rel.Name, "Concurrent modification detected")
	}
	return a.upsertWithOld(ctx, old, obj, pk)
}

func (a *Accessor[T, PT]) upsertWithOld(ctx context.Context, old, obj PT, pk []byte) error {
	if err := a.writeNewIndexes(ctx, old, obj, pk); err != nil {
		return err
	}
	data, err := recordcodec.Encode(obj)
	if err != nil {
		return ormerr.NewSchemaError("relation %q: encoding row: %v", a.rel.Name, err)
	}
	if err := a.store.Upsert(ctx, dataKey(a.rel.Name, pk), data); err != nil {
		return ormerr.NewStorageFailure(a.rel.Name, err)
	}
	a.cache.add(pk, data)
	return a.pruneOldIndexes(ctx, old, obj, pk)
}

// Delete removes the data row, prunes every index row the object was
// indexed under, and evicts the cache entry.
func (a *Accessor[T, PT]) Delete(ctx context.Context, obj PT) error {
	pk, err := a.pkBytes(obj)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, dataKey(a.rel.Name, pk)); err != nil {
		return ormerr.NewStorageFailure(a.rel.Name, err)
	}
	if err := a.pruneOldIndexes(ctx, obj, nil, pk); err != nil {
		return err
	}
	a.cache.remove(pk)
	return nil
}

// AtomicUpdateFunc mutates obj in place and returns an error to abort the
// update, propagated to AtomicUpdate's caller unchanged.
type AtomicUpdateFunc[PT any] func(obj PT) error

// AtomicUpdate performs a read-modify-write on the row identified by keyObj
// (only its primary-key fields need be populated), maintaining new index
// rows inside the same KvStore critical section and pruning stale ones
// afterward. If the row doesn't exist, fn is never called.
func (a *Accessor[T, PT]) AtomicUpdate(ctx context.Context, keyObj PT, fn AtomicUpdateFunc[PT]) error {
	pk, err := a.pkBytes(keyObj)
	if err != nil {
		return err
	}

	var old, updated PT
	var updatedBytes []byte
	err = a.store.AtomicUpdate(ctx, dataKey(a.rel.Name, pk), func(oldBytes []byte, exists bool) ([]byte, bool, error) {
		if !exists {
			return nil, true, nil
		}
		old = a.newT()
		if err := recordcodec.Decode(oldBytes, old); err != nil {
			return nil, false, fmt.Errorf("nosql: decoding row for relation %q: %w", a.rel.Name, err)
		}
		updated, err = a.clone(old)
		if err != nil {
			return nil, false, err
		}
		if err := fn(updated); err != nil {
			return nil, false, err
		}
		if err := a.writeNewIndexes(ctx, old, updated, pk); err != nil {
			return nil, false, fmt.Errorf("nosql: writeNewIndexes: %w", err)
		}
		updatedBytes, err = recordcodec.Encode(updated)
		if err != nil {
			return nil, false, err
		}
		return updatedBytes, false, nil
	})
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}
	a.cache.add(pk, updatedBytes)
	return a.pruneOldIndexes(ctx, old, updated, pk)
}

// lookup returns the prior object for pk, consulting the cache first.
func (a *Accessor[T, PT]) lookup(ctx context.Context, pk []byte) (PT, error) {
	if data, ok := a.cache.get(pk); ok {
		obj := a.newT()
		if err := recordcodec.Decode(data, obj); err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		return obj, nil
	}
	data, err := a.store.Get(ctx, dataKey(a.rel.Name, pk))
	if err != nil {
		return nil, ormerr.NewStorageFailure(a.rel.Name, err)
	}
	if data == nil {
		return nil, nil
	}
	obj := a.newT()
	if err := recordcodec.Decode(data, obj); err != nil {
		return nil, ormerr.NewStorageFailure(a.rel.Name, err)
	}
	return obj, nil
}

// writeIndexRows writes every index row obj belongs under unconditionally;
// used by Insert, where there is no prior row to compare against.
func (a *Accessor[T, PT]) writeIndexRows(ctx context.Context, obj PT, pk []byte) error {
	for _, fn := range a.indexFns {
		if !fn.Includes(obj) {
			continue
		}
		if err := a.putIndexRow(ctx, fn, obj, pk); err != nil {
			return err
		}
	}
	return nil
}

// writeNewIndexes writes, for every index fn that includes new, the index
// row iff old is nil or doesn't already sit at the same index row.
func (a *Accessor[T, PT]) writeNewIndexes(ctx context.Context, old, new PT, pk []byte) error {
	for _, fn := range a.indexFns {
		if new == nil || !fn.Includes(new) {
			continue
		}
		if old != nil && fn.Includes(old) {
			oldKey, err := indexRowKey(a.rel.Name, fn, old, pk)
			if err != nil {
				return ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
			}
			newKey, err := indexRowKey(a.rel.Name, fn, new, pk)
			if err != nil {
				return ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
			}
			if string(oldKey) == string(newKey) {
				continue
			}
		}
		if err := a.putIndexRow(ctx, fn, new, pk); err != nil {
			return err
		}
	}
	return nil
}

// pruneOldIndexes deletes, for every index fn that includes old, the old
// index row iff new is nil or no longer sits at the same index row.
func (a *Accessor[T, PT]) pruneOldIndexes(ctx context.Context, old, new PT, pk []byte) error {
	if isNilPT(old) {
		return nil
	}
	for _, fn := range a.indexFns {
		if !fn.Includes(old) {
			continue
		}
		oldKey, err := indexRowKey(a.rel.Name, fn, old, pk)
		if err != nil {
			return ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
		}
		if !isNilPT(new) && fn.Includes(new) {
			newKey, err := indexRowKey(a.rel.Name, fn, new, pk)
			if err != nil {
				return ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
			}
			if string(oldKey) == string(newKey) {
				continue
			}
		}
		if err := a.store.Delete(ctx, oldKey); err != nil {
			return ormerr.NewStorageFailure(a.rel.Name, err)
		}
	}
	return nil
}

func (a *Accessor[T, PT]) putIndexRow(ctx context.Context, fn *querycompiler.IndexFunction, obj PT, pk []byte) error {
	key, err := indexRowKey(a.rel.Name, fn, obj, pk)
	if err != nil {
		return ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
	}
	var dataCopy []byte
	if a.inlineCopies {
		dataCopy, err = recordcodec.Encode(obj)
		if err != nil {
			return ormerr.NewSchemaError("relation %q: encoding index data_copy: %v", a.rel.Name, err)
		}
	}
	envelope, err := encodeIndexEnvelope(pk, dataCopy, uint64(a.now().UnixMilli()))
	if err != nil {
		return ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
	}
	if err := a.store.Upsert(ctx, key, envelope); err != nil {
		return ormerr.NewStorageFailure(a.rel.Name, err)
	}
	return nil
}

func isNilPT[PT any](v PT) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
