package kv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// snapshotRotateThreshold is the number of log records FileStore tolerates
// before it snapshots the table and truncates the log.
const snapshotRotateThreshold = 50000

const (
	logOpDelete byte = 0
	logOpPut    byte = 1
)

// FileStore is a single-file-pair, single-process ordered store: a
// `<prefix>.nosql_db` snapshot plus a `<prefix>.nosql_log` append-only log,
// replayed on open and periodically compacted back into the snapshot. One
// mutex guards the in-memory table and the log file together, and every
// write appends its log record before it mutates the table, so no caller
// observes a table change whose log record has not been written.
type FileStore struct {
	mu       sync.Mutex
	prefix   string
	t        *table
	log      *os.File
	logCount int
}

// OpenFileStore loads `<prefix>.nosql_db` if present, replays
// `<prefix>.nosql_log` on top of it, and opens the log for further
// appends.
func OpenFileStore(prefix string) (*FileStore, error) {
	t := newTable()

	if f, err := os.Open(prefix + ".nosql_db"); err == nil {
		err = loadSnapshot(f, t)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("kv: loading snapshot: %w", err)
		}
		if closeErr != nil {
			return nil, closeErr
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	logCount := 0
	if f, err := os.Open(prefix + ".nosql_log"); err == nil {
		logCount, err = replayLog(f, t)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("kv: replaying log: %w", err)
		}
		if closeErr != nil {
			return nil, closeErr
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	logFile, err := os.OpenFile(prefix+".nosql_log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	return &FileStore{prefix: prefix, t: t, log: logFile, logCount: logCount}, nil
}

func (s *FileStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.t.get(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *FileStore) Scan(_ context.Context, from, to []byte, limit int, _ bool) ([]KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.scan(from, to, limit), nil
}

func (s *FileStore) FetchRows(_ context.Context, keys [][]byte) ([]KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.t.get(k); ok {
			rows = append(rows, KeyValue{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)})
		}
	}
	return rows, nil
}

func (s *FileStore) Insert(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.get(key); ok {
		return ErrDuplicateKey
	}
	if err := s.appendPutLocked(key, value); err != nil {
		return err
	}
	s.t.put(key, value)
	return s.maybeRotateLocked()
}

func (s *FileStore) Upsert(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.appendPutLocked(key, value); err != nil {
		return err
	}
	s.t.put(key, value)
	return s.maybeRotateLocked()
}

func (s *FileStore) Delete(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.get(key); !ok {
		return nil
	}
	if err := s.appendDeleteLocked(key); err != nil {
		return err
	}
	s.t.delete(key)
	return s.maybeRotateLocked()
}

// AtomicUpdate mirrors MemStore's CAS-retry strategy: fn runs with the lock
// released, and the log append plus table mutation only happen if the key
// is unchanged since the read.
func (s *FileStore) AtomicUpdate(_ context.Context, key []byte, fn UpdateFunc) error {
	for {
		s.mu.Lock()
		old, exists := s.t.get(key)
		snapshot := append([]byte(nil), old...)
		s.mu.Unlock()

		newValue, del, err := fn(snapshot, exists)
		if err != nil {
			return err
		}

		s.mu.Lock()
		cur, curExists := s.t.get(key)
		if curExists != exists || !bytes.Equal(cur, snapshot) {
			s.mu.Unlock()
			continue
		}
		if del {
			if !exists {
				s.mu.Unlock()
				return nil
			}
			if err := s.appendDeleteLocked(key); err != nil {
				s.mu.Unlock()
				return err
			}
			s.t.delete(key)
		} else {
			if err := s.appendPutLocked(key, newValue); err != nil {
				s.mu.Unlock()
				return err
			}
			s.t.put(key, newValue)
		}
		rotErr := s.maybeRotateLocked()
		s.mu.Unlock()
		return rotErr
	}
}

// Flush fsyncs the log file, forcing prior writes to durable storage.
func (s *FileStore) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Sync()
}

func (s *FileStore) appendPutLocked(key, value []byte) error {
	buf := make([]byte, 0, 9+len(key)+len(value))
	buf = append(buf, logOpPut)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(key)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(value)))
	buf = append(buf, key...)
	buf = append(buf, value...)
	if _, err := s.log.Write(buf); err != nil {
		return err
	}
	s.logCount++
	return nil
}

func (s *FileStore) appendDeleteLocked(key []byte) error {
	buf := make([]byte, 0, 5+len(key))
	buf = append(buf, logOpDelete)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(key)))
	buf = append(buf, key...)
	if _, err := s.log.Write(buf); err != nil {
		return err
	}
	s.logCount++
	return nil
}

// maybeRotateLocked snapshots the table and truncates the log once
// logCount crosses snapshotRotateThreshold, writing the new snapshot to a
// temp file and renaming it into place so a crash mid-write never corrupts
// the existing snapshot.
func (s *FileStore) maybeRotateLocked() error {
	if s.logCount < snapshotRotateThreshold {
		return nil
	}

	tmp := s.prefix + ".nosql_db.tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := writeSnapshot(f, s.t); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.prefix+".nosql_db"); err != nil {
		return err
	}

	if err := s.log.Close(); err != nil {
		return err
	}
	logFile, err := os.OpenFile(s.prefix+".nosql_log", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	s.log = logFile
	s.logCount = 0
	return nil
}

// writeSnapshot writes `.nosql_db`'s format: a big-endian record count
// followed by [u32 klen][u32 vlen][klen key][vlen value] records.
func writeSnapshot(w io.Writer, t *table) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.BigEndian, uint32(t.len())); err != nil {
		return err
	}
	var writeErr error
	t.each(func(key, value []byte) {
		if writeErr != nil {
			return
		}
		if writeErr = binary.Write(bw, binary.BigEndian, uint32(len(key))); writeErr != nil {
			return
		}
		if writeErr = binary.Write(bw, binary.BigEndian, uint32(len(value))); writeErr != nil {
			return
		}
		if _, writeErr = bw.Write(key); writeErr != nil {
			return
		}
		_, writeErr = bw.Write(value)
	})
	if writeErr != nil {
		return writeErr
	}
	return bw.Flush()
}

func loadSnapshot(r io.Reader, t *table) error {
	br := bufio.NewReader(r)
	var count uint32
	if err := binary.Read(br, binary.BigEndian, &count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		var klen, vlen uint32
		if err := binary.Read(br, binary.BigEndian, &klen); err != nil {
			return err
		}
		if err := binary.Read(br, binary.BigEndian, &vlen); err != nil {
			return err
		}
		key := make([]byte, klen)
		if _, err := io.ReadFull(br, key); err != nil {
			return err
		}
		value := make([]byte, vlen)
		if _, err := io.ReadFull(br, value); err != nil {
			return err
		}
		t.put(key, value)
	}
	return nil
}

// replayLog applies `.nosql_log`'s records to t in order and returns how
// many were applied. A truncated final record (a crash mid-append) is
// silently dropped rather than treated as an error.
func replayLog(r io.Reader, t *table) (int, error) {
	br := bufio.NewReader(r)
	count := 0
	for {
		op, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		switch op {
		case logOpPut:
			var klen, vlen uint32
			if err := binary.Read(br, binary.BigEndian, &klen); err != nil {
				return count, truncatedOrErr(err)
			}
			if err := binary.Read(br, binary.BigEndian, &vlen); err != nil {
				return count, truncatedOrErr(err)
			}
			key := make([]byte, klen)
			if _, err := io.ReadFull(br, key); err != nil {
				return count, truncatedOrErr(err)
			}
			value := make([]byte, vlen)
			if _, err := io.ReadFull(br, value); err != nil {
				return count, truncatedOrErr(err)
			}
			t.put(key, value)
			count++
		case logOpDelete:
			var klen uint32
			if err := binary.Read(br, binary.BigEndian, &klen); err != nil {
				return count, truncatedOrErr(err)
			}
			key := make([]byte, klen)
			if _, err := io.ReadFull(br, key); err != nil {
				return count, truncatedOrErr(err)
			}
			t.delete(key)
			count++
		default:
			return count, fmt.Errorf("kv: corrupt log: unknown opcode %d", op)
		}
	}
	return count, nil
}

func truncatedOrErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil
	}
	return err
}
