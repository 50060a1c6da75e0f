package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/0xmhha/filesorter/pkg/logger"
)

// Bucket names.
var bucketMoves = []byte("moves") // big-endian seq -> JSON Record

// boltJournal implements Journal using BoltDB. The database file is opened
// for the duration of each call only, so a long-running watcher and a
// history reader can take turns on the file lock.
type boltJournal struct {
	logger  logger.Logger
	path    string
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// Open creates the journal database if needed and returns a Journal bound
// to it.
//
// Returns error if the database cannot be created, including when another
// process holds it for longer than the configured timeout.
func Open(cfg Config, log logger.Logger) (Journal, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := expandHome(cfg.Path)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	j := &boltJournal{
		logger:  log,
		path:    dbPath,
		timeout: cfg.Timeout,
	}

	if err := j.update(func(tx *bolt.Tx) error {
		if _, createErr := tx.CreateBucketIfNotExists(bucketMoves); createErr != nil {
			return fmt.Errorf("failed to create moves bucket: %w", createErr)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	log.Debug("journal opened", "path", dbPath)
	return j, nil
}

// Append implements Journal.Append.
func (j *boltJournal) Append(rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}

	return j.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketMoves)
		if err != nil {
			return fmt.Errorf("failed to create moves bucket: %w", err)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
		rec.Seq = seq

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := b.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}
		return nil
	})
}

// List implements Journal.List.
func (j *boltJournal) List(limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil, ErrJournalClosed
	}

	records := make([]Record, 0, 16)

	err := j.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMoves)
		if b == nil {
			return nil
		}
		c := b.Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}

			var rec Record
			if unmarshalErr := json.Unmarshal(v, &rec); unmarshalErr != nil {
				j.logger.Warn("failed to unmarshal journal record",
					"seq", binary.BigEndian.Uint64(k),
					"error", unmarshalErr)
				continue // Skip invalid entries.
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}

// Stats implements Journal.Stats.
func (j *boltJournal) Stats() (Stats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return Stats{}, ErrJournalClosed
	}

	stats := newStats()

	err := j.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMoves)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if unmarshalErr := json.Unmarshal(v, &rec); unmarshalErr != nil {
				return nil // Skip invalid entries.
			}
			stats.add(rec)
			return nil
		})
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	return stats, nil
}

// Close implements Journal.Close.
func (j *boltJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true

	j.logger.Debug("journal closed", "path", j.path)
	return nil
}

// update runs fn in a read-write transaction on a freshly opened database.
func (j *boltJournal) update(fn func(tx *bolt.Tx) error) error {
	db, err := j.open(false)
	if err != nil {
		return err
	}
	defer j.closeDB(db)
	return db.Update(fn)
}

// view runs fn in a read-only transaction. Readers share the file lock.
func (j *boltJournal) view(fn func(tx *bolt.Tx) error) error {
	db, err := j.open(true)
	if err != nil {
		return err
	}
	defer j.closeDB(db)
	return db.View(fn)
}

func (j *boltJournal) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(j.path, 0600, &bolt.Options{
		Timeout:  j.timeout,
		ReadOnly: readOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return db, nil
}

func (j *boltJournal) closeDB(db *bolt.DB) {
	if err := db.Close(); err != nil {
		j.logger.Warn("failed to close journal database", "path", j.path, "error", err)
	}
}

// seqKey encodes seq so keys sort in append order.
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// expandHome expands ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
