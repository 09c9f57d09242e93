package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/blockberries/adder/types"
)

var headsBucket = []byte("heads")

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// BoltStore keeps heads in a bbolt database. Keys are big-endian block
// numbers so the cursor walks heads in chain order.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(headsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.db.Path()
}

func (s *BoltStore) Append(head types.HeadData) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(headsBucket)

		k, _ := b.Cursor().Last()
		switch {
		case k == nil && head.Number != 0:
			return fmt.Errorf("%w: empty store, got #%d", ErrNotContiguous, head.Number)
		case k != nil && head.Number != decodeKey(k)+1:
			return fmt.Errorf("%w: tip #%d, got #%d", ErrNotContiguous, decodeKey(k), head.Number)
		}

		key := encodeKey(head.Number)
		return b.Put(key[:], head.Encode())
	})
}

func (s *BoltStore) Head(number uint64) (types.HeadData, bool, error) {
	var (
		head types.HeadData
		ok   bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := encodeKey(number)
		val := tx.Bucket(headsBucket).Get(key[:])
		if val == nil {
			return nil
		}
		h, err := decodeValue(number, val)
		if err != nil {
			return err
		}
		head, ok = h, true
		return nil
	})
	return head, ok, err
}

func (s *BoltStore) Tip() (types.HeadData, bool, error) {
	var (
		head types.HeadData
		ok   bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		k, v := tx.Bucket(headsBucket).Cursor().Last()
		if k == nil {
			return nil
		}
		h, err := decodeValue(decodeKey(k), v)
		if err != nil {
			return err
		}
		head, ok = h, true
		return nil
	})
	return head, ok, err
}

func (s *BoltStore) Iterate(from, to uint64, fn func(types.HeadData) error) error {
	if from > to {
		return nil
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(headsBucket).Cursor()
		start := encodeKey(from)
		for k, v := c.Seek(start[:]); k != nil; k, v = c.Next() {
			number := decodeKey(k)
			if number > to {
				break
			}
			head, err := decodeValue(number, v)
			if err != nil {
				return err
			}
			if err := fn(head); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Truncate(number uint64) error {
	if number == ^uint64(0) {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		c := tx.Bucket(headsBucket).Cursor()
		start := encodeKey(number + 1)
		for k, _ := c.Seek(start[:]); k != nil; k, _ = c.Seek(start[:]) {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func encodeKey(number uint64) [8]byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], number)
	return k
}

func decodeKey(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}

// decodeValue decodes a stored head. val is only valid inside the
// transaction; DecodeHead copies out of it.
func decodeValue(number uint64, val []byte) (types.HeadData, error) {
	head, err := types.DecodeHead(val)
	if err != nil {
		return types.HeadData{}, fmt.Errorf("%w: #%d: %v", ErrCorrupt, number, err)
	}
	if head.Number != number {
		return types.HeadData{}, fmt.Errorf("%w: key #%d holds head #%d", ErrCorrupt, number, head.Number)
	}
	return head, nil
}
