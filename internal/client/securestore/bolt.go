package securestore

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	credentialsBucket = []byte("credentials")
	metaBucket        = []byte("meta")
	saltKey           = []byte("salt")
)

// BoltStore is the production Store: a bbolt file opened 0600, values sealed
// with AES-256-GCM under a key derived from the per-install device secret.
type BoltStore struct {
	db  *bbolt.DB
	key []byte
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens (or creates) the store at path. The argon2id salt is created
// on first open and persisted alongside the data, so the same secret always
// yields the same sealing key for this file.
func OpenBolt(path string, secret []byte) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening secure store: %w", err)
	}

	var salt []byte
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(credentialsBucket); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if existing := meta.Get(saltKey); existing != nil {
			salt = append([]byte(nil), existing...)
			return nil
		}
		salt = make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return err
		}
		return meta.Put(saltKey, salt)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing secure store: %w", err)
	}

	return &BoltStore{db: db, key: deriveKey(secret, salt)}, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sealed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(credentialsBucket).Get([]byte(key)); v != nil {
			sealed = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading secure store[%s]: %w", key, err)
	}
	if sealed == nil {
		return nil, nil
	}

	value, err := open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("unsealing secure store[%s]: %w", key, err)
	}
	return value, nil
}

func (s *BoltStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sealed, err := seal(value, s.key)
	if err != nil {
		return fmt.Errorf("sealing secure store[%s]: %w", key, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(credentialsBucket).Put([]byte(key), sealed)
	})
	if err != nil {
		return fmt.Errorf("writing secure store[%s]: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(credentialsBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting secure store[%s]: %w", key, err)
	}
	return nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
