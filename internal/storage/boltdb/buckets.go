package boltdb

import (
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// errMissing is returned by get when the key is absent.
var errMissing = errors.New("record not found")

// ErrBucketMissing indicates Migrate has not been run on the database.
var ErrBucketMissing = errors.New("bucket not found, run migrate first")

// bucket returns the named bucket. Callers run after Migrate, so a nil bucket
// only occurs on an uninitialized database and is reported by put/get/each.
func bucket(tx *bolt.Tx, name string) *bolt.Bucket {
	return tx.Bucket([]byte(name))
}

func put(tx *bolt.Tx, name, key string, value any) error {
	b := bucket(tx, name)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrBucketMissing, name)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return b.Put([]byte(key), data)
}

func get(tx *bolt.Tx, name, key string, value any) error {
	b := bucket(tx, name)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrBucketMissing, name)
	}

	data := b.Get([]byte(key))
	if data == nil {
		return errMissing
	}

	return json.Unmarshal(data, value)
}

func exists(tx *bolt.Tx, name, key string) bool {
	b := bucket(tx, name)
	return b != nil && b.Get([]byte(key)) != nil
}

// each calls fn with every value in the bucket. The slice is only valid
// during the transaction.
func each(tx *bolt.Tx, name string, fn func(data []byte) error) error {
	b := bucket(tx, name)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrBucketMissing, name)
	}

	return b.ForEach(func(_, v []byte) error {
		return fn(v)
	})
}
