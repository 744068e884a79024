// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"fmt"

	"github.com/luxfi/database"
)

var snapshotKey = []byte("bridgekernel/snapshot")

// Store persists a BridgeState snapshot to a database.Database. The
// host driver supplies whichever backing store it likes — pebble,
// leveldb, badger, or an in-memory database for tests — since Store
// only ever touches the database.Database interface.
type Store struct {
	db database.Database
}

// NewStore wraps db as a Store.
func NewStore(db database.Database) *Store {
	return &Store{db: db}
}

// Save encodes state and writes it under the store's snapshot key.
func (s *Store) Save(state *BridgeState) error {
	snap := Snapshot(state)
	encoded, err := Codec.Marshal(CodecVersion, snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.db.Put(snapshotKey, encoded)
}

// Load reads back the most recently saved BridgeState. It returns
// database.ErrNotFound, unwrapped, when no snapshot has been saved
// yet, so callers can fall back to NewBridgeState.
func (s *Store) Load() (*BridgeState, error) {
	encoded, err := s.db.Get(snapshotKey)
	if err != nil {
		return nil, err
	}
	var snap StateSnapshot
	if _, err := Codec.Unmarshal(encoded, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return Restore(&snap), nil
}

// Has reports whether a snapshot has ever been saved.
func (s *Store) Has() (bool, error) {
	return s.db.Has(snapshotKey)
}
