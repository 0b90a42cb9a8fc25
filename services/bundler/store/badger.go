// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	artifactPrefix   = "artifact/"
	checkpointPrefix = "checkpoint/"
)

// BadgerConfig holds configuration for the badger-backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Required unless InMemory.
	Path string

	// InMemory enables in-memory mode (no disk persistence). For tests.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. If nil, that
	// output is disabled.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns durable defaults for local use.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// badgerEnvelope is the stored value for one artifact key.
type badgerEnvelope struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore is an ArtifactStore backed by BadgerDB.
//
// # Description
//
// Artifacts live under the "artifact/" key prefix as JSON envelopes.
// A checkpoint copies every artifact key under a uuid-scoped
// "checkpoint/<id>/" prefix; Restore replays that copy over the artifact
// space, and Commit drops all retained checkpoints and syncs the value
// log.
//
// Snapshot copies go through a WriteBatch, so a large keyspace never
// trips badger's per-transaction size limit. The batch is not a single
// isolated transaction; this is a compensating-transaction design that
// assumes one writer per checkpoint/restore pair, which the applier's
// single-writer contract provides.
//
// # Thread Safety
//
// Individual reads and writes are safe for concurrent use; BadgerDB
// transactions provide their isolation. The checkpoint/restore pair
// still assumes a single writer per transaction.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens a badger-backed artifact store.
//
// Description:
//
//	Opens (creating if needed) a BadgerDB at cfg.Path, or an in-memory
//	instance when cfg.InMemory is set. Call Close when done.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*BadgerStore - The opened store.
//	error - Non-nil if the path is missing or the database cannot open.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// ReadArtifact implements ArtifactStore.
func (s *BadgerStore) ReadArtifact(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var env badgerEnvelope
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(artifactPrefix + path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return env.Content, found, nil
}

// WriteArtifact implements ArtifactStore.
func (s *BadgerStore) WriteArtifact(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(badgerEnvelope{Content: content, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("encode artifact %s: %w", path, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(artifactPrefix+path), value)
	})
	if err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// DeleteArtifact implements ArtifactStore.
func (s *BadgerStore) DeleteArtifact(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(artifactPrefix + path))
	})
	if err != nil {
		return fmt.Errorf("delete artifact %s: %w", path, err)
	}
	return nil
}

// ListArtifactMetadata implements ArtifactStore.
func (s *BadgerStore) ListArtifactMetadata(ctx context.Context) (map[string]ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta := make(map[string]ArtifactMetadata)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(artifactPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			path := strings.TrimPrefix(string(item.Key()), artifactPrefix)

			var env badgerEnvelope
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			}); err != nil {
				return fmt.Errorf("decode artifact %s: %w", path, err)
			}
			meta[path] = ArtifactMetadata{
				Path:      path,
				Size:      int64(len(env.Content)),
				UpdatedAt: env.UpdatedAt,
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return meta, nil
}

// Checkpoint implements ArtifactStore.
func (s *BadgerStore) Checkpoint(ctx context.Context) (CheckpointID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := CheckpointID(uuid.NewString())
	snapPrefix := checkpointPrefix + string(id) + "/"

	var entries map[string][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		entries, err = collectByPrefix(txn, []byte(artifactPrefix))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("checkpoint: %w", err)
	}

	// A WriteBatch splits the copy across as many transactions as it
	// needs, so a large artifact space cannot trip ErrTxnTooBig.
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for path, value := range entries {
		if err := wb.Set([]byte(snapPrefix+path), value); err != nil {
			return "", fmt.Errorf("checkpoint: %w", err)
		}
	}
	// Marker so an empty store still produces a restorable handle. Last
	// in the batch, so a crashed copy never leaves a restorable marker.
	if err := wb.Set([]byte(checkpointPrefix+string(id)), []byte{1}); err != nil {
		return "", fmt.Errorf("checkpoint: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return "", fmt.Errorf("checkpoint: %w", err)
	}
	return id, nil
}

// Restore implements ArtifactStore.
func (s *BadgerStore) Restore(ctx context.Context, id CheckpointID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	marker := []byte(checkpointPrefix + string(id))
	snapPrefix := []byte(checkpointPrefix + string(id) + "/")

	var snapshot map[string][]byte
	var artifactKeys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(marker); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUnknownCheckpoint
		} else if err != nil {
			return err
		}

		var err error
		snapshot, err = collectByPrefix(txn, snapPrefix)
		if err != nil {
			return err
		}
		artifactKeys, err = keysByPrefix(txn, []byte(artifactPrefix))
		return err
	})
	if errors.Is(err, ErrUnknownCheckpoint) {
		return ErrUnknownCheckpoint
	}
	if err != nil {
		return fmt.Errorf("restore checkpoint %s: %w", id, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	// Drop artifacts the snapshot does not cover. Covered paths are
	// overwritten by the replay below rather than deleted and re-set.
	for _, key := range artifactKeys {
		path := strings.TrimPrefix(string(key), artifactPrefix)
		if _, ok := snapshot[path]; ok {
			continue
		}
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("restore checkpoint %s: %w", id, err)
		}
	}
	for path, value := range snapshot {
		if err := wb.Set([]byte(artifactPrefix+path), value); err != nil {
			return fmt.Errorf("restore checkpoint %s: %w", id, err)
		}
	}

	// The handle is consumed by restoration.
	for path := range snapshot {
		if err := wb.Delete([]byte(string(snapPrefix) + path)); err != nil {
			return fmt.Errorf("restore checkpoint %s: %w", id, err)
		}
	}
	if err := wb.Delete(marker); err != nil {
		return fmt.Errorf("restore checkpoint %s: %w", id, err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("restore checkpoint %s: %w", id, err)
	}
	return nil
}

// Commit implements ArtifactStore. Drops retained checkpoints and syncs
// the value log for durability.
func (s *BadgerStore) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		keys, err = keysByPrefix(txn, []byte(checkpointPrefix))
		return err
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if len(keys) > 0 {
		wb := s.db.NewWriteBatch()
		defer wb.Cancel()
		for _, key := range keys {
			if err := wb.Delete(key); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
		}
		if err := wb.Flush(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	if !s.db.Opts().InMemory {
		if err := s.db.Sync(); err != nil {
			return fmt.Errorf("commit sync: %w", err)
		}
	}
	return nil
}

// collectByPrefix copies all values under prefix into memory, keyed by
// the path remainder after the prefix.
func collectByPrefix(txn *badger.Txn, prefix []byte) (map[string][]byte, error) {
	entries := make(map[string][]byte)

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		path := strings.TrimPrefix(string(item.Key()), string(prefix))
		value, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		entries[path] = value
	}
	return entries, nil
}

// keysByPrefix collects all keys under the given prefix without loading
// their values.
func keysByPrefix(txn *badger.Txn, prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

var _ ArtifactStore = (*BadgerStore)(nil)
