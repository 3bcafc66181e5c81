// Pulseboard - Product Usage Analytics and Business Intelligence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package eventstore

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/models"
)

// keyPrefix namespaces event entries inside the Badger keyspace.
var keyPrefix = []byte("evt:")

// DurableLog is the capacity-bounded append-only event log backed by
// BadgerDB. Entries are keyed by a monotonic sequence number so reverse
// iteration yields most-recent-first order. Oldest entries beyond capacity
// are pruned by the flush tick.
type DurableLog struct {
	db       *badger.DB
	capacity int
	seq      atomic.Uint64

	// pruneMu serializes prune passes; appends are not blocked by it.
	pruneMu sync.Mutex
}

// OpenDurableLog opens (or creates) the log at path. An empty path opens an
// in-memory Badger instance, used by tests and ephemeral deployments.
func OpenDurableLog(path string, capacity int) (*DurableLog, error) {
	if capacity < 1 {
		capacity = 1
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open durable event log: %w", err)
	}

	log := &DurableLog{db: db, capacity: capacity}
	if err := log.restoreSequence(); err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics.DurableLogEntries.Set(float64(log.Count()))
	return log, nil
}

// restoreSequence finds the highest stored sequence number so appends after
// a restart continue the ordering.
func (l *DurableLog) restoreSequence() error {
	return l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true, Prefix: keyPrefix})
		defer it.Close()

		it.Seek(seekLast())
		if it.ValidForPrefix(keyPrefix) {
			l.seq.Store(decodeSeq(it.Item().Key()))
		}
		return nil
	})
}

// Append stores an event as the newest entry.
func (l *DurableLog) Append(event models.UsageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	seq := l.seq.Add(1)
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeSeq(seq), payload)
	})
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", event.ID, err)
	}

	metrics.DurableLogEntries.Inc()
	return nil
}

// Recent returns up to limit events, most recent first. A limit below 1
// returns the full bounded log.
func (l *DurableLog) Recent(limit int) ([]models.UsageEvent, error) {
	if limit < 1 || limit > l.capacity {
		limit = l.capacity
	}

	events := make([]models.UsageEvent, 0, limit)
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true, PrefetchValues: true, Prefix: keyPrefix})
		defer it.Close()

		for it.Seek(seekLast()); it.ValidForPrefix(keyPrefix) && len(events) < limit; it.Next() {
			var event models.UsageEvent
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return fmt.Errorf("failed to decode event at seq %d: %w", decodeSeq(it.Item().Key()), err)
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of entries currently stored.
func (l *DurableLog) Count() int {
	count := 0
	_ = l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: keyPrefix})
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(keyPrefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Prune deletes the oldest entries beyond capacity. Called by the flush
// tick; safe to call concurrently with appends and reads.
func (l *DurableLog) Prune() (int, error) {
	l.pruneMu.Lock()
	defer l.pruneMu.Unlock()

	excess := l.Count() - l.capacity
	if excess <= 0 {
		return 0, nil
	}

	pruned := 0
	err := l.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: keyPrefix})
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(keyPrefix) && pruned < excess; it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
			pruned++
		}
		return nil
	})
	if err != nil {
		return pruned, fmt.Errorf("failed to prune durable log: %w", err)
	}

	metrics.DurableLogPrunes.Add(float64(pruned))
	metrics.DurableLogEntries.Set(float64(l.Count()))
	return pruned, nil
}

// RunGC triggers one Badger value-log garbage collection pass. Badger
// returns ErrNoRewrite when nothing needed collecting; that is not an
// error for our purposes.
func (l *DurableLog) RunGC() error {
	err := l.db.RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite || err == badger.ErrRejected {
		return nil
	}
	return err
}

// Close shuts the underlying database down.
func (l *DurableLog) Close() error {
	return l.db.Close()
}

// encodeSeq builds the ordered key for a sequence number.
func encodeSeq(seq uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], seq)
	return key
}

// decodeSeq extracts the sequence number from a key.
func decodeSeq(key []byte) uint64 {
	if len(key) < len(keyPrefix)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(keyPrefix):])
}

// seekLast returns a key greater than any encoded sequence, used as the
// reverse-iteration start point.
func seekLast() []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	for i := len(keyPrefix); i < len(key); i++ {
		key[i] = 0xFF
	}
	return key
}
