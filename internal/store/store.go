// Package store holds the record store: the single active profile and
// the ordered list of overtime entries, backed by two JSON blobs in the
// settings store. Every mutation rewrites the whole affected blob.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"nadgodziny/internal/core"
	"nadgodziny/internal/log"
	"nadgodziny/internal/storage"
)

// Fixed blob keys in the settings store.
const (
	profileKey = "currentUser"
	entriesKey = "savedOvertimes"
)

// ErrNoActiveProfile is returned by AddEntry before onboarding finished.
var ErrNoActiveProfile = errors.New("no active profile")

// Blobs is the slice of the settings store the record store needs.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// RecordStore owns the in-memory state and keeps the persisted blobs in
// step with it. Persistence failures never reach the caller: the
// in-memory state advances regardless and the failure is only logged,
// so a broken disk cannot block recording hours.
type RecordStore struct {
	mu      sync.Mutex
	blobs   Blobs
	logger  *log.Logger
	profile *core.User
	entries []core.Overtime
}

// Open loads both blobs and returns the store. A missing or corrupt
// blob is treated as absent, never as an error.
func Open(ctx context.Context, blobs Blobs, logger *log.Logger) *RecordStore {
	s := &RecordStore{
		blobs:   blobs,
		logger:  logger.WithComponent(log.ComponentStore),
		entries: []core.Overtime{},
	}

	if data, err := blobs.Get(ctx, profileKey); err == nil {
		var u core.User
		if err := json.Unmarshal(data, &u); err != nil {
			s.logger.WarnContext(ctx, "Corrupt profile blob, treating as absent",
				log.FieldKey, profileKey, log.FieldError, err)
		} else {
			s.profile = &u
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		s.logger.WarnContext(ctx, "Cannot read profile blob, treating as absent",
			log.FieldKey, profileKey, log.FieldError, err)
	}

	if data, err := blobs.Get(ctx, entriesKey); err == nil {
		var entries []core.Overtime
		if err := json.Unmarshal(data, &entries); err != nil {
			s.logger.WarnContext(ctx, "Corrupt entries blob, treating as empty",
				log.FieldKey, entriesKey, log.FieldError, err)
		} else if entries != nil {
			s.entries = entries
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		s.logger.WarnContext(ctx, "Cannot read entries blob, treating as empty",
			log.FieldKey, entriesKey, log.FieldError, err)
	}

	return s
}

// Profile returns the active profile, or nil before onboarding.
func (s *RecordStore) Profile() *core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	u := *s.profile
	return &u
}

// SaveProfile overwrites the active profile and persists it. The store
// does not validate field contents; that is the caller's concern.
func (s *RecordStore) SaveProfile(ctx context.Context, u core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = &u
	s.persist(ctx, profileKey, u)

	s.logger.InfoContext(ctx, "Profile saved",
		log.FieldUserID, u.ID.String(),
		log.FieldOperation, log.OpSave)
}

// Entries returns a copy of the entry list in insertion order
// (newest appended last).
func (s *RecordStore) Entries() []core.Overtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Overtime(nil), s.entries...)
}

// AddEntry stamps the draft with the active profile's id, assigns a
// fresh id when the draft has none, appends it and persists the whole
// list before returning.
func (s *RecordStore) AddEntry(ctx context.Context, draft core.Overtime) (core.Overtime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return core.Overtime{}, ErrNoActiveProfile
	}

	entry := draft
	entry.UserID = s.profile.ID
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	s.entries = append(s.entries, entry)
	s.persist(ctx, entriesKey, s.entries)

	s.logger.InfoContext(ctx, "Entry added",
		log.FieldEntryID, entry.ID.String(),
		log.FieldUserID, entry.UserID.String(),
		log.FieldHours, entry.Hours,
		log.FieldCity, entry.City,
		log.FieldOperation, log.OpAdd)

	return entry, nil
}

// DeleteEntries removes the entries at the given positions and persists
// the remaining list. Out-of-range positions are ignored.
func (s *RecordStore) DeleteEntries(ctx context.Context, positions []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		if p >= 0 && p < len(s.entries) {
			drop[p] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return
	}

	kept := make([]core.Overtime, 0, len(s.entries)-len(drop))
	for i, e := range s.entries {
		if _, gone := drop[i]; !gone {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.persist(ctx, entriesKey, s.entries)

	s.logger.InfoContext(ctx, "Entries deleted",
		"deleted", len(drop),
		"remaining", len(kept),
		log.FieldOperation, log.OpDelete)
}

// persist writes v as JSON under key, absorbing any failure.
func (s *RecordStore) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.ErrorContext(ctx, "Cannot serialize blob, keeping in-memory state only",
			log.FieldKey, key, log.FieldError, err)
		return
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		s.logger.ErrorContext(ctx, "Cannot persist blob, keeping in-memory state only",
			log.FieldKey, key, log.FieldError, err)
	}
}
