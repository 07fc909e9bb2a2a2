package housekeeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/honeypot/models"
)

type fakeStore struct {
	attackers map[uint]*models.Attacker
	files     []*models.UploadedFile
	stale     []*models.Attacker

	results map[uint]string
	deleted []uint
}

func newStore() *fakeStore {
	return &fakeStore{
		attackers: map[uint]*models.Attacker{},
		results:   map[uint]string{},
	}
}

func (f *fakeStore) FilesMissingScan(_ context.Context) ([]*models.UploadedFile, error) {
	var pending []*models.UploadedFile
	for _, file := range f.files {
		if file.VirusTotalResult == nil {
			pending = append(pending, file)
		}
	}
	return pending, nil
}

func (f *fakeStore) SetVirusTotalResult(_ context.Context, fileID uint, result string) error {
	f.results[fileID] = result
	for _, file := range f.files {
		if file.ID == fileID {
			file.VirusTotalResult = &result
		}
	}
	return nil
}

func (f *fakeStore) GetAttackerByID(_ context.Context, id uint) (*models.Attacker, error) {
	attacker, ok := f.attackers[id]
	if !ok {
		return nil, models.ErrAttackerNotFound
	}
	return attacker, nil
}

func (f *fakeStore) StaleAttackers(_ context.Context, _ time.Time) ([]*models.Attacker, error) {
	return f.stale, nil
}

func (f *fakeStore) FilesByAttacker(_ context.Context, attackerID uint) ([]*models.UploadedFile, error) {
	var out []*models.UploadedFile
	for _, file := range f.files {
		if file.AttackerID == attackerID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteAttacker(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// scriptedScanner returns one scripted outcome per hash.
type scriptedScanner struct {
	outcomes map[string]scanOutcome
	calls    []string
}

type scanOutcome struct {
	result      string
	rateLimited bool
	err         error
}

func (s *scriptedScanner) Enabled() bool { return true }

func (s *scriptedScanner) Check(_ context.Context, hash string) (string, bool, error) {
	s.calls = append(s.calls, hash)
	o := s.outcomes[hash]
	return o.result, o.rateLimited, o.err
}

type disabledScanner struct{ called bool }

func (s *disabledScanner) Enabled() bool { return false }
func (s *disabledScanner) Check(context.Context, string) (string, bool, error) {
	s.called = true
	return "", false, nil
}

type capturedEvent struct {
	srcIP string
	fname string
	hash  string
	size  int64
}

type fakeEmitter struct{ events []capturedEvent }

func (f *fakeEmitter) EmitFile(srcIP, fname, hash string, size int64) {
	f.events = append(f.events, capturedEvent{srcIP, fname, hash, size})
}

type fakeDeleter struct{ paths []string }

func (f *fakeDeleter) Delete(path string) error {
	f.paths = append(f.paths, path)
	return nil
}

func cfg() config.HousekeeperConfig {
	return config.HousekeeperConfig{
		Interval:        5 * time.Minute,
		RetentionPeriod: 7 * 24 * time.Hour,
	}
}

func pendingFile(id, attackerID uint, hash string) *models.UploadedFile {
	return &models.UploadedFile{
		ID:         id,
		AttackerID: attackerID,
		Filename:   "payload.bin",
		Hash:       hash,
		Size:       42,
	}
}

func TestEnrichment(t *testing.T) {
	t.Run("scans pending files and emits events", func(t *testing.T) {
		store := newStore()
		store.attackers[1] = &models.Attacker{ID: 1, IP: "203.0.113.9"}
		store.files = []*models.UploadedFile{
			pendingFile(10, 1, "aaa"),
			pendingFile(11, 2, "bbb"), // attacker already purged
		}
		scanner := &scriptedScanner{outcomes: map[string]scanOutcome{
			"aaa": {result: "https://vt.example/aaa/details"},
			"bbb": {result: "Hash not found on VT."},
		}}
		emitter := &fakeEmitter{}

		h := New(store, scanner, emitter, &fakeDeleter{}, cfg(), false)
		h.RunOnce(context.Background())

		assert.Equal(t, "https://vt.example/aaa/details", store.results[10])
		assert.Equal(t, "Hash not found on VT.", store.results[11])

		require.Len(t, emitter.events, 2)
		assert.Equal(t, "203.0.113.9", emitter.events[0].srcIP)
		assert.Equal(t, "aaa | https://vt.example/aaa/details", emitter.events[0].hash)
		assert.Equal(t, int64(42), emitter.events[0].size)
		assert.Equal(t, "IP not found!", emitter.events[1].srcIP)
	})

	t.Run("rate limit defers the rest of the pass", func(t *testing.T) {
		store := newStore()
		store.files = []*models.UploadedFile{
			pendingFile(10, 1, "aaa"),
			pendingFile(11, 1, "bbb"),
			pendingFile(12, 1, "ccc"),
		}
		scanner := &scriptedScanner{outcomes: map[string]scanOutcome{
			"aaa": {result: "found"},
			"bbb": {rateLimited: true},
		}}

		h := New(store, scanner, &fakeEmitter{}, &fakeDeleter{}, cfg(), false)
		h.RunOnce(context.Background())

		assert.Equal(t, []string{"aaa", "bbb"}, scanner.calls)
		assert.Equal(t, map[uint]string{10: "found"}, store.results)
	})

	t.Run("lookup error skips only that file", func(t *testing.T) {
		store := newStore()
		store.files = []*models.UploadedFile{
			pendingFile(10, 1, "aaa"),
			pendingFile(11, 1, "bbb"),
		}
		scanner := &scriptedScanner{outcomes: map[string]scanOutcome{
			"aaa": {err: errors.New("connection refused")},
			"bbb": {result: "found"},
		}}

		h := New(store, scanner, &fakeEmitter{}, &fakeDeleter{}, cfg(), false)
		h.RunOnce(context.Background())

		assert.Equal(t, map[uint]string{11: "found"}, store.results)
	})

	t.Run("disabled scanner is never queried", func(t *testing.T) {
		store := newStore()
		store.files = []*models.UploadedFile{pendingFile(10, 1, "aaa")}
		scanner := &disabledScanner{}

		h := New(store, scanner, &fakeEmitter{}, &fakeDeleter{}, cfg(), false)
		h.RunOnce(context.Background())

		assert.False(t, scanner.called)
		assert.Empty(t, store.results)
	})
}

func TestPurge(t *testing.T) {
	location := "/data/uploads/3/abcdefg"

	t.Run("removes stale attackers and kept blobs", func(t *testing.T) {
		store := newStore()
		store.stale = []*models.Attacker{{ID: 3, IP: "198.51.100.3"}}
		store.files = []*models.UploadedFile{
			{ID: 20, AttackerID: 3, Location: &location, VirusTotalResult: &location},
			{ID: 21, AttackerID: 3}, // blob was discarded at upload time
		}
		deleter := &fakeDeleter{}

		h := New(store, &disabledScanner{}, &fakeEmitter{}, deleter, cfg(), true)
		h.RunOnce(context.Background())

		assert.Equal(t, []uint{3}, store.deleted)
		assert.Equal(t, []string{location}, deleter.paths)
	})

	t.Run("leaves disk alone when uploads are not kept", func(t *testing.T) {
		store := newStore()
		store.stale = []*models.Attacker{{ID: 3, IP: "198.51.100.3"}}
		store.files = []*models.UploadedFile{
			{ID: 20, AttackerID: 3, Location: &location, VirusTotalResult: &location},
		}
		deleter := &fakeDeleter{}

		h := New(store, &disabledScanner{}, &fakeEmitter{}, deleter, cfg(), false)
		h.RunOnce(context.Background())

		assert.Equal(t, []uint{3}, store.deleted)
		assert.Empty(t, deleter.paths)
	})

	t.Run("nothing stale is a no-op", func(t *testing.T) {
		store := newStore()
		deleter := &fakeDeleter{}

		h := New(store, &disabledScanner{}, &fakeEmitter{}, deleter, cfg(), true)
		h.RunOnce(context.Background())

		assert.Empty(t, store.deleted)
		assert.Empty(t, deleter.paths)
	})
}
