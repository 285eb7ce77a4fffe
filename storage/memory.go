package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory Store. Tests use it to assert on side
// effects: every mutating call is appended to Calls, and CopyHook lets
// a test inject a failure between write and relocate.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	modtime map[string]time.Time

	// Calls records mutating operations as "put|copy|delete bucket/key".
	Calls []string

	// CopyHook, when set, runs before each copy; a non-nil return
	// aborts that copy.
	CopyHook func(srcBucket, srcKey string) error

	// Clock supplies Put timestamps; defaults to time.Now.
	Clock func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
		modtime: make(map[string]time.Time),
	}
}

func memKey(bucket, key string) string { return bucket + "/" + key }

func (m *MemStore) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// Seed stores an object without recording a call, for test setup.
func (m *MemStore) Seed(bucket, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memKey(bucket, key)] = body
	m.modtime[memKey(bucket, key)] = m.now()
}

// SeedAt is Seed with an explicit modification time.
func (m *MemStore) SeedAt(bucket, key string, body []byte, mod time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memKey(bucket, key)] = body
	m.modtime[memKey(bucket, key)] = mod
}

// Has reports whether the object exists.
func (m *MemStore) Has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[memKey(bucket, key)]
	return ok
}

func (m *MemStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[memKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, ErrNotFound)
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func (m *MemStore) Put(_ context.Context, bucket, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memKey(bucket, key)] = append([]byte(nil), body...)
	m.modtime[memKey(bucket, key)] = m.now()
	m.Calls = append(m.Calls, "put "+memKey(bucket, key))
	return nil
}

func (m *MemStore) Copy(_ context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if m.CopyHook != nil {
		if err := m.CopyHook(srcBucket, srcKey); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[memKey(srcBucket, srcKey)]
	if !ok {
		return fmt.Errorf("copy %s/%s: %w", srcBucket, srcKey, ErrNotFound)
	}
	m.objects[memKey(dstBucket, dstKey)] = append([]byte(nil), body...)
	m.modtime[memKey(dstBucket, dstKey)] = m.now()
	m.Calls = append(m.Calls, "copy "+memKey(dstBucket, dstKey))
	return nil
}

func (m *MemStore) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, memKey(bucket, key))
	delete(m.modtime, memKey(bucket, key))
	m.Calls = append(m.Calls, "delete "+memKey(bucket, key))
	return nil
}

func (m *MemStore) List(_ context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var infos []ObjectInfo
	full := memKey(bucket, prefix)
	for k, body := range m.objects {
		if strings.HasPrefix(k, full) {
			infos = append(infos, ObjectInfo{
				Key:          strings.TrimPrefix(k, bucket+"/"),
				Size:         int64(len(body)),
				LastModified: m.modtime[k],
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// MutationCount returns the number of recorded put/copy/delete calls.
func (m *MemStore) MutationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
