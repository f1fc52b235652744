package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/securestore-go/cipher"
	"github.com/bitfsorg/securestore-go/storage"
)

// --- Helper functions ---

func newProvider(t *testing.T) *cipher.AEAD {
	t.Helper()
	p, err := cipher.NewAEAD(cipher.StaticKey(bytes.Repeat([]byte{0x11}, cipher.KeyLen)), cipher.SuiteAES256GCM)
	require.NoError(t, err)
	return p
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryKV) {
	t.Helper()
	backend := storage.NewMemoryKV()
	s, err := New(backend, newProvider(t))
	require.NoError(t, err)
	return s, backend
}

type brokenProvider struct{}

func (brokenProvider) Encrypt([]byte) ([]byte, error) { return nil, cipher.ErrKeyUnavailable }
func (brokenProvider) Decrypt([]byte) ([]byte, error) { return nil, cipher.ErrKeyUnavailable }

type failingKV struct {
	*storage.MemoryKV
}

func (failingKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

// --- Round-trip tests ---

func TestSetGet_AllBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.KVBackend{
		"memory": func(t *testing.T) storage.KVBackend { return storage.NewMemoryKV() },
		"bolt": func(t *testing.T) storage.KVBackend {
			kv, err := storage.OpenBoltKV(filepath.Join(t.TempDir(), "kv.db"))
			require.NoError(t, err)
			return kv
		},
		"sqlite": func(t *testing.T) storage.KVBackend {
			kv, err := storage.OpenSQLiteKV(filepath.Join(t.TempDir(), "kv.sqlite"))
			require.NoError(t, err)
			return kv
		},
	}

	values := []string{"value", "", "value with emoji 🔐 and symbols !@#$%", strings.Repeat("x", 64*1024)}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s, err := New(open(t), newProvider(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			ctx := context.Background()

			for i, v := range values {
				key := fmt.Sprintf("key-%d", i)
				require.NoError(t, s.Set(ctx, key, v))

				got, found, err := s.Get(ctx, key)
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, v, got)
			}
		})
	}
}

func TestSet_PersistsCiphertext(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "token", "super-secret"))

	raw, err := backend.Get(ctx, "token")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret")
	assert.True(t, s.IsEncrypted())
}

func TestSet_Overwrite(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "initialValue"))
	require.NoError(t, s.Set(ctx, "k", "updatedValue"))

	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "updatedValue", got)
}

func TestSet_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Set(ctx, "k", "v"))

	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", got)
}

// --- Not found / remove tests ---

func TestGet_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	got, found, err := s.Get(context.Background(), "nonExistentKey")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, got)
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Remove(ctx, "k"))

	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.Remove(context.Background(), "never-set"))
}

func TestClear(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "key1", "value1"))
	require.NoError(t, s.Set(ctx, "key2", "value2"))

	require.NoError(t, s.Clear(ctx))

	for _, k := range []string{"key1", "key2"} {
		_, found, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

// --- Error taxonomy tests ---

func TestGet_CorruptCiphertext(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, backend.Put(ctx, "k", []byte("definitely not ciphertext")))

	_, found, err := s.Get(ctx, "k")
	assert.False(t, found)
	assert.ErrorIs(t, err, storage.ErrDecryption)
	assert.NotErrorIs(t, err, storage.ErrIOFailure)
}

func TestGet_TamperedCiphertext(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "value"))

	raw, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, backend.Put(ctx, "k", raw))

	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrDecryption)
}

func TestGet_KeyMaterialMismatch(t *testing.T) {
	backend := storage.NewMemoryKV()
	ctx := context.Background()

	writer, err := New(backend, newProvider(t))
	require.NoError(t, err)
	require.NoError(t, writer.Set(ctx, "k", "value"))

	other, err := cipher.NewAEAD(cipher.StaticKey(bytes.Repeat([]byte{0x22}, cipher.KeyLen)), cipher.SuiteAES256GCM)
	require.NoError(t, err)
	reader, err := New(backend, other)
	require.NoError(t, err)

	_, _, err = reader.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrDecryption)
}

func TestSet_EncryptionError(t *testing.T) {
	backend := storage.NewMemoryKV()
	s, err := New(backend, brokenProvider{})
	require.NoError(t, err)

	err = s.Set(context.Background(), "k", "v")
	assert.ErrorIs(t, err, storage.ErrEncryption)
	assert.ErrorIs(t, err, cipher.ErrKeyUnavailable)

	// Nothing reached the backend.
	_, err = backend.Get(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSet_StorageError(t *testing.T) {
	s, err := New(failingKV{storage.NewMemoryKV()}, newProvider(t))
	require.NoError(t, err)

	err = s.Set(context.Background(), "k", "v")
	assert.ErrorIs(t, err, storage.ErrIOFailure)
	assert.Contains(t, err.Error(), "disk full")
}

func TestInvalidKeys(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("k", MaxKeyLen+1)},
		{"invalid utf8", string([]byte{0xff, 0xfe})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Set(ctx, tt.key, "v"), ErrInvalidKey)
			_, _, err := s.Get(ctx, tt.key)
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, s.Remove(ctx, tt.key), ErrInvalidKey)
		})
	}
}

func TestNew_NilBackend(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

// --- Unencrypted store tests ---

func TestUnencryptedStore(t *testing.T) {
	backend := storage.NewMemoryKV()
	s, err := New(backend, nil)
	require.NoError(t, err)
	assert.False(t, s.IsEncrypted())

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "plain"))

	raw, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), raw)

	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "plain", got)
}

// --- Concurrency tests ---

func TestConcurrentSetGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			val := fmt.Sprintf("v%d", i)
			assert.NoError(t, s.Set(ctx, key, val))
			got, found, err := s.Get(ctx, key)
			assert.NoError(t, err)
			assert.True(t, found)
			assert.True(t, strings.HasPrefix(got, "v"))
		}(i)
	}
	wg.Wait()
}
