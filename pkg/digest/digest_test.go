package digest_test

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/blendin/extractor/pkg/digest"
	"github.com/blendin/extractor/pkg/domain"
)

func text(v string) domain.TextRecord {
	return domain.NewTextRecord(domain.Field{Name: domain.DefaultTextField, Value: v})
}

func TestHasher_Sum(t *testing.T) {
	t.Parallel()

	t.Run("should hash canonical json with legacy keccak-512 by default", func(t *testing.T) {
		t.Parallel()

		h, err := digest.New("")
		require.NoError(t, err)

		k := sha3.NewLegacyKeccak512()
		k.Write([]byte(`{"text":"Hello"}`))
		want := hex.EncodeToString(k.Sum(nil))

		got := h.Sum(text("Hello"))
		assert.Equal(t, want, got)
		assert.Len(t, got, 128)
		assert.Equal(t, digest.Keccak512, h.Algorithm())
	})

	t.Run("should support sha3-256", func(t *testing.T) {
		t.Parallel()

		h, err := digest.New(digest.SHA3_256)
		require.NoError(t, err)

		sum := sha3.Sum256([]byte(`{"a":"1","b":"2"}`))
		rec := domain.NewTextRecord(domain.Field{Name: "a", Value: "1"}, domain.Field{Name: "b", Value: "2"})
		assert.Equal(t, hex.EncodeToString(sum[:]), h.Sum(rec))
	})

	t.Run("should depend on field order", func(t *testing.T) {
		t.Parallel()

		h, err := digest.New(digest.SHA3_512)
		require.NoError(t, err)

		ab := domain.NewTextRecord(domain.Field{Name: "a", Value: "1"}, domain.Field{Name: "b", Value: "2"})
		ba := domain.NewTextRecord(domain.Field{Name: "b", Value: "2"}, domain.Field{Name: "a", Value: "1"})
		assert.NotEqual(t, h.Sum(ab), h.Sum(ba))
	})

	t.Run("should hash empty record", func(t *testing.T) {
		t.Parallel()

		h, err := digest.New("")
		require.NoError(t, err)
		assert.Equal(t, h.SumBytes([]byte("{}")), h.Sum(domain.TextRecord{}))
	})
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    digest.Algorithm
		wantErr bool
	}{
		{"", digest.Keccak512, false},
		{"keccak-512", digest.Keccak512, false},
		{"SHA3-256", digest.SHA3_256, false},
		{" sha3-512 ", digest.SHA3_512, false},
		{"md5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := digest.ParseAlgorithm(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, digest.ErrUnknownAlgorithm))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := digest.New("crc32")
	assert.ErrorIs(t, err, digest.ErrUnknownAlgorithm)
	for _, alg := range digest.Algorithms() {
		assert.Contains(t, err.Error(), string(alg))
	}
}

func TestParseAlgorithm_ListsSupported(t *testing.T) {
	t.Parallel()

	_, err := digest.ParseAlgorithm("md5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supported: keccak-512, sha3-256, sha3-512")
}

func TestDeduplicator_Add(t *testing.T) {
	t.Parallel()

	h, err := digest.New("")
	require.NoError(t, err)
	d := digest.NewDeduplicator(h)

	first, added := d.Add(text("Hello"))
	assert.True(t, added)

	_, added = d.Add(text("World"))
	assert.True(t, added)

	again, added := d.Add(text("Hello"))
	assert.False(t, added)
	assert.Equal(t, first, again)

	assert.Equal(t, 2, d.Map().Len())
	assert.Equal(t, 1, d.Duplicates())
	assert.Equal(t, []string{first, h.Sum(text("World"))}, d.Map().Keys())
}

func TestContentKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, digest.ContentKey([]byte("a")), digest.ContentKey([]byte("a")))
	assert.NotEqual(t, digest.ContentKey([]byte("a")), digest.ContentKey([]byte("b")))
	assert.Len(t, digest.ContentKey(nil), 64)
}
