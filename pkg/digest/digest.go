// Package digest computes content hashes of TextRecords and deduplicates
// them into a LocalizationMap.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/blendin/extractor/pkg/domain"
)

// Algorithm names a supported digest.
type Algorithm string

const (
	// Keccak512 is Keccak-512 with the original padding, as crypto-js SHA3
	// computes it. Existing artifacts are keyed with it.
	Keccak512 Algorithm = "keccak-512"
	SHA3_256  Algorithm = "sha3-256"
	SHA3_512  Algorithm = "sha3-512"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = Keccak512

var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

var constructors = map[Algorithm]func() hash.Hash{
	Keccak512: sha3.NewLegacyKeccak512,
	SHA3_256:  sha3.New256,
	SHA3_512:  sha3.New512,
}

// Algorithms lists the supported algorithm names.
func Algorithms() []Algorithm {
	return []Algorithm{Keccak512, SHA3_256, SHA3_512}
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
// An empty name selects DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return DefaultAlgorithm, nil
	}
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := constructors[alg]; !ok {
		return "", unknownAlgorithm(name)
	}
	return alg, nil
}

func unknownAlgorithm(name string) error {
	names := make([]string, 0, len(constructors))
	for _, alg := range Algorithms() {
		names = append(names, string(alg))
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnknownAlgorithm, name, strings.Join(names, ", "))
}

// Hasher renders record digests as lowercase hex.
type Hasher struct {
	alg     Algorithm
	newHash func() hash.Hash
}

// New returns a Hasher for alg.
func New(alg Algorithm) (*Hasher, error) {
	if alg == "" {
		alg = DefaultAlgorithm
	}
	ctor, ok := constructors[alg]
	if !ok {
		return nil, unknownAlgorithm(string(alg))
	}
	return &Hasher{alg: alg, newHash: ctor}, nil
}

// Algorithm returns the hasher's algorithm.
func (h *Hasher) Algorithm() Algorithm {
	return h.alg
}

// Sum returns the digest of the record's canonical JSON.
func (h *Hasher) Sum(record domain.TextRecord) string {
	return h.SumBytes(record.AppendJSON(nil))
}

// SumBytes returns the digest of b.
func (h *Hasher) SumBytes(b []byte) string {
	d := h.newHash()
	d.Write(b)
	return hex.EncodeToString(d.Sum(nil))
}

// ContentKey returns a short content digest used as a cache key for file bytes.
func ContentKey(b []byte) string {
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
