package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Default argon2id cost, matching the reference argon2 bindings.
const (
	DefaultArgonTime       uint32 = 3
	DefaultArgonMemory     uint32 = 64 * 1024 // KiB
	DefaultArgonThreads    uint8  = 4
	DefaultArgonSaltLength uint32 = 16
	DefaultArgonKeyLength  uint32 = 32

	minSaltLength = 8
	minKeyLength  = 4
)

// Argon2Params holds the cost parameters applied when hashing.
type Argon2Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

// DefaultArgon2Params returns the library-default cost.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:       DefaultArgonTime,
		Memory:     DefaultArgonMemory,
		Threads:    DefaultArgonThreads,
		SaltLength: DefaultArgonSaltLength,
		KeyLength:  DefaultArgonKeyLength,
	}
}

// PasswordHasher hashes and verifies passwords as PHC-encoded argon2id strings.
// It holds no mutable state and is safe for concurrent use.
type PasswordHasher struct {
	params Argon2Params
	rand   io.Reader
}

// NewPasswordHasher builds a hasher; zero fields fall back to the defaults.
func NewPasswordHasher(params Argon2Params) *PasswordHasher {
	def := DefaultArgon2Params()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}
	if params.SaltLength < minSaltLength {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength < minKeyLength {
		params.KeyLength = def.KeyLength
	}
	return &PasswordHasher{params: params, rand: rand.Reader}
}

var defaultHasher = NewPasswordHasher(DefaultArgon2Params())

// HashPassword hashes password with the default argon2id cost.
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// CheckPasswordHash reports whether password matches hash. It never returns an error:
// empty passwords, malformed hashes and primitive failures all yield false.
func CheckPasswordHash(password, hash string) bool {
	return defaultHasher.Verify(password, hash)
}

// Hash returns a salted PHC string: $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingFailure, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks password against an encoded hash using the parameters stored in it.
func (h *PasswordHasher) Verify(password, encoded string) (ok bool) {
	if password == "" {
		return false
	}

	phc, err := parsePHC(encoded)
	if err != nil {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	var computed []byte
	switch phc.variant {
	case "argon2id":
		computed = argon2.IDKey([]byte(password), phc.salt, phc.time, phc.memory, phc.threads, uint32(len(phc.key)))
	case "argon2i":
		computed = argon2.Key([]byte(password), phc.salt, phc.time, phc.memory, phc.threads, uint32(len(phc.key)))
	default:
		return false
	}
	return subtle.ConstantTimeCompare(computed, phc.key) == 1
}

type phcHash struct {
	variant string
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parsePHC(encoded string) (*phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("phc: invalid format")
	}

	phc := &phcHash{variant: parts[1]}
	if phc.variant != "argon2id" && phc.variant != "argon2i" {
		return nil, fmt.Errorf("phc: unsupported algorithm %q", phc.variant)
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") || version != argon2.Version {
		return nil, fmt.Errorf("phc: unsupported version %q", parts[2])
	}

	if err := phc.parseParams(parts[3]); err != nil {
		return nil, err
	}

	if phc.salt, err = decodePHCBase64(parts[4]); err != nil || len(phc.salt) < minSaltLength {
		return nil, fmt.Errorf("phc: invalid salt")
	}
	if phc.key, err = decodePHCBase64(parts[5]); err != nil || len(phc.key) < minKeyLength {
		return nil, fmt.Errorf("phc: invalid hash")
	}
	return phc, nil
}

func (p *phcHash) parseParams(part string) error {
	var seen int
	for _, pair := range strings.Split(part, ",") {
		name, raw, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("phc: invalid parameter %q", pair)
		}
		switch name {
		case "m":
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || v == 0 {
				return fmt.Errorf("phc: invalid memory %q", raw)
			}
			p.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || v == 0 {
				return fmt.Errorf("phc: invalid time %q", raw)
			}
			p.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(raw, 10, 8)
			if err != nil || v == 0 {
				return fmt.Errorf("phc: invalid parallelism %q", raw)
			}
			p.threads = uint8(v)
		default:
			return fmt.Errorf("phc: unsupported parameter %q", name)
		}
		seen++
	}
	if seen != 3 || p.memory == 0 || p.time == 0 || p.threads == 0 {
		return fmt.Errorf("phc: missing parameters")
	}
	return nil
}

// decodePHCBase64 accepts both unpadded (canonical PHC) and padded encodings.
func decodePHCBase64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
