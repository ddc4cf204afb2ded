// Package cryptox hashes and verifies account passwords.
//
// Two algorithms are supported. New credentials use bcrypt; scrypt is kept
// so that accounts created with it can still log in.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"

	"github.com/dmitrijs2005/ideaboard/internal/common"
)

// Algorithm tags as stored in users.password_algo.
const (
	AlgoBcrypt = "bcrypt"
	AlgoScrypt = "scrypt"
)

// DefaultBcryptCost is the work factor for new bcrypt hashes.
const DefaultBcryptCost = 10

// scrypt parameters. Changing them invalidates every stored scrypt hash.
const (
	scryptN       = 16384
	scryptR       = 8
	scryptP       = 1
	scryptKeyLen  = 32
	scryptSaltLen = 16
)

// bcryptSaltLen is the "$2a$10$" prefix plus the 22-character encoded salt.
const bcryptSaltLen = 29

// BcryptMaxPasswordLen is the number of password bytes bcrypt consumes.
// Longer passwords are cut to it, so every byte past it is ignored.
const BcryptMaxPasswordLen = 72

func bcryptInput(password []byte) []byte {
	if len(password) > BcryptMaxPasswordLen {
		return password[:BcryptMaxPasswordLen]
	}
	return password
}

var ErrUnknownAlgorithm = errors.New("unknown password algorithm")

// Credentials is what gets stored for a password.
type Credentials struct {
	Algo string
	Salt string
	Hash string
}

type Hasher interface {
	Algorithm() string
	Hash(password []byte) (Credentials, error)
	// Verify reports whether password matches. A malformed stored value
	// is an error, never a match.
	Verify(password []byte, salt, hash string) (bool, error)
}

type BcryptHasher struct {
	Cost int
}

func (BcryptHasher) Algorithm() string { return AlgoBcrypt }

func (h BcryptHasher) Hash(password []byte) (Credentials, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return Credentials{}, fmt.Errorf("bcrypt: %w", err)
	}
	s := string(hash)
	return Credentials{Algo: AlgoBcrypt, Salt: s[:bcryptSaltLen], Hash: s}, nil
}

// Verify ignores salt: bcrypt hashes carry their own.
func (BcryptHasher) Verify(password []byte, _ string, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(hash)), bcryptInput(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}

type ScryptHasher struct{}

func (ScryptHasher) Algorithm() string { return AlgoScrypt }

func (h ScryptHasher) Hash(password []byte) (Credentials, error) {
	salt, err := common.MakeRandHexString(scryptSaltLen)
	if err != nil {
		return Credentials{}, fmt.Errorf("scrypt salt: %w", err)
	}
	hash, err := scryptHex(password, salt)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Algo: AlgoScrypt, Salt: salt, Hash: hash}, nil
}

// Verify recomputes the hash with the stored hex salt and compares the
// lowercase hex encodings in constant time.
func (ScryptHasher) Verify(password []byte, salt, hash string) (bool, error) {
	candidate, err := scryptHex(password, strings.TrimSpace(salt))
	if err != nil {
		return false, err
	}
	stored := strings.ToLower(strings.TrimSpace(hash))
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1, nil
}

func scryptHex(password []byte, saltHex string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("scrypt salt: %w", err)
	}
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// Registry dispatches verification by the stored algorithm tag.
type Registry struct {
	Default Hasher
	hashers map[string]Hasher
}

// NewRegistry returns a registry hashing new passwords with def and able to
// verify every given hasher's algorithm (def included).
func NewRegistry(def Hasher, others ...Hasher) *Registry {
	r := &Registry{Default: def, hashers: map[string]Hasher{def.Algorithm(): def}}
	for _, h := range others {
		r.hashers[h.Algorithm()] = h
	}
	return r
}

// DefaultRegistry hashes with bcrypt and verifies bcrypt and scrypt.
func DefaultRegistry() *Registry {
	return NewRegistry(BcryptHasher{Cost: DefaultBcryptCost}, ScryptHasher{})
}

func (r *Registry) Hash(password []byte) (Credentials, error) {
	return r.Default.Hash(password)
}

// Verify fails closed with ErrUnknownAlgorithm for a missing or unknown tag.
// The tag is matched case-insensitively.
func (r *Registry) Verify(algo string, password []byte, salt, hash string) (bool, error) {
	h, ok := r.hashers[strings.ToLower(strings.TrimSpace(algo))]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	return h.Verify(password, salt, hash)
}
