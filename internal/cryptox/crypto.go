// Package cryptox verifies repository passphrases against the magic
// value the server hands out with an encrypted repo's download info.
package cryptox

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	PwdHashPBKDF2 = "pbkdf2_sha256"
	PwdHashArgon2 = "argon2id"
)

const (
	v1Iterations     = 1 << 19
	pbkdf2Iterations = 1000
	keyLen           = 32
	v1KeyLen         = 16
)

// Upper bounds on caller-supplied password hash parameters.
const (
	maxPBKDF2Iterations = 1_000_000
	maxArgon2Time       = 16
	maxArgon2MemoryKiB  = 1 << 21
	maxArgon2Threads    = 16
)

// v2 repos predate per-repo salts and share this one.
var staticSalt = []byte{0xda, 0x90, 0x45, 0xc3, 0x06, 0xc7, 0xcc, 0x26}

var (
	ErrUnsupportedVersion = errors.New("unsupported encryption version")
	ErrInvalidSalt        = errors.New("invalid repo salt")
	ErrInvalidHashParams  = errors.New("invalid password hash params")
	ErrPasswordMismatch   = errors.New("incorrect password")
)

// PwdHash describes an explicit password hash replacing the magic scheme.
// A zero value means the repo uses the magic derived from enc_version.
type PwdHash struct {
	Algo   string
	Params string
}

// DeriveKey derives the repository key for encVersion from repoID+passwd.
// repoSalt is the hex encoded per-repo salt required from version 3.
func DeriveKey(encVersion int, repoID, passwd, repoSalt string) ([]byte, error) {
	input := []byte(repoID + passwd)
	switch encVersion {
	case 1:
		return bytesToKeySHA1(input, v1Iterations, v1KeyLen), nil
	case 2:
		return pbkdf2.Key(input, staticSalt, pbkdf2Iterations, keyLen, sha256.New), nil
	case 3, 4:
		salt, err := decodeSalt(repoSalt)
		if err != nil {
			return nil, err
		}
		return pbkdf2.Key(input, salt, pbkdf2Iterations, keyLen, sha256.New), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, encVersion)
}

// Magic returns the hex magic for the given passphrase.
func Magic(encVersion int, repoID, passwd, repoSalt string) (string, error) {
	key, err := DeriveKey(encVersion, repoID, passwd, repoSalt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// HashPassword computes the hex password hash for repos created with an
// explicit pwd_hash_algo.
func HashPassword(h PwdHash, repoID, passwd, repoSalt string) (string, error) {
	salt, err := decodeSalt(repoSalt)
	if err != nil {
		return "", err
	}
	input := []byte(repoID + passwd)

	switch h.Algo {
	case PwdHashPBKDF2:
		iter, err := strconv.Atoi(strings.TrimSpace(h.Params))
		if err != nil || iter <= 0 || iter > maxPBKDF2Iterations {
			return "", fmt.Errorf("%w: %q", ErrInvalidHashParams, h.Params)
		}
		return hex.EncodeToString(pbkdf2.Key(input, salt, iter, keyLen, sha256.New)), nil
	case PwdHashArgon2:
		t, m, p, err := parseArgon2Params(h.Params)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(argon2.IDKey(input, salt, t, m, p, keyLen)), nil
	}
	return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidHashParams, h.Algo)
}

// VerifyRepoPasswd checks passwd against magic. With a non-zero h the
// magic is compared to the password hash instead.
func VerifyRepoPasswd(repoID, passwd, magic string, encVersion int, repoSalt string, h PwdHash) error {
	var (
		want string
		err  error
	)
	if h.Algo != "" {
		want, err = HashPassword(h, repoID, passwd, repoSalt)
	} else {
		want, err = Magic(encVersion, repoID, passwd, repoSalt)
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(magic))) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func decodeSalt(s string) ([]byte, error) {
	salt, err := hex.DecodeString(s)
	if err != nil || len(salt) != 32 {
		return nil, fmt.Errorf("%w: want 64 hex characters", ErrInvalidSalt)
	}
	return salt, nil
}

func parseArgon2Params(s string) (t, m uint32, p uint8, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidHashParams, s)
	}
	var vals [3]uint64
	for i, part := range parts {
		vals[i], err = strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || vals[i] == 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidHashParams, s)
		}
	}
	if vals[0] > maxArgon2Time || vals[1] > maxArgon2MemoryKiB || vals[2] > maxArgon2Threads {
		return 0, 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidHashParams, s)
	}
	return uint32(vals[0]), uint32(vals[1]), uint8(vals[2]), nil
}

// bytesToKeySHA1 is OpenSSL's EVP_BytesToKey with SHA1 and no salt,
// truncated to n bytes.
func bytesToKeySHA1(data []byte, count, n int) []byte {
	var (
		out  []byte
		prev []byte
	)
	for len(out) < n {
		h := sha1.New()
		h.Write(prev)
		h.Write(data)
		d := h.Sum(nil)
		for i := 1; i < count; i++ {
			s := sha1.Sum(d)
			d = s[:]
		}
		out = append(out, d...)
		prev = d
	}
	return out[:n]
}
