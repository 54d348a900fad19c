// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

// Package auth provides credential derivation and verification for
// web-adventure identities.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 parameters.
const (
	pbkdf2Iterations = 100_000
	saltLen          = 32 // salt length in bytes
	keyLen           = 32 // derived key length in bytes
)

// ErrEmptyPassword is returned when attempting to derive an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// dummyCredential is a syntactically valid credential that no password
// derives to. Verifying against it costs a full derivation, so rejecting an
// unknown identity takes the same time as rejecting a wrong password.
var dummyCredential = strings.Repeat("0", keyLen*2) + "," + strings.Repeat("0", saltLen*2)

// Hasher derives and verifies salted password credentials.
type Hasher interface {
	// Derive produces a fresh-salt credential for the password.
	Derive(password string) (string, error)

	// Verify checks the password against a stored credential.
	Verify(password, credential string) bool

	// VerifyDummy performs a full-cost verification against a fixed dummy
	// credential and always reports false. Callers use it when the identity
	// does not exist, so timing cannot leak identity existence.
	VerifyDummy(password string) bool
}

// PBKDF2Hasher implements Hasher using PBKDF2-HMAC-SHA256.
type PBKDF2Hasher struct{}

// NewPBKDF2Hasher creates a new PBKDF2Hasher.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{}
}

// Derive generates a fresh random salt and derives a credential encoded as
// "<hexKey>,<hexSalt>", the format the session record's pwd field carries.
func (h *PBKDF2Hasher) Derive(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLen, sha256.New)
	return hex.EncodeToString(key) + "," + hex.EncodeToString(salt), nil
}

// Verify recomputes the derivation with the stored salt and compares the
// result to the stored key in constant time. A credential that does not
// parse verifies false.
func (h *PBKDF2Hasher) Verify(password, credential string) bool {
	keyHex, saltHex, ok := strings.Cut(credential, ",")
	if !ok {
		return false
	}
	storedKey, err := hex.DecodeString(keyHex)
	if err != nil || len(storedKey) == 0 {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(storedKey), sha256.New)
	return subtle.ConstantTimeCompare(computed, storedKey) == 1
}

// VerifyDummy implements Hasher.
func (h *PBKDF2Hasher) VerifyDummy(password string) bool {
	h.Verify(password, dummyCredential)
	return false
}
