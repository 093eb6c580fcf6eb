// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when no account matches a login, so that an
// unknown username costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput("murmur-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic("sec: failed to build dummy hash: " + err.Error())
	}
	return hash
})

// bcryptInput digests a password to a fixed 44-byte string.
//
// bcrypt only accepts 72 bytes; the digest lets passwords of any length be
// hashed, and every byte of them counts.
func bcryptInput(plainTextPassword string) []byte {
	sum := sha256.Sum256([]byte(plainTextPassword))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword hashes a plain-text password using bcrypt with a fresh random salt.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword(bcryptInput(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version
// in constant time.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), bcryptInput(plainTextPassword))
	return err == nil
}

// BurnPasswordCheck performs a bcrypt comparison whose result is discarded.
func BurnPasswordCheck(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), bcryptInput(plainTextPassword))
}
