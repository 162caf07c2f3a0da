// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

// Package testkeys generates ephemeral test keys.
//
// Keys are generated on first use and are unique per execution of the
// test binary.
//
// DO NOT USE THESE KEYS OUTSIDE OF UNIT TESTING.
package testkeys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"sync"
)

// RSA1024 returns an ephemeral RSA-1024 key. Used to verify that
// undersized keys are rejected.
var RSA1024 = sync.OnceValue(func() *rsa.PrivateKey {
	//nolint:gosec // intentionally undersized.
	key, _ := rsa.GenerateKey(rand.Reader, 1024)
	return key
})

// RSA2048 returns an ephemeral RSA-2048 key.
var RSA2048 = sync.OnceValue(func() *rsa.PrivateKey {
	key, _ := rsa.GenerateKey(rand.Reader, 2048)
	return key
})

// ECP256 returns an ephemeral ECDSA-P256 key.
var ECP256 = sync.OnceValue(func() *ecdsa.PrivateKey {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	return key
})

// ED25519 returns an ephemeral ED25519 key.
var ED25519 = sync.OnceValue(func() ed25519.PrivateKey {
	_, key, _ := ed25519.GenerateKey(rand.Reader)
	return key
})
