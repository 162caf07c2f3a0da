// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by [IdentityFromEnv].
const (
	appIDEnv  = "GH_APP_ID"
	appKeyEnv = "GH_APP_KEY"
)

// Identity is the long-lived identity of a GitHub app, a numeric app id
// and its RSA signing key. It is supplied by the operator, immutable for
// the process lifetime and never persisted by this module.
//
// Build it explicitly from key material via [ParseKey], or at the process
// boundary via [IdentityFromEnv]. Nothing else in this module reads
// process environment.
type Identity struct {
	// AppID is the numeric GitHub app id.
	AppID uint64

	// Key is the app's private key. Only RSA keys of at least 2048 bits
	// are supported, as required by GitHub app authentication.
	Key crypto.Signer
}

// validate checks the identity is complete and the key is usable for
// assertion signing. All problems wrap [ErrConfiguration].
func (id Identity) validate() error {
	var err error
	if id.AppID == 0 {
		err = errors.Join(err, errors.New("app id cannot be zero"))
	}

	if id.Key == nil {
		err = errors.Join(err, errors.New("no signing key provided"))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	switch v := id.Key.Public().(type) {
	case *rsa.PublicKey:
		if v.N.BitLen() < 2048 {
			return fmt.Errorf("%w: rsa key size(%d) < 2048 bits", ErrConfiguration, v.N.BitLen())
		}
	case *ecdsa.PublicKey:
		return fmt.Errorf("%w: ECDSA keys are not supported", ErrConfiguration)
	case *ed25519.PublicKey, ed25519.PublicKey:
		return fmt.Errorf("%w: ED25519 keys are not supported", ErrConfiguration)
	default:
		return fmt.Errorf("%w: unknown key type: %T", ErrConfiguration, v)
	}
	return nil
}

// ParseKey parses a PEM encoded RSA private key in PKCS#1 ("RSA PRIVATE
// KEY", the format GitHub serves app keys in) or PKCS#8 ("PRIVATE KEY")
// form. Keys of other types fail with [ErrConfiguration].
func ParseKey(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: key is not PEM encoded", ErrConfiguration)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse private key: %w", ErrConfiguration, err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type: %T", ErrConfiguration, key)
	}
	return rsaKey, nil
}

// IdentityFromEnv builds an [Identity] from the GH_APP_ID and GH_APP_KEY
// environment variables. GH_APP_KEY may hold literal PEM key material or a
// path to a PEM file. Absence of either variable is a configuration error,
// not a silent default.
//
// This is the only place in the module which reads environment state. Call
// it once at the process boundary and pass the identity down explicitly.
func IdentityFromEnv() (Identity, error) {
	var err error
	appid := os.Getenv(appIDEnv)
	if appid == "" {
		err = errors.Join(err, errors.New(appIDEnv+" is not set"))
	}

	key := os.Getenv(appKeyEnv)
	if key == "" {
		err = errors.Join(err, errors.New(appKeyEnv+" is not set"))
	}

	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	id, err := strconv.ParseUint(appid, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s is not a valid app id: %w", ErrConfiguration, appIDEnv, err)
	}

	// Key material is either literal PEM or a path to it.
	data := []byte(key)
	if !strings.Contains(key, "-----BEGIN") {
		data, err = os.ReadFile(key)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: failed to read key file: %w", ErrConfiguration, err)
		}
	}

	signer, err := ParseKey(data)
	if err != nil {
		return Identity{}, err
	}

	return Identity{AppID: id, Key: signer}, nil
}
