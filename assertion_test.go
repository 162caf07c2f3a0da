// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package ghapp

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nortide/ghapp/internal/testkeys"
)

var (
	_ contextSigner = (*ctxSigner)(nil)
	_ crypto.Signer = (*ctxSigner)(nil)
	_ crypto.Signer = (*errSigner)(nil)
)

// errSigner always returns [os.ErrNotExist] on Sign.
type errSigner struct {
	signer crypto.Signer
}

func (s *errSigner) Sign(_ io.Reader, _ []byte, _ crypto.SignerOpts) ([]byte, error) {
	return nil, fmt.Errorf("errSigner always returns error: %w", os.ErrNotExist)
}

func (s *errSigner) Public() crypto.PublicKey {
	return s.signer.Public()
}

// ctxSigner panics when calling Sign, as it supports SignContext.
type ctxSigner struct {
	signer crypto.Signer
}

func (s *ctxSigner) SignContext(ctx context.Context, rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if cc := context.Cause(ctx); cc != nil {
		return nil, cc
	}
	return s.signer.Sign(rand, digest, opts)
}

func (s *ctxSigner) Sign(_ io.Reader, _ []byte, _ crypto.SignerOpts) ([]byte, error) {
	panic(fmt.Sprintf("%T supports SignContext, Sign should not be called", s))
}

func (s *ctxSigner) Public() crypto.PublicKey {
	return s.signer.Public()
}

func TestNewAssertion(t *testing.T) {
	type testCase struct {
		name   string
		ok     bool
		expect error
		appid  uint64
		ctx    context.Context
		signer crypto.Signer
	}

	tt := []testCase{
		{
			name:   "no-key",
			appid:  99,
			expect: ErrConfiguration,
		},
		{
			name:   "ecdsa-key",
			signer: testkeys.ECP256(),
			appid:  99,
			expect: ErrConfiguration,
		},
		{
			name:   "ed25519-key",
			signer: testkeys.ED25519(),
			appid:  99,
			expect: ErrConfiguration,
		},
		{
			name:   "rsa-key-1024",
			signer: testkeys.RSA1024(),
			appid:  99,
			expect: ErrConfiguration,
		},
		{
			name:   "invalid-app-id",
			signer: testkeys.RSA2048(),
			expect: ErrConfiguration,
		},
		{
			name:   "signer-error",
			ctx:    context.Background(),
			signer: &errSigner{signer: testkeys.RSA2048()},
			appid:  99,
			expect: ErrSigning,
		},
		{
			name: "ctx-signer-ctx-cancelled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			signer: &ctxSigner{signer: testkeys.RSA2048()},
			appid:  99,
			expect: ErrSigning,
		},
		{
			name: "ctx-signer-ctx-cancelled-with-cause",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancelCause(context.Background())
				cancel(os.ErrPermission)
				return ctx
			}(),
			signer: &ctxSigner{signer: testkeys.RSA2048()},
			appid:  99,
			expect: ErrSigning,
		},
		{
			name:   "rsa-key",
			signer: testkeys.RSA2048(),
			appid:  99,
			ok:     true,
		},
		{
			name:   "ctx-signer-rsa-key",
			signer: &ctxSigner{signer: testkeys.RSA2048()},
			appid:  99,
			ok:     true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assertion, err := NewAssertion(tc.ctx, Identity{AppID: tc.appid, Key: tc.signer})

			if tc.ok {
				if err != nil {
					t.Fatalf("failed to mint assertion: %s", err)
				}

				if !assertion.IsFresh() {
					t.Errorf("newly minted assertion should be fresh")
				}

				if assertion.AppID != tc.appid {
					t.Errorf("expected app id %d, got %d", tc.appid, assertion.AppID)
				}

				if assertion.Exp.Sub(assertion.IssuedAt) != 5*time.Minute {
					t.Errorf("expected exp = iat + 5m, got %s", assertion.Exp.Sub(assertion.IssuedAt))
				}

				pubKeyFunc := func(t *jwt.Token) (any, error) {
					return tc.signer.Public(), nil
				}

				parsed, err := jwt.Parse(assertion.Value, pubKeyFunc)
				if err != nil {
					t.Fatalf("failed to parse assertion: %s", err)
				}

				iss, err := parsed.Claims.GetIssuer()
				if err != nil {
					t.Fatalf("failed to get issuer: %s", err)
				}
				if iss != strconv.FormatUint(tc.appid, 10) {
					t.Errorf("expected issuer %d, got %s", tc.appid, iss)
				}

				exp, err := parsed.Claims.GetExpirationTime()
				if err != nil {
					t.Fatalf("failed to get exp claim: %s", err)
				}
				iat, err := parsed.Claims.GetIssuedAt()
				if err != nil {
					t.Fatalf("failed to get iat claim: %s", err)
				}
				if exp.Sub(iat.Time) != 5*time.Minute {
					t.Errorf("expected exp claim = iat claim + 300s, got %s", exp.Sub(iat.Time))
				}
			} else {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}

				if tc.expect != nil && !errors.Is(err, tc.expect) {
					t.Errorf("expected error to wrap %q, got %q", tc.expect, err)
				}

				if !reflect.DeepEqual(assertion, Assertion{}) {
					t.Errorf("must return zero value %T upon errors", assertion)
				}
			}
		})
	}
}

func TestMintAssertion(t *testing.T) {
	key := testkeys.RSA2048()
	ctx := context.Background()
	now := time.Now()

	t.Run("deterministic-for-identical-now", func(t *testing.T) {
		a1, err := mintAssertion(ctx, key, 99, now)
		if err != nil {
			t.Fatalf("failed to mint: %s", err)
		}
		a2, err := mintAssertion(ctx, key, 99, now)
		if err != nil {
			t.Fatalf("failed to mint: %s", err)
		}
		if a1.Value != a2.Value {
			t.Errorf("identical now must produce identical values")
		}
	})

	t.Run("distinct-for-distinct-now", func(t *testing.T) {
		a1, err := mintAssertion(ctx, key, 99, now)
		if err != nil {
			t.Fatalf("failed to mint: %s", err)
		}
		a2, err := mintAssertion(ctx, key, 99, now.Add(time.Second))
		if err != nil {
			t.Fatalf("failed to mint: %s", err)
		}
		if a1.Value == a2.Value {
			t.Errorf("distinct now must produce distinct values")
		}
	})

	t.Run("seconds-precision", func(t *testing.T) {
		a, err := mintAssertion(ctx, key, 99, now)
		if err != nil {
			t.Fatalf("failed to mint: %s", err)
		}
		if a.IssuedAt.Nanosecond() != 0 || a.Exp.Nanosecond() != 0 {
			t.Errorf("claims must carry seconds precision: iat=%s exp=%s", a.IssuedAt, a.Exp)
		}
	})
}

func TestAssertion(t *testing.T) {
	t.Run("slog-log-valuer", func(t *testing.T) {
		now := time.Now().Truncate(time.Second)
		assertion := Assertion{
			Value:    "assertion",
			AppID:    99,
			IssuedAt: now,
			Exp:      now.Add(5 * time.Minute),
		}
		v := assertion.LogValue()
		for _, item := range v.Group() {
			if item.Key == "value" {
				if item.Value.Kind() != slog.KindString {
					t.Errorf("value should be of string kind: %s", item.Value.Kind())
				}
				if item.Value.String() == "assertion" {
					t.Errorf("value should be redacted: %s", item.Value.String())
				}
			}
		}
	})
	t.Run("empty-value", func(t *testing.T) {
		assertion := Assertion{}
		if assertion.IsFresh() {
			t.Errorf("empty assertion should not be fresh")
		}
	})
	t.Run("not-yet-valid", func(t *testing.T) {
		now := time.Now().Truncate(time.Second)
		assertion := Assertion{
			Value:    "assertion",
			IssuedAt: now.Add(time.Minute),
			Exp:      now.Add(6 * time.Minute),
		}
		if assertion.IsFresh() {
			t.Errorf("assertion issued in the future should not be fresh")
		}
	})
	t.Run("expired", func(t *testing.T) {
		now := time.Now().Truncate(time.Second)
		assertion := Assertion{
			Value:    "assertion",
			IssuedAt: now.Add(-6 * time.Minute),
			Exp:      now.Add(-time.Minute),
		}
		if assertion.IsFresh() {
			t.Errorf("expired assertion should not be fresh")
		}
	})
	t.Run("within-window", func(t *testing.T) {
		now := time.Now().Truncate(time.Second)
		assertion := Assertion{
			Value:    "assertion",
			IssuedAt: now.Add(-time.Minute),
			Exp:      now.Add(4 * time.Minute),
		}
		if !assertion.IsFresh() {
			t.Errorf("assertion within its window should be fresh")
		}
	})
}

func BenchmarkMintAssertion(b *testing.B) {
	key := testkeys.RSA2048()
	ctx := context.Background()
	var v Assertion
	var err error

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err = mintAssertion(ctx, key, 99, time.Now())
	}
	_ = v
	_ = err
}
