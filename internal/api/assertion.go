// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package api

// AssertionHeader is the JOSE header of an app assertion. GitHub apps only
// accept RS256 signed assertions, so the header never varies.
type AssertionHeader struct {
	Type string `json:"typ"`
	Alg  string `json:"alg"`
}

// AssertionClaims is the claim set of an app assertion. GitHub rejects
// timestamps which are not integers, and requires no audience or subject.
type AssertionClaims struct {
	Issuer   string `json:"iss"`
	IssuedAt int64  `json:"iat"`
	Exp      int64  `json:"exp"`
}

// EncodedAssertionHeader is the pre-encoded [AssertionHeader] with
// alg=RS256 and typ=JWT.
const EncodedAssertionHeader = "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9"
