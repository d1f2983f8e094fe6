// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, access tokens and the request principal.

# Passwords

Passwords are hashed with bcrypt. Input is cut at 72 bytes, the most bcrypt
reads:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

# Access Tokens

Tokens are HS256 JWTs carrying the username as "sub" plus the role and user id:

	issuer := auth.NewTokenIssuer(secret, 30*time.Minute)
	token, err := issuer.Issue(auth.Principal{ID: 1, Subject: "admin", Role: "admin"})
	p, err := issuer.Verify("Bearer " + token)

Verify rejects tokens that are not three dot-separated segments, are signed
with any other algorithm, have expired, or carry no subject.

# Principal

Middleware attaches the verified caller to the request context. Resolvers gate
on it:

	p, err := auth.RequireAuth(ctx)   // UNAUTHENTICATED when missing
	p, err := auth.RequireAdmin(ctx)  // FORBIDDEN for non-admins
*/
package auth
