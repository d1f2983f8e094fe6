// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package validate gates mutation and credential inputs before they reach the
// store. Every violated field is reported, in declaration order, in a single
// apperr validation error:
//
//	Validation error: name: must not be empty, climate: must be at most 50 characters
package validate
