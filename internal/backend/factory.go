// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"time"
)

// Options configures the HTTP implementation.
type Options struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	// Performance selects the engine tier for Execute ("medium" or "large").
	Performance string
	UserAgent   string
	// Client overrides the underlying HTTP client (tests).
	Client *http.Client
}

// New creates a backend API implementation talking to the Dune REST API.
func New(opts Options) API {
	return newHTTP(opts)
}
