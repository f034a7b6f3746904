// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly explanations for failures talking to the Dune API.
package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"dunequery/cli/internal/backend"

	"github.com/pterm/pterm"
)

// FormatNetworkError writes a troubleshooting hint for err to w when err is a
// transport problem (timeout, DNS, connection refused, TLS) or a 5xx from the
// API. It reports whether anything was written. Other API errors (bad key,
// rejected SQL) are left to the caller.
func FormatNetworkError(w io.Writer, err error, context string) bool {
	if err == nil {
		return false
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 {
			showServerError(w, context, apiErr.StatusCode)
			return true
		}
		return false
	}

	switch {
	case isTimeoutError(err):
		showTimeoutError(w, context)
	case isDNSError(err):
		showDNSError(w, context, hostOf(err))
	case isConnectionRefusedError(err):
		showConnectionRefusedError(w, context)
	case isSSLError(err):
		showSSLError(w, context)
	default:
		return false
	}
	return true
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func hostOf(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ExtractHostFromURL(urlErr.URL)
	}
	return "the API host"
}

func showTimeoutError(w io.Writer, context string) {
	fmt.Fprintf(w, "⏱️  Connection timeout while %s\n\n", context)
	pterm.Fprintln(w, "The API took too long to respond. This could mean:")
	pterm.Fprintln(w, "  • Slow internet connection")
	pterm.Fprintln(w, "  • The API is under heavy load")
	pterm.Fprintln(w, "  • DUNE_API_REQUEST_TIMEOUT is too low for your network")
	pterm.Fprintln(w)
}

func showDNSError(w io.Writer, context, host string) {
	fmt.Fprintf(w, "🌐 Cannot resolve server address while %s\n\n", context)
	fmt.Fprintf(w, "Unable to look up %s. Please check:\n", host)
	pterm.Fprintln(w, "  • Your internet connection is working")
	pterm.Fprintln(w, "  • DUNE_API_BASE_URL is spelled correctly")
	pterm.Fprintln(w, "  • No DNS-level blocking (corporate firewall, VPN)")
	pterm.Fprintln(w)
}

func showConnectionRefusedError(w io.Writer, context string) {
	fmt.Fprintf(w, "🚫 Connection refused while %s\n\n", context)
	pterm.Fprintln(w, "The server is not accepting connections. This could mean:")
	pterm.Fprintln(w, "  • DUNE_API_BASE_URL points at the wrong host or port")
	pterm.Fprintln(w, "  • A firewall is blocking the connection")
	pterm.Fprintln(w)
}

func showSSLError(w io.Writer, context string) {
	fmt.Fprintf(w, "🔒 Secure connection failed while %s\n\n", context)
	pterm.Fprintln(w, "Cannot establish a secure HTTPS connection. Try:")
	pterm.Fprintln(w, "  • Check your system date and time")
	pterm.Fprintln(w, "  • Verify network proxy settings")
	pterm.Fprintln(w)
}

func showServerError(w io.Writer, context string, status int) {
	fmt.Fprintf(w, "⚠️  Server error (%d) while %s\n\n", status, context)
	pterm.Fprintln(w, "The Dune API had an internal problem. This is not an issue with your SQL.")
	pterm.Fprintln(w, "  • Please try again in a few minutes")
	pterm.Fprintln(w)
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
