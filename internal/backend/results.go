// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// nextURIHeader points at the next page of a paginated CSV result.
const nextURIHeader = "x-dune-next-uri"

// maxResultPages stops runaway pagination.
const maxResultPages = 10000

// ResultsCSV calls GET /api/v1/execution/{id}/results/csv and follows
// x-dune-next-uri until the last page. Later pages repeat the header row, which
// is dropped so the caller receives a single CSV document.
func (h *HTTP) ResultsCSV(ctx context.Context, executionID string) ([]byte, error) {
	next := h.executionURL(h.endpoints.Results, executionID)
	seen := map[string]struct{}{}

	var out bytes.Buffer
	for page := 0; next != ""; page++ {
		if page >= maxResultPages {
			return nil, fmt.Errorf("results exceed %d pages", maxResultPages)
		}
		if _, dup := seen[next]; dup {
			return nil, fmt.Errorf("pagination loop at %s", next)
		}
		seen[next] = struct{}{}

		body, nextURI, err := h.resultPage(ctx, next)
		if err != nil {
			return nil, err
		}
		if page > 0 {
			body, err = dropHeader(body)
			if err != nil {
				return nil, fmt.Errorf("results page %d: %w", page+1, err)
			}
			if out.Len() > 0 && !bytes.HasSuffix(out.Bytes(), []byte("\n")) && len(body) > 0 {
				out.WriteByte('\n')
			}
		}
		out.Write(body)

		next, err = h.resolve(nextURI)
		if err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

// resultPage downloads one page and returns its body and the raw next-page URI.
// The page fails only if the server goes quiet for longer than h.timeout.
func (h *HTTP) resultPage(ctx context.Context, pageURL string) ([]byte, string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	idle := time.AfterFunc(h.timeout, cancel)
	defer idle.Stop()

	req, err := h.newRequest(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "text/csv")
	resp, err := h.do(req, "results")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(&idleReader{r: resp.Body, timer: idle, idle: h.timeout})
	if err != nil {
		if ctx.Err() != nil && !idle.Stop() {
			return nil, "", fmt.Errorf("read results: no data for %s: %w", h.timeout, err)
		}
		return nil, "", fmt.Errorf("read results: %w", err)
	}
	return body, strings.TrimSpace(resp.Header.Get(nextURIHeader)), nil
}

// idleReader pushes the idle deadline back whenever data arrives.
type idleReader struct {
	r     io.Reader
	timer *time.Timer
	idle  time.Duration
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.timer.Reset(r.idle)
	}
	return n, err
}

// resolve turns a possibly relative next-page URI into an absolute URL.
func (h *HTTP) resolve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	base, err := url.Parse(h.baseURL + "/")
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", nextURIHeader, ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

// dropHeader removes the first CSV record, honouring quoted newlines.
func dropHeader(page []byte) ([]byte, error) {
	if len(page) == 0 {
		return page, nil
	}
	r := csv.NewReader(bytes.NewReader(page))
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return page[r.InputOffset():], nil
}
