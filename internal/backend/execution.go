// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Execute calls POST /api/v1/sql/execute with the SQL text and performance tier.
// The returned Execution.ID is the handle used by Status, ResultsCSV and Cancel.
func (h *HTTP) Execute(ctx context.Context, sql string) (Execution, error) {
	body := map[string]string{"sql": sql}
	if h.performance != "" {
		body["performance"] = h.performance
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Execution{}, err
	}

	ctx, cancel := h.callContext(ctx)
	defer cancel()
	req, err := h.newRequest(ctx, http.MethodPost, h.baseURL+h.endpoints.Execute, bytes.NewReader(b))
	if err != nil {
		return Execution{}, err
	}
	resp, err := h.do(req, "execute")
	if err != nil {
		return Execution{}, err
	}
	defer resp.Body.Close()

	var out Execution
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Execution{}, fmt.Errorf("decode execute response: %w", err)
	}
	if out.ID == "" {
		return Execution{}, errors.New("execute response has no execution_id")
	}
	return out, nil
}

// Status calls GET /api/v1/execution/{id}/status.
func (h *HTTP) Status(ctx context.Context, executionID string) (Status, error) {
	ctx, cancel := h.callContext(ctx)
	defer cancel()
	req, err := h.newRequest(ctx, http.MethodGet, h.executionURL(h.endpoints.Status, executionID), nil)
	if err != nil {
		return Status{}, err
	}
	resp, err := h.do(req, "status")
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()

	var out Status
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Status{}, fmt.Errorf("decode status response: %w", err)
	}
	if out.State == "" {
		return Status{}, errors.New("status response has no state")
	}
	return out, nil
}

// Cancel calls POST /api/v1/execution/{id}/cancel.
func (h *HTTP) Cancel(ctx context.Context, executionID string) error {
	ctx, cancel := h.callContext(ctx)
	defer cancel()
	req, err := h.newRequest(ctx, http.MethodPost, h.executionURL(h.endpoints.Cancel, executionID), nil)
	if err != nil {
		return err
	}
	resp, err := h.do(req, "cancel")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode cancel response: %w", err)
	}
	if !out.Success {
		return errors.New("cancel was not accepted")
	}
	return nil
}

// executionURL fills an execution path template with the escaped id.
func (h *HTTP) executionURL(pathTemplate, executionID string) string {
	return h.baseURL + fmt.Sprintf(pathTemplate, url.PathEscape(executionID))
}
