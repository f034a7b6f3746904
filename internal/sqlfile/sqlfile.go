// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlfile loads the SQL text a run submits.
package sqlfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "dunequery/cli/internal/errors"
)

var (
	// ErrNotFound is returned when the SQL file does not exist.
	ErrNotFound = errors.New("sql file not found")
	// ErrEmpty is returned when the SQL file holds only whitespace.
	ErrEmpty = errors.New("sql file is empty")
)

// HasSQLExtension reports whether path ends in .sql, case-insensitively.
func HasSQLExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

// Load reads the SQL file at path. The content is returned unmodified; a file
// that is missing or blank yields a configuration error and an empty string.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.Wrap(apperrors.KindConfiguration, fmt.Sprintf("SQL file '%s' not found", path), ErrNotFound)
		}
		return "", apperrors.Wrap(apperrors.KindConfiguration, fmt.Sprintf("read SQL file '%s'", path), err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", apperrors.Wrap(apperrors.KindConfiguration, fmt.Sprintf("SQL file '%s' is empty", path), ErrEmpty)
	}
	return string(data), nil
}
