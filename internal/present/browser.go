// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package present

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/query"
)

//go:embed result_template.html
var resultTemplateText string

var resultTemplate = template.Must(template.New("result").Parse(resultTemplateText))

// ReportPrefix starts the name of every generated report file.
const ReportPrefix = "result-"

// Browser writes the table to an HTML report and opens it in the browser.
type Browser struct {
	Dir         string
	RunID       string
	ExecutionID string
	Title       string
	Out         io.Writer
	Open        func(url string) error

	now func() time.Time
}

type reportData struct {
	Title       string
	RowCount    int
	ExecutionID string
	GeneratedAt string
	Columns     []string
	Rows        [][]string
}

func (b *Browser) Present(ctx context.Context, table *query.Table) error {
	path, err := b.WriteReport(table)
	if err != nil {
		return err
	}
	url := fileURL(path)

	if b.Out != nil {
		fmt.Fprintf(b.Out, "Report written to %s\n", path)
	}
	if b.Open == nil {
		return nil
	}
	if err := b.Open(url); err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "open browser (report kept at "+path+")", err)
	}
	return nil
}

// WriteReport renders table into a new file in Dir and returns its absolute path.
func (b *Browser) WriteReport(table *query.Table) (string, error) {
	dir := b.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", apperrors.Wrap(apperrors.KindPresent, "create reports dir", err)
	}

	pattern := ReportPrefix + "*.html"
	if b.RunID != "" {
		pattern = ReportPrefix + b.RunID + "-*.html"
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindPresent, "create report", err)
	}

	title := b.Title
	if title == "" {
		title = "Query result"
	}
	now := time.Now
	if b.now != nil {
		now = b.now
	}
	data := reportData{
		Title:       title,
		RowCount:    table.Len(),
		ExecutionID: b.ExecutionID,
		GeneratedAt: now().Format(time.RFC3339),
		Columns:     table.Columns,
		Rows:        table.Rows,
	}
	if err := resultTemplate.Execute(f, data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", apperrors.Wrap(apperrors.KindPresent, "render report", err)
	}
	if err := f.Close(); err != nil {
		return "", apperrors.Wrap(apperrors.KindPresent, "write report", err)
	}

	abs, err := filepath.Abs(f.Name())
	if err != nil {
		return f.Name(), nil
	}
	return abs, nil
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if len(p) > 0 && p[0] != '/' {
		p = "/" + p // windows drive letter
	}
	return "file://" + p
}
