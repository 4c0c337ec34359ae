package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
		excludes []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Context: "resource not found",
				Problem: "Cannot find resource 'articles'.",
				NoColor: true,
			},
			contains: []string{"❌", "RESOURCE NOT FOUND", "Cannot find resource 'articles'."},
			excludes: []string{"Did you mean"},
		},
		{
			name: "error with suggestions and help",
			opts: ErrorOptions{
				Problem:      "Cannot find resource 'artcles'.",
				Suggestions:  []string{"articles", "authors"},
				HelpCommands: []string{"Get help: pgdao --help"},
				NoColor:      true,
			},
			contains: []string{"Did you mean: articles, authors?", "→ Get help: pgdao --help"},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "cache disabled", NoColor: true},
			contains: []string{"⚠️", "cache disabled"},
		},
		{
			name:     "info",
			opts:     ErrorOptions{Level: ErrorLevelInfo, Problem: "3 rows", NoColor: true},
			contains: []string{"ℹ️", "3 rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, result)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(result, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, result)
				}
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{Problem: "boom", NoColor: true})

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected written error, got %q", buf.String())
	}
}

func TestFormatSuccess(t *testing.T) {
	if got := FormatSuccess("done", true); got != "✓ done" {
		t.Errorf("expected '✓ done', got %q", got)
	}
}

func TestResourceNotFoundError(t *testing.T) {
	result := ResourceNotFoundError("artcles", []string{"articles", "users"}, true)

	if !strings.Contains(result, "Cannot find resource 'artcles'.") {
		t.Errorf("missing problem line:\n%s", result)
	}
	if !strings.Contains(result, "Did you mean: articles?") {
		t.Errorf("expected suggestion of 'articles':\n%s", result)
	}
}

func TestConfigAndDatabaseError(t *testing.T) {
	result := ConfigError(errors.New("database.driver must be one of pgx, postgres"), true)
	if !strings.Contains(result, "CONFIGURATION ERROR") || !strings.Contains(result, "pgdao.yml") {
		t.Errorf("unexpected config error:\n%s", result)
	}

	result = DatabaseError(errors.New("connection refused"), true)
	if !strings.Contains(result, "DATABASE ERROR: connection refused") {
		t.Errorf("unexpected database error:\n%s", result)
	}
}
