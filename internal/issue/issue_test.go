// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/invowk/taskconf/internal/fileglob"
	"github.com/invowk/taskconf/pkg/taskconf"
)

var allIds = []Id{
	UnrecognizedFormatId,
	ParseFailureId,
	FactoryFailureId,
	InvalidContributionId,
	PatternResolutionId,
	ConfigLoadFailedId,
	NoFilesMatchedId,
}

// echoRender replaces glamour for the duration of a test.
func echoRender(t *testing.T) {
	t.Helper()
	originalRender := render
	t.Cleanup(func() { render = originalRender })
	render = func(in string, _ string) (string, error) {
		return in, nil
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if UnrecognizedFormatId != 1 {
		t.Errorf("UnrecognizedFormatId = %d, want 1", UnrecognizedFormatId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{UnrecognizedFormatId, false, "Unrecognized config file format"},
		{ParseFailureId, false, "Failed to parse"},
		{FactoryFailureId, false, "factory failed"},
		{InvalidContributionId, false, "did not produce a mapping"},
		{PatternResolutionId, false, "Invalid file pattern"},
		{ConfigLoadFailedId, false, "taskconf settings"},
		{NoFilesMatchedId, false, "No config files matched"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestIssue_Render(t *testing.T) {
	echoRender(t)

	rendered, err := Get(UnrecognizedFormatId).Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "taskconf formats") {
		t.Error("Render() output should contain 'taskconf formats'")
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}

	withLinks, err := Get(PatternResolutionId).Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(withLinks, "## See also") || !strings.Contains(withLinks, "doublestar") {
		t.Errorf("Render() with links should list them, got:\n%s", withLinks)
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	rendered, err := Get(NoFilesMatchedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "No config files matched") {
		t.Errorf("rendered output should keep the title, got:\n%s", rendered)
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	echoRender(t)

	for _, id := range allIds {
		issue := Get(id)
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
		rendered, err := issue.Render("")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if rendered == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}

func TestForError(t *testing.T) {
	fileErr := func(kind error) error {
		return fmt.Errorf("loading: %w", &taskconf.FileError{Path: "/w/a", Kind: kind, Cause: errors.New("cause")})
	}

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{"unrecognized", fileErr(taskconf.ErrUnrecognizedFormat), UnrecognizedFormatId},
		{"parse", fileErr(taskconf.ErrParseFailure), ParseFailureId},
		{"factory", fileErr(taskconf.ErrFactoryFailure), FactoryFailureId},
		{"contribution", fileErr(taskconf.ErrInvalidContribution), InvalidContributionId},
		{"resolution", fmt.Errorf("%w: x", taskconf.ErrResolutionFailure), PatternResolutionId},
		{"pattern", &fileglob.InvalidPatternError{Pattern: "[", Cause: errors.New("bad")}, PatternResolutionId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForError(tt.err)
			if got == nil || got.Id() != tt.want {
				t.Errorf("ForError() = %v, want issue %d", got, tt.want)
			}
		})
	}

	if ForError(nil) != nil || ForError(errors.New("other")) != nil {
		t.Error("ForError should return nil for unrelated errors")
	}
}
