// Package manifest renders the Brewfile that brew bundle consumes.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/blackwell-systems/brewfile/internal/brew"
)

// Render produces Brewfile content for packages: taps, then brews, then
// casks, then mas apps, with a blank line after each non-empty section.
// mas entries without a store ID cannot be installed by brew bundle and are
// written as comments.
func Render(packages []brew.PackageInfo) string {
	byType := make(map[brew.PackageType][]string, len(brew.AllTypes))
	for _, p := range packages {
		byType[p.Type] = append(byType[p.Type], p.Name)
	}

	var lines []string
	for _, t := range brew.AllTypes {
		names := byType[t]
		for _, name := range names {
			lines = append(lines, directive(t, name))
		}
		if len(names) > 0 && t != brew.StoreApp {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func directive(t brew.PackageType, name string) string {
	if t == brew.StoreApp {
		display, id, ok := brew.SplitStoreApp(name)
		if !ok {
			return fmt.Sprintf("# mas %q # ID needed - check with: mas list", name)
		}
		return fmt.Sprintf("mas %q, id: %s", display, id)
	}
	return fmt.Sprintf("%s %q", t, name)
}

// Write renders packages into the Brewfile at path.
func Write(path string, packages []brew.PackageInfo) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create Brewfile directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Render(packages)), 0644); err != nil {
		return fmt.Errorf("could not write Brewfile: %w", err)
	}
	return nil
}

// MissingIDs returns the mas entries Render will comment out.
func MissingIDs(packages []brew.PackageInfo) []string {
	var names []string
	for _, p := range packages {
		if p.Type != brew.StoreApp {
			continue
		}
		if _, _, ok := brew.SplitStoreApp(p.Name); !ok {
			names = append(names, p.Name)
		}
	}
	return names
}

// Diff returns a unified diff between the Brewfile currently at path and
// the content that would be generated for packages. It is empty when the
// file is already up to date. A missing file diffs against empty content.
func Diff(path string, packages []brew.PackageInfo) (string, error) {
	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read Brewfile: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(Render(packages)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to diff Brewfile: %w", err)
	}
	return text, nil
}
