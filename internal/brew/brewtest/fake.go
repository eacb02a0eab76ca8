// Package brewtest provides an in-memory brew.Backend for tests.
package brewtest

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/blackwell-systems/brewfile/internal/brew"
)

// Call records one backend invocation. Manifest holds the manifest file
// contents at the time of the call, when the call took a manifest path.
type Call struct {
	Op       string
	Name     string
	Type     brew.PackageType
	Manifest string
}

// Backend is a scripted brew.Backend. Installed drives DumpSystemState and
// ListPackages; the *Err fields make the matching call fail.
type Backend struct {
	mu sync.Mutex

	Installed     map[brew.PackageType][]string
	SearchResults map[brew.PackageType]map[string][]string

	InstallErr    error
	CleanupErr    error
	DumpErr       error
	AutoremoveErr error
	SearchErr     error
	ListErr       map[brew.PackageType]error
	UninstallErr  map[string]error

	Calls []Call
}

// New returns a Backend reporting the given installed packages.
func New(installed map[brew.PackageType][]string) *Backend {
	if installed == nil {
		installed = map[brew.PackageType][]string{}
	}
	return &Backend{
		Installed:     installed,
		SearchResults: map[brew.PackageType]map[string][]string{},
		ListErr:       map[brew.PackageType]error{},
		UninstallErr:  map[string]error{},
	}
}

func (b *Backend) record(c Call) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, c)
}

func readManifest(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func fail(op string, err error) error {
	return fmt.Errorf("%w: brew %s: %v", brew.ErrBackendCall, op, err)
}

func (b *Backend) Install(_ context.Context, manifestPath string) error {
	b.record(Call{Op: "install", Manifest: readManifest(manifestPath)})
	if b.InstallErr != nil {
		return fail("bundle install", b.InstallErr)
	}
	return nil
}

func (b *Backend) Cleanup(_ context.Context, manifestPath string) error {
	b.record(Call{Op: "cleanup", Manifest: readManifest(manifestPath)})
	if b.CleanupErr != nil {
		return fail("bundle cleanup", b.CleanupErr)
	}
	return nil
}

func (b *Backend) DumpSystemState(_ context.Context, manifestPath string) error {
	b.record(Call{Op: "dump"})
	if b.DumpErr != nil {
		return fail("bundle dump", b.DumpErr)
	}
	return os.WriteFile(manifestPath, []byte("# dumped\n"), 0644)
}

func (b *Backend) ListPackages(_ context.Context, manifestPath string, t brew.PackageType) ([]string, error) {
	b.record(Call{Op: "list", Type: t})
	if _, err := os.Stat(manifestPath); err != nil {
		return nil, fail("bundle list", err)
	}
	if err := b.ListErr[t]; err != nil {
		return nil, fail("bundle list", err)
	}
	return append([]string(nil), b.Installed[t]...), nil
}

func (b *Backend) Search(_ context.Context, name string, t brew.PackageType) ([]string, error) {
	b.record(Call{Op: "search", Name: name, Type: t})
	if b.SearchErr != nil {
		return nil, fail("search", b.SearchErr)
	}
	return b.SearchResults[t][name], nil
}

func (b *Backend) Uninstall(_ context.Context, name string, t brew.PackageType) error {
	b.record(Call{Op: "uninstall", Name: name, Type: t})
	if err := b.UninstallErr[name]; err != nil {
		return fail("uninstall", err)
	}
	return nil
}

func (b *Backend) Untap(_ context.Context, name string) error {
	b.record(Call{Op: "untap", Name: name, Type: brew.Tap})
	if err := b.UninstallErr[name]; err != nil {
		return fail("untap", err)
	}
	return nil
}

func (b *Backend) Autoremove(_ context.Context) error {
	b.record(Call{Op: "autoremove"})
	if b.AutoremoveErr != nil {
		return fail("autoremove", b.AutoremoveErr)
	}
	return nil
}

// CallsTo returns the recorded calls for one operation.
func (b *Backend) CallsTo(op string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

var _ brew.Backend = (*Backend)(nil)
