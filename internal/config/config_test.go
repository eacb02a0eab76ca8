package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/brewfile/internal/brew"
)

func sampleConfig(t *testing.T) *Configuration {
	t.Helper()
	cfg := New()
	for _, add := range []struct {
		group string
		typ   brew.PackageType
		name  string
	}{
		{"core", brew.Formula, "git"},
		{"core", brew.Formula, "ripgrep"},
		{"core", brew.Tap, "homebrew/bundle"},
		{"core", brew.StoreApp, "Slack::803453959"},
		{"gui", brew.Cask, "firefox"},
		{"gui", brew.Formula, "ffmpeg"},
	} {
		_, err := cfg.AddPackage(add.group, add.typ, add.name)
		require.NoError(t, err)
	}
	cfg.AssignGroups("host1", []string{"gui", "core"})
	return cfg
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "brewfile.json"))
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	assert.Empty(t, cfg.Packages)
	assert.Empty(t, cfg.Machines)
}

func TestLoad_InvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"not json":             "{nope",
		"packages is a list":   `{"packages": ["core"]}`,
		"group lists wrong":    `{"packages": {"core": {"brews": "git"}}}`,
		"machines wrong shape": `{"machines": {"host1": "core"}}`,
		"null group":           `{"packages": {"core": null}}`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "brewfile.json")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigParse), "got %v", err)
		})
	}
}

func TestLoad_PartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewfile.json")
	doc := `{"packages": {"core": {"brews": ["git"]}}, "machines": {"host1": ["core"]}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, cfg.Version)
	assert.Equal(t, []string{"git"}, cfg.Packages["core"].Names(brew.Formula))
	assert.Empty(t, cfg.Packages["core"].Names(brew.Cask))
}

func TestSave_RoundTripIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "nested", "a.json")
	second := filepath.Join(dir, "b.json")

	require.NoError(t, sampleConfig(t).Save(first))
	loaded, err := Load(first)
	require.NoError(t, err)
	require.NoError(t, loaded.Save(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	// Saving again over the same path is a no-op on content.
	require.NoError(t, loaded.Save(first))
	again, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(again))
}

func TestSave_StableLayout(t *testing.T) {
	cfg := New()
	cfg.EnsureGroup("core")
	cfg.AssignGroups("host1", []string{"core"})

	data, err := cfg.Encode()
	require.NoError(t, err)

	want := `{
  "machines": {
    "host1": [
      "core"
    ]
  },
  "packages": {
    "core": {
      "brews": [],
      "casks": [],
      "mas": [],
      "taps": []
    }
  },
  "version": "1.0"
}
`
	assert.Equal(t, want, string(data))
}

func TestPackageGroup_AddIsIdempotent(t *testing.T) {
	g := &PackageGroup{}
	added, err := g.Add(brew.Formula, "git")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = g.Add(brew.Formula, "git")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, []string{"git"}, g.Names(brew.Formula))

	// Same name under another type is a different package.
	added, err = g.Add(brew.Cask, "git")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, g.Len())
}

func TestMachinePackages_Order(t *testing.T) {
	cfg := sampleConfig(t)

	pkgs, err := cfg.MachinePackages("host1")
	require.NoError(t, err)

	var got []string
	for _, p := range pkgs {
		got = append(got, p.Group+"/"+p.Type.String()+"/"+p.Name)
		assert.Equal(t, brew.StatusUnknown, p.Status)
	}
	assert.Equal(t, []string{
		"gui/brew/ffmpeg",
		"gui/cask/firefox",
		"core/tap/homebrew/bundle",
		"core/brew/git",
		"core/brew/ripgrep",
		"core/mas/Slack::803453959",
	}, got)
}

func TestMachinePackages_Unconfigured(t *testing.T) {
	_, err := sampleConfig(t).MachinePackages("laptop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnconfiguredMachine))
}

func TestMachinePackages_SkipsMissingGroup(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.AssignGroups("host2", []string{"ghost", "gui"})

	pkgs, err := cfg.MachinePackages("host2")
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)
}

func TestFindPackage(t *testing.T) {
	cfg := sampleConfig(t)

	info, ok := cfg.FindPackage("firefox")
	require.True(t, ok)
	assert.Equal(t, brew.Cask, info.Type)
	assert.Equal(t, "gui", info.Group)

	_, ok = cfg.FindPackage("emacs")
	assert.False(t, ok)

	// Type order wins over group order: a tap in "zzz" beats a formula in "core".
	_, err := cfg.AddPackage("zzz", brew.Tap, "git")
	require.NoError(t, err)
	info, ok = cfg.FindPackage("git")
	require.True(t, ok)
	assert.Equal(t, brew.Tap, info.Type)
	assert.Equal(t, "zzz", info.Group)
}

func TestRemovePackage(t *testing.T) {
	cfg := sampleConfig(t)
	_, err := cfg.AddPackage("gui", brew.Formula, "git")
	require.NoError(t, err)

	typ, ok := cfg.RemovePackage("git")
	require.True(t, ok)
	assert.Equal(t, brew.Formula, typ)
	_, found := cfg.FindPackage("git")
	assert.False(t, found, "git should be gone from every group")

	_, ok = cfg.RemovePackage("git")
	assert.False(t, ok)
}

func TestMachineGroups(t *testing.T) {
	cfg := sampleConfig(t)
	groups, err := cfg.MachineGroups("host1")
	require.NoError(t, err)
	assert.Equal(t, []string{"gui", "core"}, groups)

	groups[0] = "mutated"
	again, _ := cfg.MachineGroups("host1")
	assert.Equal(t, "gui", again[0])

	assert.True(t, cfg.HasMachine("host1"))
	assert.False(t, cfg.HasMachine("host9"))
	assert.Equal(t, []string{"core", "gui"}, cfg.GroupNames())
}

func TestRemovePackage_DropsDuplicates(t *testing.T) {
	cfg, err := Parse([]byte(`{"machines":{"host1":["core"]},"packages":{"core":{"brews":["git","htop","git"]}}}`))
	require.NoError(t, err)

	_, ok := cfg.RemovePackage("git")
	require.True(t, ok)
	assert.Equal(t, []string{"htop"}, cfg.Packages["core"].Names(brew.Formula))

	_, found := cfg.FindPackage("git")
	assert.False(t, found)
}

func TestEncode_LeavesReceiverUnchanged(t *testing.T) {
	cfg := &Configuration{
		Machines: map[string][]string{"host1": nil},
		Packages: map[string]*PackageGroup{"core": {Brews: []string{"git"}}},
		Version:  DefaultVersion,
	}

	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"casks": []`)
	assert.Contains(t, string(data), `"host1": []`)

	assert.Nil(t, cfg.Packages["core"].Casks)
	assert.Nil(t, cfg.Machines["host1"])

	again, err := cfg.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
