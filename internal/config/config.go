// Package config holds the brewfile configuration document (package groups
// and machine assignments) and the tool's own settings.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/blackwell-systems/brewfile/internal/brew"
)

// DefaultVersion is written to new configuration documents.
const DefaultVersion = "1.0"

var (
	// ErrConfigParse is returned when the configuration document exists but cannot be decoded.
	ErrConfigParse = errors.New("invalid configuration file")

	// ErrUnconfiguredMachine is returned when a hostname has no entry in the machines map.
	ErrUnconfiguredMachine = errors.New("machine is not configured")
)

// PackageGroup is a named set of packages, one ordered list per type.
// Field order is alphabetical so the encoded document has sorted keys.
type PackageGroup struct {
	Brews []string `json:"brews"`
	Casks []string `json:"casks"`
	Mas   []string `json:"mas"`
	Taps  []string `json:"taps"`
}

// Configuration is the root document stored in brewfile.json.
type Configuration struct {
	Machines map[string][]string      `json:"machines"`
	Packages map[string]*PackageGroup `json:"packages"`
	Version  string                   `json:"version"`
}

// New returns an empty configuration.
func New() *Configuration {
	return &Configuration{
		Machines: make(map[string][]string),
		Packages: make(map[string]*PackageGroup),
		Version:  DefaultVersion,
	}
}

func (g *PackageGroup) list(t brew.PackageType) *[]string {
	switch t {
	case brew.Tap:
		return &g.Taps
	case brew.Formula:
		return &g.Brews
	case brew.Cask:
		return &g.Casks
	case brew.StoreApp:
		return &g.Mas
	}
	return nil
}

// Names returns a copy of the package names of one type.
func (g *PackageGroup) Names(t brew.PackageType) []string {
	l := g.list(t)
	if l == nil {
		return nil
	}
	return append([]string(nil), (*l)...)
}

// Add appends name to the list for t. Adding a name that is already
// present is a no-op and returns false.
func (g *PackageGroup) Add(t brew.PackageType, name string) (bool, error) {
	l := g.list(t)
	if l == nil {
		return false, fmt.Errorf("%w: %v", brew.ErrUnknownPackageType, t)
	}
	for _, existing := range *l {
		if existing == name {
			return false, nil
		}
	}
	*l = append(*l, name)
	return true, nil
}

// Remove deletes every occurrence of name from the list for t and reports
// whether it was there.
func (g *PackageGroup) Remove(t brew.PackageType, name string) bool {
	l := g.list(t)
	if l == nil {
		return false
	}
	kept := (*l)[:0]
	for _, existing := range *l {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	removed := len(kept) != len(*l)
	*l = kept
	return removed
}

// Len returns the total number of packages in the group.
func (g *PackageGroup) Len() int {
	return len(g.Taps) + len(g.Brews) + len(g.Casks) + len(g.Mas)
}

func (g *PackageGroup) normalize() {
	for _, t := range brew.AllTypes {
		if l := g.list(t); *l == nil {
			*l = []string{}
		}
	}
}

// Load reads the configuration at path. A missing file yields an empty
// configuration; a file that cannot be decoded yields ErrConfigParse.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a configuration document.
func Parse(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Packages == nil {
		cfg.Packages = make(map[string]*PackageGroup)
	}
	if cfg.Machines == nil {
		cfg.Machines = make(map[string][]string)
	}
	for name, g := range cfg.Packages {
		if g == nil {
			return nil, fmt.Errorf("%w: group %q is null", ErrConfigParse, name)
		}
	}
	for host, groups := range cfg.Machines {
		if groups == nil {
			cfg.Machines[host] = []string{}
		}
	}
	return &cfg, nil
}

// Encode returns the canonical serialization: sorted keys, two-space
// indentation, trailing newline.
// The receiver is left untouched; nil lists are written as [].
func (c *Configuration) Encode() ([]byte, error) {
	doc := Configuration{
		Machines: make(map[string][]string, len(c.Machines)),
		Packages: make(map[string]*PackageGroup, len(c.Packages)),
		Version:  c.Version,
	}
	for name, g := range c.Packages {
		normalized := PackageGroup{}
		if g != nil {
			normalized = *g
		}
		normalized.normalize()
		doc.Packages[name] = &normalized
	}
	for host, groups := range c.Machines {
		if groups == nil {
			groups = []string{}
		}
		doc.Machines[host] = groups
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the configuration to path, creating parent directories.
// The file is replaced atomically.
func (c *Configuration) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".brewfile-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace configuration %s: %w", path, err)
	}
	return nil
}

// GroupNames returns all group names, sorted.
func (c *Configuration) GroupNames() []string {
	names := make([]string, 0, len(c.Packages))
	for name := range c.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasMachine reports whether hostname has an entry in the machines map.
func (c *Configuration) HasMachine(hostname string) bool {
	_, ok := c.Machines[hostname]
	return ok
}

// MachineGroups returns the group names assigned to hostname, in order.
func (c *Configuration) MachineGroups(hostname string) ([]string, error) {
	groups, ok := c.Machines[hostname]
	if !ok {
		return nil, fmt.Errorf("%w: %q (run 'brewfile init' first)", ErrUnconfiguredMachine, hostname)
	}
	return append([]string(nil), groups...), nil
}

// AssignGroups replaces the group list of hostname.
func (c *Configuration) AssignGroups(hostname string, groups []string) {
	c.Machines[hostname] = append([]string{}, groups...)
}

// EnsureGroup returns the named group, creating it when absent.
func (c *Configuration) EnsureGroup(name string) *PackageGroup {
	g, ok := c.Packages[name]
	if !ok || g == nil {
		g = &PackageGroup{}
		g.normalize()
		c.Packages[name] = g
	}
	return g
}

// AddPackage adds name to group, creating the group if needed. It returns
// false when the package was already in the group.
func (c *Configuration) AddPackage(group string, t brew.PackageType, name string) (bool, error) {
	return c.EnsureGroup(group).Add(t, name)
}

// MachinePackages flattens every group assigned to hostname: groups in
// assignment order, then type order, then insertion order. Groups named by
// the machine but absent from packages are skipped.
func (c *Configuration) MachinePackages(hostname string) ([]brew.PackageInfo, error) {
	groups, err := c.MachineGroups(hostname)
	if err != nil {
		return nil, err
	}

	var packages []brew.PackageInfo
	for _, groupName := range groups {
		g, ok := c.Packages[groupName]
		if !ok || g == nil {
			continue
		}
		for _, t := range brew.AllTypes {
			for _, name := range g.Names(t) {
				packages = append(packages, brew.PackageInfo{
					Name:   name,
					Group:  groupName,
					Type:   t,
					Status: brew.StatusUnknown,
				})
			}
		}
	}
	return packages, nil
}

// FindPackage returns the first configured occurrence of name, scanning
// types in enumeration order and, within a type, groups in sorted order.
func (c *Configuration) FindPackage(name string) (brew.PackageInfo, bool) {
	groups := c.GroupNames()
	for _, t := range brew.AllTypes {
		for _, groupName := range groups {
			for _, existing := range c.Packages[groupName].Names(t) {
				if existing == name {
					return brew.PackageInfo{Name: name, Group: groupName, Type: t}, true
				}
			}
		}
	}
	return brew.PackageInfo{}, false
}

// RemovePackage removes name from every group and type it appears in and
// returns the last type it was removed from.
func (c *Configuration) RemovePackage(name string) (brew.PackageType, bool) {
	var removedType brew.PackageType
	removed := false
	for _, groupName := range c.GroupNames() {
		g := c.Packages[groupName]
		for _, t := range brew.AllTypes {
			if g.Remove(t, name) {
				removedType = t
				removed = true
			}
		}
	}
	return removedType, removed
}
