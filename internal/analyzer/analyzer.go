// Package analyzer reconciles the configured package set with the set
// installed on the host.
package analyzer

import "github.com/blackwell-systems/brewfile/internal/brew"

// Compare returns the packages that are configured but missing from the
// host and the packages installed but not configured. mas entries are
// matched on display name, so "Slack::803453959" in the configuration
// matches an installed "Slack". Neither input is modified.
func Compare(configured, installed []brew.PackageInfo) Result {
	installedSet := make(map[brew.Identity]struct{}, len(installed))
	for _, p := range installed {
		installedSet[p.Identity()] = struct{}{}
		installedSet[p.MatchIdentity()] = struct{}{}
	}

	configuredSet := make(map[brew.Identity]struct{}, len(configured))
	configuredApps := make(map[string]struct{})
	for _, p := range configured {
		configuredSet[p.Identity()] = struct{}{}
		if p.Type == brew.StoreApp {
			configuredApps[p.MatchIdentity().Name] = struct{}{}
		}
	}

	result := Result{
		Missing: []brew.PackageInfo{},
		Extra:   []brew.PackageInfo{},
	}

	for _, p := range configured {
		if _, ok := installedSet[p.MatchIdentity()]; !ok {
			result.Missing = append(result.Missing, p)
		}
	}

	for _, p := range installed {
		if _, ok := configuredSet[p.Identity()]; ok {
			continue
		}
		if p.Type == brew.StoreApp {
			if _, ok := configuredApps[p.MatchIdentity().Name]; ok {
				continue
			}
		}
		result.Extra = append(result.Extra, p)
	}

	return result
}

// GroupByType splits packages into type runs in tap, brew, cask, mas order,
// omitting empty types. Order within a type is preserved.
func GroupByType(packages []brew.PackageInfo) []TypeGroup {
	var groups []TypeGroup
	for _, t := range brew.AllTypes {
		var run []brew.PackageInfo
		for _, p := range packages {
			if p.Type == t {
				run = append(run, p)
			}
		}
		if len(run) > 0 {
			groups = append(groups, TypeGroup{Type: t, Packages: run})
		}
	}
	return groups
}
