package brew

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/brewfile/internal/logging"
)

// Search returns the names brew search prints for a cask or formula query.
func (c *Client) Search(ctx context.Context, name string, t PackageType) ([]string, error) {
	var flag string
	switch t {
	case Cask:
		flag = "--cask"
	case Formula:
		flag = "--formula"
	default:
		return nil, fmt.Errorf("%w: search supports only casks and formulae, got %s", ErrUnknownPackageType, t)
	}
	out, err := c.call(ctx, nil, "search", flag, name)
	if err != nil {
		return nil, err
	}
	return parseLines(string(out)), nil
}

// DetectType guesses whether name is a cask or a formula. An exact match
// in the cask catalog wins, then an exact formula match; anything else
// falls back to Formula with a logged warning. This is a heuristic: a name
// present in both catalogs is reported as a cask.
func DetectType(ctx context.Context, b Backend, name string) PackageType {
	log := logging.GetLogger("brew.detect")

	casks, err := b.Search(ctx, name, Cask)
	if err != nil {
		log.Warn().Err(err).Str("package", name).Msg("Package search failed, assuming it's a formula")
		return Formula
	}
	if containsExact(casks, name) {
		return Cask
	}

	formulae, err := b.Search(ctx, name, Formula)
	if err != nil {
		log.Warn().Err(err).Str("package", name).Msg("Package search failed, assuming it's a formula")
		return Formula
	}
	if containsExact(formulae, name) {
		return Formula
	}

	log.Warn().Str("package", name).Msg("Could not find exact match, assuming it's a formula")
	return Formula
}

func containsExact(lines []string, name string) bool {
	for _, line := range lines {
		if line == name {
			return true
		}
	}
	return false
}
