package brew

import (
	"context"
	"fmt"
)

// Uninstall removes a single formula or cask via brew uninstall.
// Taps go through Untap; mas apps cannot be removed by brew at all.
func (c *Client) Uninstall(ctx context.Context, name string, t PackageType) error {
	switch t {
	case Formula:
		_, err := c.call(ctx, c.out, "uninstall", name)
		return err
	case Cask:
		_, err := c.call(ctx, c.out, "uninstall", "--cask", name)
		return err
	case Tap:
		return c.Untap(ctx, name)
	}
	return fmt.Errorf("%w: cannot uninstall %s packages with brew", ErrBackendCall, t)
}

// Untap removes a Homebrew tap.
func (c *Client) Untap(ctx context.Context, name string) error {
	_, err := c.call(ctx, c.out, "untap", name)
	return err
}
