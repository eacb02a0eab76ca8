package brew

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownPackageType is returned when a free-form type string matches no known synonym.
	ErrUnknownPackageType = errors.New("unknown package type")

	// ErrInvalidPluralForm is returned when a storage key is not one of taps, brews, casks, mas.
	ErrInvalidPluralForm = errors.New("invalid plural package type")
)

// PackageType is one of the four package categories brew bundle understands.
type PackageType int

const (
	Tap PackageType = iota
	Formula
	Cask
	StoreApp
)

// AllTypes lists every package type in enumeration order. Output ordering
// throughout the tool follows this slice.
var AllTypes = []PackageType{Tap, Formula, Cask, StoreApp}

// storeAppSeparator joins the display name and App Store ID in configured mas entries.
const storeAppSeparator = "::"

var singulars = map[PackageType]string{
	Tap:      "tap",
	Formula:  "brew",
	Cask:     "cask",
	StoreApp: "mas",
}

var plurals = map[PackageType]string{
	Tap:      "taps",
	Formula:  "brews",
	Cask:     "casks",
	StoreApp: "mas",
}

// synonyms maps lower-cased user input to a type. Plural and raw values
// are resolved separately.
var synonyms = map[string]PackageType{
	"tap":      Tap,
	"formula":  Formula,
	"formulae": Formula,
	"brew":     Formula,
	"cask":     Cask,
	"mas":      StoreApp,
}

// String returns the canonical singular form ("tap", "brew", "cask", "mas").
func (t PackageType) String() string {
	if s, ok := singulars[t]; ok {
		return s
	}
	return fmt.Sprintf("PackageType(%d)", int(t))
}

// Plural returns the key used for this type in the configuration document.
func (t PackageType) Plural() string {
	if s, ok := plurals[t]; ok {
		return s
	}
	return t.String() + "s"
}

// Title returns a display heading such as "Brews" or "Mas".
func (t PackageType) Title() string {
	p := t.Plural()
	if p == "" {
		return p
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

// ParsePlural converts a configuration storage key back to a PackageType.
func ParsePlural(plural string) (PackageType, error) {
	for _, t := range AllTypes {
		if plurals[t] == plural {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPluralForm, plural)
}

// ParsePackageType accepts case-insensitive singular, plural, or synonym
// spellings ("formula" and "brew" both mean Formula).
func ParsePackageType(value string) (PackageType, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if t, ok := synonyms[v]; ok {
		return t, nil
	}
	if t, err := ParsePlural(v); err == nil {
		return t, nil
	}
	for _, t := range AllTypes {
		if t.String() == v {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPackageType, value)
}

// SplitStoreApp splits a configured mas entry "Name::123" into its display
// name and store ID. ok is false when the entry carries no ID.
func SplitStoreApp(name string) (display, id string, ok bool) {
	display, id, ok = strings.Cut(name, storeAppSeparator)
	if !ok {
		return name, "", false
	}
	return display, id, true
}

// JoinStoreApp builds the configured form of a mas entry.
func JoinStoreApp(display, id string) string {
	if id == "" {
		return display
	}
	return display + storeAppSeparator + id
}

// InstallationStatus reports whether a configured package is present on the system.
type InstallationStatus int

const (
	StatusUnknown InstallationStatus = iota
	StatusInstalled
	StatusNotInstalled
)

func (s InstallationStatus) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusNotInstalled:
		return "not_installed"
	default:
		return "unknown"
	}
}

// PackageInfo describes one package as seen by a single query. Group is
// empty for packages observed on the system rather than read from config.
type PackageInfo struct {
	Name   string
	Group  string
	Type   PackageType
	Status InstallationStatus
}

// Identity is the (name, type) key used for set membership.
type Identity struct {
	Name string
	Type PackageType
}

// Identity returns the raw identity of the package.
func (p PackageInfo) Identity() Identity {
	return Identity{Name: p.Name, Type: p.Type}
}

// MatchIdentity returns the identity used for reconciliation. For mas
// entries the store ID suffix is dropped, since brew bundle only reports
// display names for installed apps.
func (p PackageInfo) MatchIdentity() Identity {
	if p.Type == StoreApp {
		display, _, _ := SplitStoreApp(p.Name)
		return Identity{Name: display, Type: StoreApp}
	}
	return p.Identity()
}
