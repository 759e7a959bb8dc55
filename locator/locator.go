// Package locator normalizes and parses identity locators.
//
// An identity locator has the canonical form
//
//	acc://<root>.acme[/<subpath>]
//
// and is always lower-case. Users type identities loosely ("SunStream",
// "sunstream.acme", "acc://sunstream/path"), so Normalize fills in the missing
// scheme and suffix before Parse splits the result into its parts.
package locator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/acmeid/go-libacmeid/apierror"
)

const (
	// Scheme is the prefix of every canonical locator.
	Scheme = "acc://"
	// Suffix follows the root name of every canonical locator.
	Suffix = ".acme"

	separator = "/"
)

var (
	// ErrEmpty is returned when normalizing an empty or all-whitespace string.
	ErrEmpty = errors.New("empty identity")
	// ErrCannotParse is returned when a locator does not have the canonical
	// shape.
	ErrCannotParse = errors.New("cannot parse identity locator")
)

var locatorRE = regexp.MustCompile(`^` + regexp.QuoteMeta(Scheme) + `([^./]+)` + regexp.QuoteMeta(Suffix) + `(/.*)?$`)

// Parsed is the decomposition of a canonical locator.
type Parsed struct {
	// URL is the canonical locator that was parsed.
	URL string
	// RootName is the segment between the scheme and the suffix.
	RootName string
	// SubPath is the remainder after the suffix without its leading
	// separator. Empty when there is no remainder or the remainder is only
	// the separator.
	SubPath string
	// PathTrain is the remainder's non-empty segments joined with ".".
	PathTrain string
}

// Normalize turns a loosely formatted identity into a canonical locator. The
// input is trimmed and lower-cased, and the scheme and suffix are added when
// missing. The result is not validated; use Parse for that.
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", apierror.New(apierror.KindMalformedLocator, ErrEmpty)
	}
	s = strings.TrimPrefix(s, Scheme)

	root, rest, hasRest := strings.Cut(s, separator)
	if !strings.HasSuffix(root, Suffix) {
		root += Suffix
	}
	if hasRest {
		return Scheme + root + separator + rest, nil
	}
	return Scheme + root, nil
}

// Parse decomposes a canonical locator. A locator that does not match
// acc://<root>.acme[/<remainder>] yields an error wrapping ErrCannotParse.
func Parse(canonical string) (*Parsed, error) {
	m := locatorRE.FindStringSubmatch(canonical)
	if m == nil {
		return nil, apierror.New(apierror.KindMalformedLocator, fmt.Errorf("%w: %q", ErrCannotParse, canonical))
	}
	p := &Parsed{
		URL:      canonical,
		RootName: m[1],
	}
	remainder := m[2]
	if len(remainder) > len(separator) {
		p.SubPath = remainder[len(separator):]
	}
	p.PathTrain = pathTrain(remainder)
	return p, nil
}

// ParseRaw normalizes raw and parses the result.
func ParseRaw(raw string) (*Parsed, error) {
	canonical, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return Parse(canonical)
}

// FromRootName returns the canonical locator for a bare root name.
func FromRootName(name string) (string, error) {
	if strings.Contains(name, separator) {
		return "", apierror.New(apierror.KindMalformedLocator, fmt.Errorf("%w: root name %q contains %q", ErrCannotParse, name, separator))
	}
	canonical, err := Normalize(name)
	if err != nil {
		return "", err
	}
	if _, err = Parse(canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

// WithoutScheme returns the locator with the scheme prefix removed.
func WithoutScheme(canonical string) string {
	return strings.TrimPrefix(canonical, Scheme)
}

func pathTrain(remainder string) string {
	if remainder == "" {
		return ""
	}
	segs := strings.Split(remainder, separator)
	kept := segs[:0]
	for _, seg := range segs {
		if seg != "" {
			kept = append(kept, seg)
		}
	}
	return strings.Join(kept, ".")
}
