package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acmeid/go-libacmeid/apierror"
)

// MainSection is the name of the section that carries the display fields.
const MainSection = "main"

// JSON property names of the main section.
const (
	NameKey               = "name"
	LogoURLKey            = "logoUrl"
	DescriptionKey        = "sectionMain1Description"
	BackgroundImageURLKey = "sectionMain1Background2ImageUrl"
	LastUpdatedKey        = "lastUpdated"
)

// Section is one element of an identity-data response. The known display
// properties are lifted into fields; Raw keeps every property of the object as
// decoded.
type Section struct {
	// Name is the section name. The section chosen from a list is always
	// named "main"; a bare object is used whatever its name.
	Name string
	// LogoURL is the identity's logo image URL.
	LogoURL string
	// Description is the main section description, as sent by the API. Use
	// CleanText before displaying it.
	Description string
	// BackgroundImageURL is the main section background image URL.
	BackgroundImageURL string
	// LastUpdated is an optional ISO-8601 timestamp.
	LastUpdated string
	// Raw holds all properties of the section object.
	Raw map[string]any
}

// Fields holds the display fields of an identity.
type Fields struct {
	LogoURL            string
	Description        string
	BackgroundImageURL string
	LastUpdated        string
}

// MissingMainError reports a section list with no element named "main".
type MissingMainError struct {
	// Names lists the section names that were present, in order.
	Names []string
}

func (e *MissingMainError) Error() string {
	return fmt.Sprintf("no %q section in response, found %q", MainSection, e.Names)
}

// DecodeSection decodes an identity-data response body and selects the
// section holding the display fields.
//
// The body is parsed as JSON. If the result is a JSON string, that string is
// parsed again, to accept double-encoded responses. A bare object is returned
// as-is. A list is scanned in order for the first object named "main".
func DecodeSection(body []byte) (*Section, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, apierror.Errorf(apierror.KindDecode, "cannot decode response: %w", err)
	}
	if s, ok := v.(string); ok {
		v = nil
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, apierror.Errorf(apierror.KindDecode, "cannot decode double-encoded response: %w", err)
		}
	}
	return SelectMain(v)
}

// SelectMain chooses the display section from decoded JSON. A map is returned
// as a Section regardless of its name. A list yields its first object whose
// name is "main", or a KindNoMainSection error wrapping a MissingMainError.
// Any other value is a KindDecode error.
func SelectMain(v any) (*Section, error) {
	switch t := v.(type) {
	case map[string]any:
		return sectionFromMap(t), nil
	case []any:
		names := make([]string, 0, len(t))
		for _, elem := range t {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m[NameKey].(string)
			if name == MainSection {
				return sectionFromMap(m), nil
			}
			names = append(names, name)
		}
		return nil, apierror.New(apierror.KindNoMainSection, &MissingMainError{Names: names})
	default:
		return nil, apierror.Errorf(apierror.KindDecode, "unexpected response type %T", v)
	}
}

// Fields returns the section's display fields with the description cleaned.
func (s *Section) Fields() Fields {
	return Fields{
		LogoURL:            s.LogoURL,
		Description:        CleanText(s.Description),
		BackgroundImageURL: s.BackgroundImageURL,
		LastUpdated:        s.LastUpdated,
	}
}

func sectionFromMap(m map[string]any) *Section {
	return &Section{
		Name:               stringProp(m, NameKey),
		LogoURL:            stringProp(m, LogoURLKey),
		Description:        stringProp(m, DescriptionKey),
		BackgroundImageURL: stringProp(m, BackgroundImageURLKey),
		LastUpdated:        stringProp(m, LastUpdatedKey),
		Raw:                m,
	}
}

// stringProp returns the string value of key, or "" if it is absent or not a
// string.
func stringProp(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

var textReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2013", "-",
	"\u2014", "-",
	"\u2026", "...",
	"\ufffd", "",
)

// CleanText replaces typographic punctuation with plain ASCII, removes the
// Unicode replacement character, and trims surrounding whitespace.
func CleanText(s string) string {
	return strings.TrimSpace(textReplacer.Replace(s))
}

// CleanValue applies CleanText to strings and returns other values unchanged.
func CleanValue(v any) any {
	if s, ok := v.(string); ok {
		return CleanText(s)
	}
	return v
}
