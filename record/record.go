// Package record provides a per-identity view of display fields that always
// yields something to show.
//
// Each field of a Record is resolved in a fixed order: a manual override if
// one is set, then the value memoized by an earlier call, then the data
// source, and finally a documented default. Whatever the source or default
// yields is memoized, so a failing identity does not hit the network on every
// call. Overrides are never affected by cache clears.
package record

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/acmeid/go-libacmeid/apierror"
	"github.com/acmeid/go-libacmeid/data/model"
	"github.com/acmeid/go-libacmeid/locator"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("acmeid-record")

// DataSource supplies section data for identity locators. *client.Client
// implements it.
type DataSource interface {
	FetchSection(context.Context, string) (*model.Section, error)
	LogoURL(context.Context, string) (string, error)
	SectionDescription(context.Context, string) (string, error)
	BackgroundImageURL(context.Context, string) (string, error)
	AllFields(context.Context, string) (model.Fields, error)
	// Evict drops any cached data for a locator.
	Evict(string)
}

// Field identifies a display field.
type Field int

const (
	Logo Field = iota
	Description
	BackgroundImage

	numFields
)

// Fields lists every display field.
var Fields = [...]Field{Logo, Description, BackgroundImage}

func (f Field) valid() bool {
	return f >= 0 && f < numFields
}

func (f Field) String() string {
	switch f {
	case Logo:
		return "logo"
	case Description:
		return "description"
	case BackgroundImage:
		return "background image"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Source tells where a Value came from.
type Source int

const (
	SourceNone Source = iota
	// SourceOverride is a manually set value.
	SourceOverride
	// SourceMemo is a value memoized by an earlier call.
	SourceMemo
	// SourceLive is a value just fetched from the data source.
	SourceLive
	// SourceFallback is a default used because the data source failed.
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceMemo:
		return "memo"
	case SourceLive:
		return "live"
	case SourceFallback:
		return "fallback"
	}
	return "none"
}

// Value is a resolved field.
type Value struct {
	// Text is the value to display. It is never empty unless an empty
	// override was set.
	Text string
	// Source tells how Text was obtained.
	Source Source
	// Default is true if Text is the documented default, either just now or
	// when it was memoized.
	Default bool
	// Err is the data-source failure that caused the default to be used.
	Err error
}

// slot is the state of one field. An override and a memoized value are
// tracked independently, each with its own presence marker, so an empty
// string is a valid value for both.
type slot struct {
	override   string
	overridden bool

	memo       string
	memoized   bool
	memoAt     time.Time
	memoErr    error
	memoIsDflt bool
}

// Record resolves and memoizes display fields for one identity.
//
// Safe to be used concurrently. The lock is not held while the data source is
// queried, so concurrent first calls for the same field may both query it.
type Record struct {
	loc      string
	rootName string
	src      DataSource
	defaults Defaults
	now      func() time.Time

	lock      sync.Mutex
	slots     [numFields]slot
	section   *model.Section
	sectionAt time.Time
	// failErr is the identity-wide failure whose defaults fill every
	// unresolved field, or nil.
	failErr error
}

// New creates a Record for an identity. The identity is normalized first; an
// identity that cannot be parsed is an error.
func New(identity string, src DataSource, options ...Option) (*Record, error) {
	if src == nil {
		return nil, errors.New("nil data source")
	}
	opts, err := getOpts(options)
	if err != nil {
		return nil, err
	}
	parsed, err := locator.ParseRaw(identity)
	if err != nil {
		return nil, err
	}
	return &Record{
		loc:      parsed.URL,
		rootName: parsed.RootName,
		src:      src,
		defaults: opts.defaults,
		now:      opts.now,
	}, nil
}

// ByRootName creates a Record for the identity with the given root name.
func ByRootName(name string, src DataSource, options ...Option) (*Record, error) {
	loc, err := locator.FromRootName(name)
	if err != nil {
		return nil, err
	}
	return New(loc, src, options...)
}

// Locator returns the canonical identity locator.
func (r *Record) Locator() string {
	return r.loc
}

// RootName returns the identity's root name.
func (r *Record) RootName() string {
	return r.rootName
}

// Logo returns the logo URL.
func (r *Record) Logo(ctx context.Context) Value {
	return r.Get(ctx, Logo)
}

// Description returns the cleaned section description.
func (r *Record) Description(ctx context.Context) Value {
	return r.Get(ctx, Description)
}

// BackgroundImage returns the background image URL.
func (r *Record) BackgroundImage(ctx context.Context) Value {
	return r.Get(ctx, BackgroundImage)
}

// Get resolves a field: override, then memo, then data source, then default.
func (r *Record) Get(ctx context.Context, f Field) Value {
	if !f.valid() {
		return Value{Err: fmt.Errorf("unknown field %d", int(f))}
	}
	r.lock.Lock()
	s := r.slots[f]
	r.lock.Unlock()

	if s.overridden {
		return Value{Text: s.override, Source: SourceOverride}
	}
	if s.memoized {
		return Value{Text: s.memo, Source: SourceMemo, Default: s.memoIsDflt, Err: s.memoErr}
	}

	text, err := r.fetch(ctx, f)
	if err != nil {
		dflt := r.fallback(f)
		log.Debugw("Using default", "locator", r.loc, "field", f, "err", err)
		switch {
		case isContextErr(err):
			// A caller that gave up should not pin the default.
		case apierror.IsKind(err, apierror.KindFieldMissing):
			r.memoize(f, dflt, true, err)
		default:
			// The identity itself failed; the other fields would fail the
			// same way.
			r.lock.Lock()
			r.fillDefaultsLocked(err)
			r.lock.Unlock()
		}
		return Value{Text: dflt, Source: SourceFallback, Default: true, Err: err}
	}
	r.memoize(f, text, false, nil)
	return Value{Text: text, Source: SourceLive}
}

func (r *Record) fetch(ctx context.Context, f Field) (string, error) {
	switch f {
	case Logo:
		return r.src.LogoURL(ctx, r.loc)
	case Description:
		return r.src.SectionDescription(ctx, r.loc)
	default:
		return r.src.BackgroundImageURL(ctx, r.loc)
	}
}

func (r *Record) fallback(f Field) string {
	switch f {
	case Logo:
		return r.defaults.LogoURL
	case Description:
		return fmt.Sprintf(r.defaults.DescriptionFormat, r.rootName)
	default:
		return r.defaults.BackgroundImageURL
	}
}

func (r *Record) memoize(f Field, text string, isDefault bool, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.slots[f].memo = text
	r.slots[f].memoized = true
	r.slots[f].memoAt = r.now()
	r.slots[f].memoIsDflt = isDefault
	r.slots[f].memoErr = err
}

// MemoizedAt returns when a field's value was memoized, and false if it is
// not memoized.
func (r *Record) MemoizedAt(f Field) (time.Time, bool) {
	if !f.valid() {
		return time.Time{}, false
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	s := r.slots[f]
	return s.memoAt, s.memoized
}

// SetOverride makes text the value of a field until ClearOverride is called.
// Unknown fields are ignored.
func (r *Record) SetOverride(f Field, text string) {
	if !f.valid() {
		log.Warnw("Ignoring override of unknown field", "field", f)
		return
	}
	r.lock.Lock()
	r.slots[f].override = text
	r.slots[f].overridden = true
	r.lock.Unlock()
}

// ClearOverride removes a field's override.
func (r *Record) ClearOverride(f Field) {
	if !f.valid() {
		return
	}
	r.lock.Lock()
	r.slots[f].override = ""
	r.slots[f].overridden = false
	r.lock.Unlock()
}

// Override returns a field's override and whether one is set.
func (r *Record) Override(f Field) (string, bool) {
	if !f.valid() {
		return "", false
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.slots[f].override, r.slots[f].overridden
}

// ClearCache forgets a field's memoized value and evicts the identity from
// the data source's cache, so the next Get fetches again.
func (r *Record) ClearCache(f Field) {
	if !f.valid() {
		return
	}
	r.lock.Lock()
	r.clearMemo(f)
	r.failErr = nil
	r.lock.Unlock()
	r.src.Evict(r.loc)
}

// ClearSection forgets the memoized raw section and evicts the identity from
// the data source's cache. Field values are kept.
func (r *Record) ClearSection() {
	r.lock.Lock()
	r.section = nil
	r.sectionAt = time.Time{}
	r.lock.Unlock()
	r.src.Evict(r.loc)
}

// ClearAllCache forgets every memoized value, including the raw section, and
// evicts the identity from the data source's cache.
func (r *Record) ClearAllCache() {
	r.lock.Lock()
	for _, f := range Fields {
		r.clearMemo(f)
	}
	r.section = nil
	r.sectionAt = time.Time{}
	r.failErr = nil
	r.lock.Unlock()
	r.src.Evict(r.loc)
}

// fillDefaultsLocked memoizes the default of every field that has neither an
// override nor a memoized value.
func (r *Record) fillDefaultsLocked(err error) {
	for _, f := range Fields {
		if s := &r.slots[f]; !s.overridden && !s.memoized {
			s.memo = r.fallback(f)
			s.memoized = true
			s.memoAt = r.now()
			s.memoIsDflt = true
			s.memoErr = err
		}
	}
	r.failErr = err
}

// resolvedLocked reports whether every field has an override or a memoized
// value.
func (r *Record) resolvedLocked() bool {
	for _, f := range Fields {
		if s := r.slots[f]; !s.overridden && !s.memoized {
			return false
		}
	}
	return true
}

func (r *Record) clearMemo(f Field) {
	s := &r.slots[f]
	s.memo = ""
	s.memoized = false
	s.memoAt = time.Time{}
	s.memoErr = nil
	s.memoIsDflt = false
}

// Section returns the identity's raw main section. It has no default; a
// data-source failure is returned as is.
func (r *Record) Section(ctx context.Context) (*model.Section, error) {
	r.lock.Lock()
	section := r.section
	r.lock.Unlock()
	if section != nil {
		return section, nil
	}

	section, err := r.src.FetchSection(ctx, r.loc)
	if err != nil {
		return nil, err
	}
	r.lock.Lock()
	r.section = section
	r.sectionAt = r.now()
	r.lock.Unlock()
	return section, nil
}

// AllFields resolves every display field. The data source is asked once for
// all fields and any it supplies are memoized; the remaining fields are then
// resolved individually, so a partial response still yields a value for every
// field. The returned error, if any, aggregates the data-source failures that
// caused defaults to be used; the returned fields are always complete.
//
// Once an identity-wide failure has filled every field with its default, the
// data source is not asked again until the memo is cleared.
func (r *Record) AllFields(ctx context.Context) (model.Fields, error) {
	r.lock.Lock()
	failed := r.failErr != nil && r.resolvedLocked()
	r.lock.Unlock()

	var fields model.Fields
	var fetchErr error
	if !failed {
		fields, fetchErr = r.src.AllFields(ctx, r.loc)

		r.lock.Lock()
		if fetchErr == nil {
			r.memoizeIfUnsetLocked(Logo, fields.LogoURL)
			r.memoizeIfUnsetLocked(Description, fields.Description)
			r.memoizeIfUnsetLocked(BackgroundImage, fields.BackgroundImageURL)
		} else if !isContextErr(fetchErr) {
			// Fill gaps with defaults now rather than having each field ask
			// the data source again.
			r.fillDefaultsLocked(fetchErr)
		}
		r.lock.Unlock()
	}

	var errs *multierror.Error
	var reported []error
	if fetchErr != nil {
		errs = multierror.Append(errs, fetchErr)
		reported = append(reported, fetchErr)
	}

	values := [numFields]Value{}
	for _, f := range Fields {
		v := r.Get(ctx, f)
		values[f] = v
		switch {
		case v.Err == nil:
		case apierror.IsKind(v.Err, apierror.KindFieldMissing):
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", f, v.Err))
		case !containsErr(reported, v.Err):
			errs = multierror.Append(errs, v.Err)
			reported = append(reported, v.Err)
		}
	}

	return model.Fields{
		LogoURL:            values[Logo].Text,
		Description:        values[Description].Text,
		BackgroundImageURL: values[BackgroundImage].Text,
		LastUpdated:        fields.LastUpdated,
	}, errs.ErrorOrNil()
}

func (r *Record) memoizeIfUnsetLocked(f Field, text string) {
	s := &r.slots[f]
	if text == "" || s.memoized {
		return
	}
	s.memo = text
	s.memoized = true
	s.memoAt = r.now()
	s.memoIsDflt = false
	s.memoErr = nil
}

// containsErr reports whether err is one of errs. Errors are compared by
// identity, so the same failure memoized for several fields is reported once.
func containsErr(errs []error, err error) bool {
	for _, e := range errs {
		if e == err {
			return true
		}
	}
	return false
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
