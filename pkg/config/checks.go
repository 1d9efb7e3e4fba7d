package config

import (
	"errors"
	"fmt"
	"slices"
)

// rules collects violations of constraints that span fields or depend on
// other settings. Every rule runs, so one call reports all of them.
type rules struct {
	section string
	errs    []error
}

func newRules(section string) *rules {
	return &rules{section: section}
}

func (r *rules) fail(field string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s.%s: %w", r.section, field, err))
}

// require fails when value is empty.
func (r *rules) require(field, value string) *rules {
	if value == "" {
		r.fail(field, errors.New("must be set"))
	}
	return r
}

// oneOf fails when value is not listed.
func (r *rules) oneOf(field, value string, allowed ...string) *rules {
	if !slices.Contains(allowed, value) {
		r.fail(field, fmt.Errorf("%q is not one of %v", value, allowed))
	}
	return r
}

// check records the error returned by fn, if any.
func (r *rules) check(field string, fn func() error) *rules {
	if err := fn(); err != nil {
		r.fail(field, err)
	}
	return r
}

// when applies fn only if cond holds.
func (r *rules) when(cond bool, fn func(*rules)) *rules {
	if cond {
		fn(r)
	}
	return r
}

// err joins the violations, or returns nil.
func (r *rules) err() error {
	return errors.Join(r.errs...)
}
