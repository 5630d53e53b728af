package admission

import (
	"fmt"
	"slices"
	"strings"
)

// PreferenceTable is a validated mapping from preference code to a full ordering of the majors.
// It is immutable after construction.
type PreferenceTable struct {
	majors   []string
	entries  map[PreferenceCode][]string
	foldCase bool
}

// NewPreferenceTable validates entries against the given majors.
//
// Every entry must list each major exactly once. When foldCase is true, codes are
// matched case-insensitively and codes that differ only by case are rejected.
func NewPreferenceTable(majors []string, entries map[PreferenceCode][]string, foldCase bool) (*PreferenceTable, error) {
	if len(majors) == 0 {
		return nil, fmt.Errorf("%w: no majors configured", ErrInvalidConfig)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: preference table is empty", ErrInvalidConfig)
	}

	known := make(map[string]bool, len(majors))
	for _, major := range majors {
		if major == "" {
			return nil, fmt.Errorf("%w: major name must not be empty", ErrInvalidConfig)
		}
		if known[major] {
			return nil, fmt.Errorf("%w: duplicate major %q", ErrInvalidConfig, major)
		}
		known[major] = true
	}

	table := &PreferenceTable{
		majors:   slices.Clone(majors),
		entries:  make(map[PreferenceCode][]string, len(entries)),
		foldCase: foldCase,
	}

	// Sorted so error messages are deterministic
	codes := make([]PreferenceCode, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		list := entries[code]
		if strings.TrimSpace(string(code)) == "" {
			return nil, fmt.Errorf("%w: preference code must not be empty", ErrInvalidConfig)
		}
		if len(list) != len(majors) {
			return nil, fmt.Errorf("%w: code %q lists %d majors, want %d", ErrInvalidConfig, code, len(list), len(majors))
		}

		seen := make(map[string]bool, len(list))
		for _, major := range list {
			if !known[major] {
				return nil, fmt.Errorf("%w: code %q references major %q which has no quota", ErrInvalidConfig, code, major)
			}
			if seen[major] {
				return nil, fmt.Errorf("%w: code %q lists major %q more than once", ErrInvalidConfig, code, major)
			}
			seen[major] = true
		}

		key := table.key(code)
		if _, exists := table.entries[key]; exists {
			return nil, fmt.Errorf("%w: code %q collides with another code when case is folded", ErrInvalidConfig, code)
		}
		table.entries[key] = slices.Clone(list)
	}

	return table, nil
}

func (t *PreferenceTable) key(code PreferenceCode) PreferenceCode {
	if t.foldCase {
		return PreferenceCode(strings.ToUpper(string(code)))
	}
	return code
}

// Resolve returns the ordered majors for code
func (t *PreferenceTable) Resolve(code PreferenceCode) ([]string, error) {
	list, ok := t.entries[t.key(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPreference, code)
	}
	return slices.Clone(list), nil
}

// Majors returns the majors in configured order
func (t *PreferenceTable) Majors() []string {
	return slices.Clone(t.majors)
}

// Codes returns all codes in sorted order
func (t *PreferenceTable) Codes() []PreferenceCode {
	codes := make([]PreferenceCode, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
