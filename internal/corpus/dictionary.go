// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Dictionary holds the known entity names derived from the corpus at load
// time. Keys are normalized forms (see Normalize); values are the display
// forms as stored. The dictionary is immutable after load and safe for
// concurrent reads.
type Dictionary struct {
	Authors      map[string]string
	Institutions map[string]string
	Countries    map[string]string
}

// LoadDictionary reads the distinct author, institution, and country names
// from the store. Empty strings are dropped; names that normalize to the
// same form keep the first display form seen.
func (s *Store) LoadDictionary(ctx context.Context) (*Dictionary, error) {
	d := &Dictionary{
		Authors:      make(map[string]string),
		Institutions: make(map[string]string),
		Countries:    make(map[string]string),
	}

	if err := s.loadSet(ctx,
		`SELECT DISTINCT trim(full_name) FROM authors WHERE full_name IS NOT NULL AND full_name != '' ORDER BY full_name`,
		d.Authors); err != nil {
		return nil, fmt.Errorf("loading authors: %w", err)
	}
	if err := s.loadSet(ctx,
		`SELECT DISTINCT trim(institution_name) FROM affiliations WHERE institution_name IS NOT NULL AND institution_name != '' ORDER BY institution_name`,
		d.Institutions); err != nil {
		return nil, fmt.Errorf("loading institutions: %w", err)
	}
	if err := s.loadSet(ctx,
		`SELECT DISTINCT trim(country) FROM affiliations WHERE country IS NOT NULL AND country != '' ORDER BY country`,
		d.Countries); err != nil {
		return nil, fmt.Errorf("loading countries: %w", err)
	}

	return d, nil
}

func (s *Store) loadSet(ctx context.Context, query string, into map[string]string) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		norm := Normalize(name)
		if norm == "" {
			continue
		}
		if _, ok := into[norm]; !ok {
			into[norm] = name
		}
	}
	return rows.Err()
}

// Size returns the total number of dictionary entries across all three sets.
func (d *Dictionary) Size() int {
	return len(d.Authors) + len(d.Institutions) + len(d.Countries)
}

// Normalize returns a lowercased, punctuation-stripped, whitespace-collapsed
// form of s. The same function is applied to dictionary entries at load time
// and to query text at match time, so membership checks compare like with
// like.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
