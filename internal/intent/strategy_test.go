// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"testing"

	"github.com/pdiddy/scholar-search/internal/vecindex"
)

func allAvailable(vecindex.Kind) bool  { return true }
func noneAvailable(vecindex.Kind) bool { return false }

func only(kinds ...vecindex.Kind) func(vecindex.Kind) bool {
	set := make(map[vecindex.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(k vecindex.Kind) bool { return set[k] }
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		intent    Intent
		available func(vecindex.Kind) bool
		want      Plan
	}{
		{
			name:      "semantic uses content index",
			intent:    Intent{Kind: KindSemantic},
			available: allAvailable,
			want:      Plan{Primary: vecindex.KindContent, Secondary: vecindex.KindCombined},
		},
		{
			name:      "author uses metadata index",
			intent:    Intent{Kind: KindAuthor},
			available: allAvailable,
			want:      Plan{Primary: vecindex.KindMetadata, Secondary: vecindex.KindCombined},
		},
		{
			name:      "institution uses institution index",
			intent:    Intent{Kind: KindInstitution},
			available: allAvailable,
			want:      Plan{Primary: vecindex.KindInstitution, Secondary: vecindex.KindCombined},
		},
		{
			name:      "geographic uses institution index",
			intent:    Intent{Kind: KindGeographic},
			available: allAvailable,
			want:      Plan{Primary: vecindex.KindInstitution, Secondary: vecindex.KindCombined},
		},
		{
			name:      "year filter flows to post filter",
			intent:    Intent{Kind: KindYearFiltered, Years: []int{2023}},
			available: allAvailable,
			want:      Plan{Primary: vecindex.KindContent, Secondary: vecindex.KindFull, YearPostFilter: true},
		},
		{
			name:      "combined intent with year keeps post filter",
			intent:    Intent{Kind: KindCombined, Years: []int{2023}},
			available: allAvailable,
			want:      Plan{Primary: vecindex.KindFull, Secondary: vecindex.KindCombined, YearPostFilter: true},
		},
		{
			name:      "missing primary demotes to secondary",
			intent:    Intent{Kind: KindAuthor},
			available: only(vecindex.KindCombined),
			want:      Plan{Primary: vecindex.KindCombined},
		},
		{
			name:      "combined substitutes unavailable primary",
			intent:    Intent{Kind: KindYearFiltered, Years: []int{2023}},
			available: only(vecindex.KindFull, vecindex.KindCombined),
			want:      Plan{Primary: vecindex.KindCombined, Secondary: vecindex.KindFull, YearPostFilter: true},
		},
		{
			name:      "secondary serves when combined also missing",
			intent:    Intent{Kind: KindYearFiltered, Years: []int{2023}},
			available: only(vecindex.KindFull),
			want:      Plan{Primary: vecindex.KindFull, YearPostFilter: true},
		},
		{
			name:      "only combined available serves semantic",
			intent:    Intent{Kind: KindSemantic},
			available: only(vecindex.KindCombined),
			want:      Plan{Primary: vecindex.KindCombined},
		},
		{
			name:      "no indexes forces relational",
			intent:    Intent{Kind: KindSemantic},
			available: noneAvailable,
			want:      Plan{RelationalMandatory: true},
		},
		{
			name:      "no indexes keeps year filter on relational path",
			intent:    Intent{Kind: KindYearFiltered, Years: []int{2023}},
			available: noneAvailable,
			want:      Plan{YearPostFilter: true, RelationalMandatory: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.intent, tt.available)
			if got != tt.want {
				t.Errorf("Select = %+v, want %+v", got, tt.want)
			}
		})
	}
}
