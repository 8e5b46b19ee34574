// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

import (
	"github.com/pdiddy/scholar-search/internal/vecindex"
)

// Plan is the search strategy for one intent: which index to try first,
// which to fall back to, and whether relational search must run instead.
type Plan struct {
	// Primary is the index searched first. Empty when RelationalMandatory.
	Primary vecindex.Kind

	// Secondary is the fallback index when the primary yields nothing
	// usable. Empty when there is no second choice.
	Secondary vecindex.Kind

	// YearPostFilter tells the engine to drop vector hits whose article
	// year does not satisfy the intent.
	YearPostFilter bool

	// RelationalMandatory forces keyword search against the article
	// store because no usable vector index is available.
	RelationalMandatory bool
}

// strategies maps each intent kind to its preferred index pair. Entity
// intents lead with the narrow index tuned for their entity class and fall
// back to a broader one; combined and semantic intents start broad.
var strategies = map[Kind]Plan{
	KindAuthor:       {Primary: vecindex.KindMetadata, Secondary: vecindex.KindCombined},
	KindInstitution:  {Primary: vecindex.KindInstitution, Secondary: vecindex.KindCombined},
	KindGeographic:   {Primary: vecindex.KindInstitution, Secondary: vecindex.KindCombined},
	KindYearFiltered: {Primary: vecindex.KindContent, Secondary: vecindex.KindFull, YearPostFilter: true},
	KindCombined:     {Primary: vecindex.KindFull, Secondary: vecindex.KindCombined},
	KindSemantic:     {Primary: vecindex.KindContent, Secondary: vecindex.KindCombined},
}

// Select maps an intent to a plan given which indexes are loaded. The
// combined index substitutes for an unavailable primary; when it too is
// missing, the kind's own secondary gets a shot. With no vector index
// usable at all, relational search becomes mandatory.
func Select(it Intent, available func(vecindex.Kind) bool) Plan {
	plan, ok := strategies[it.Kind]
	if !ok {
		plan = strategies[KindSemantic]
	}
	if it.HasYear() {
		plan.YearPostFilter = true
	}

	if !available(plan.Primary) {
		plan.Primary = vecindex.KindCombined
	}
	if !available(plan.Primary) {
		plan.Primary = plan.Secondary
		plan.Secondary = ""
	}
	if plan.Secondary == plan.Primary || !available(plan.Secondary) {
		plan.Secondary = ""
	}
	if !available(plan.Primary) {
		return Plan{YearPostFilter: plan.YearPostFilter, RelationalMandatory: true}
	}
	return plan
}
