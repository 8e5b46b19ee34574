// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intent

// countrySynonyms maps demonyms and common aliases to the normalized
// country name they stand for. A synonym only produces a match when the
// canonical name actually exists in the corpus dictionary, so unknown
// countries never appear in an intent.
var countrySynonyms = map[string]string{
	"american":    "united states",
	"usa":         "united states",
	"us":          "united states",
	"british":     "united kingdom",
	"english":     "united kingdom",
	"scottish":    "united kingdom",
	"uk":          "united kingdom",
	"chinese":     "china",
	"german":      "germany",
	"french":      "france",
	"italian":     "italy",
	"spanish":     "spain",
	"dutch":       "netherlands",
	"swiss":       "switzerland",
	"swedish":     "sweden",
	"norwegian":   "norway",
	"danish":      "denmark",
	"finnish":     "finland",
	"japanese":    "japan",
	"korean":      "south korea",
	"indian":      "india",
	"canadian":    "canada",
	"brazilian":   "brazil",
	"mexican":     "mexico",
	"australian":  "australia",
	"russian":     "russia",
	"polish":      "poland",
	"austrian":    "austria",
	"belgian":     "belgium",
	"israeli":     "israel",
	"turkish":     "turkey",
	"iranian":     "iran",
	"egyptian":    "egypt",
	"singaporean": "singapore",
	"taiwanese":   "taiwan",
	"portuguese":  "portugal",
	"greek":       "greece",
	"czech":       "czech republic",
	"irish":       "ireland",
}
