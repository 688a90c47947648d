package search

import (
	"strings"

	"coverwall/internal/metadata"
	"coverwall/internal/ranking"
)

// MaxRequests is the hard ceiling on expansion requests per search.
const MaxRequests = 6

// Region selects which catalog storefront a request targets.
type Region int

const (
	RegionPrimary Region = iota
	RegionSecondary
)

func (r Region) String() string {
	if r == RegionSecondary {
		return "secondary"
	}
	return "primary"
}

// RegionPlan maps the abstract regions to storefront country codes.
type RegionPlan struct {
	Primary   string
	Secondary string
}

// Country returns the storefront for r.
func (p RegionPlan) Country(r Region) string {
	if r == RegionSecondary {
		return p.Secondary
	}
	return p.Primary
}

// Regions picks a plan by query script.
type Regions struct {
	Latin RegionPlan
	Han   RegionPlan
}

// DefaultRegions favors storefronts that index Chinese-language music well
// for Han queries.
func DefaultRegions() Regions {
	return Regions{
		Latin: RegionPlan{Primary: "us", Secondary: "gb"},
		Han:   RegionPlan{Primary: "hk", Secondary: "tw"},
	}
}

// ExpansionRequest is one search to dispatch for a query.
type ExpansionRequest struct {
	Term      string
	Region    Region
	Country   string
	Attribute metadata.Attribute
}

func (r ExpansionRequest) key() string {
	return strings.ToLower(r.Term) + "\x00" + r.Country + "\x00" + r.Attribute.Param()
}

// Expander turns one query into a small, bounded set of searches.
type Expander struct {
	regions     Regions
	maxRequests int
}

// NewExpander creates an Expander. maxRequests is clamped to [1, MaxRequests].
func NewExpander(regions Regions, maxRequests int) *Expander {
	if maxRequests <= 0 || maxRequests > MaxRequests {
		maxRequests = MaxRequests
	}
	return &Expander{regions: regions, maxRequests: maxRequests}
}

// Expand returns the distinct requests for q in priority order.
func (e *Expander) Expand(q *ranking.Query) []ExpansionRequest {
	if q.Raw == "" {
		return nil
	}

	plan := e.regions.Latin
	if q.IsHan() {
		plan = e.regions.Han
	}
	artist := q.RecommendedArtist

	var reqs []ExpansionRequest
	seen := make(map[string]struct{})
	add := func(term string, region Region, attr metadata.Attribute) {
		term = strings.TrimSpace(term)
		if term == "" || len(reqs) >= e.maxRequests {
			return
		}
		r := ExpansionRequest{Term: term, Region: region, Country: plan.Country(region), Attribute: attr}
		if _, dup := seen[r.key()]; dup {
			return
		}
		seen[r.key()] = struct{}{}
		reqs = append(reqs, r)
	}

	add(q.Raw, RegionPrimary, metadata.AttributeDefault)

	// Common-word titles are disambiguated by the known performer.
	if artist != "" {
		add(artist+" "+q.Raw, RegionPrimary, metadata.AttributeDefault)
	}

	if q.IsHan() && len(q.Translations) > 0 {
		term := q.Translations[0]
		if artist != "" {
			term = artist + " " + term
		}
		add(term, RegionPrimary, metadata.AttributeDefault)
	}

	if !q.IsHan() && artist == "" {
		add(q.Raw, RegionPrimary, metadata.AttributeSongTerm)
	}

	add(q.Raw, RegionSecondary, metadata.AttributeSongTerm)

	return reqs
}
