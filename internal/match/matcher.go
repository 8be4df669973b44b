package match

import (
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
)

// minWordLen is the shortest word considered by the word-overlap rule;
// shorter words are articles, units and other noise.
const minWordLen = 3

// WordOverlap reports whether any word of a with at least three characters
// is a substring of a word of b (also three or more characters long), or
// the other way around. Both inputs must already be normalised.
func WordOverlap(a, b string) bool {
	return wordOverlap(Tokens(a), Tokens(b))
}

func wordOverlap(aWords, bWords []string) bool {
	for _, aw := range aWords {
		if len(aw) < minWordLen {
			continue
		}
		for _, bw := range bWords {
			if len(bw) < minWordLen {
				continue
			}
			if strings.Contains(bw, aw) || strings.Contains(aw, bw) {
				return true
			}
		}
	}
	return false
}

// SynonymMatch reports whether two normalised names share a synonym group.
func SynonymMatch(table *SynonymTable, a, b string) bool {
	return table.Related(a, b)
}

// PreparedOffer is an offer with its product name normalised and tokenised.
type PreparedOffer struct {
	Offer      catalog.Offer
	normalized string
	words      []string
}

// PreparedOffers is an offer snapshot ready for repeated matching.
type PreparedOffers []PreparedOffer

// Prepare normalises every offer name once.
func Prepare(offers []catalog.Offer) PreparedOffers {
	out := make(PreparedOffers, len(offers))
	for i, o := range offers {
		norm := Normalize(o.ProductName)
		out[i] = PreparedOffer{Offer: o, normalized: norm, words: Tokens(norm)}
	}
	return out
}

// Matcher finds the offers that plausibly sell an ingredient.
type Matcher struct {
	synonyms *SynonymTable
	strategy Strategy
}

// NewMatcher builds a matcher. Nil arguments select the defaults.
func NewMatcher(synonyms *SynonymTable, strategy Strategy) *Matcher {
	if synonyms == nil {
		synonyms = DefaultSynonymTable()
	}
	if strategy == nil {
		strategy = HighestDiscount
	}
	return &Matcher{synonyms: synonyms, strategy: strategy}
}

// Candidates returns, in input order, every offer that satisfies the
// word-overlap rule or the synonym rule for the ingredient.
func (m *Matcher) Candidates(ing catalog.Ingredient, offers []catalog.Offer) []catalog.Offer {
	return m.CandidatesPrepared(ing, Prepare(offers))
}

// CandidatesPrepared is Candidates over a prepared snapshot.
func (m *Matcher) CandidatesPrepared(ing catalog.Ingredient, offers PreparedOffers) []catalog.Offer {
	name := Normalize(ing.Name)
	if name == "" {
		return nil
	}
	words := Tokens(name)

	var out []catalog.Offer
	for _, po := range offers {
		if wordOverlap(words, po.words) || m.synonyms.Related(name, po.normalized) {
			out = append(out, po.Offer)
		}
	}
	return out
}

// Best picks one candidate with the matcher's strategy.
func (m *Matcher) Best(candidates []catalog.Offer) (catalog.Offer, bool) {
	return m.strategy.Select(candidates)
}

// Strategy returns the configured best-offer strategy.
func (m *Matcher) Strategy() Strategy { return m.strategy }

// Synonyms returns the configured synonym table.
func (m *Matcher) Synonyms() *SynonymTable { return m.synonyms }
