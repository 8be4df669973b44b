package match

import (
	"strings"

	"github.com/tayloree/dealchef/internal/catalog"
)

// DefaultStaples are household basics assumed to be in every kitchen.
var DefaultStaples = []string{
	"zout", "peper", "zwarte peper",
	"paprikapoeder", "knoflookpoeder", "uienpoeder",
	"oregano", "basilicum", "tijm", "komijn", "kerrie", "kurkuma",
	"kaneel", "nootmuskaat", "laurierblad", "kruiden", "specerijen",
	"olie", "zonnebloemolie", "olijfolie", "plantaardige olie",
	"bloem", "suiker", "boter", "margarine",
	"ui", "uien", "knoflook",
	"bouillon", "bouillonblokje", "groentebouillon", "kippenbouillon", "runderbouillon",
	"azijn", "witte wijnazijn", "balsamico azijn",
	"sojasaus", "tomatenpuree", "mosterd",
}

// defaultStapleExceptions are words that contain a staple term but are
// regular groceries.
var defaultStapleExceptions = []string{
	"bloemkool", "zonnebloempit", "peperoni", "boterham", "kruidenkaas",
}

// minSubstringTerm is the shortest staple term matched inside other words.
const minSubstringTerm = 3

// StapleClassifier decides whether an ingredient is a pantry staple.
type StapleClassifier struct {
	terms      []string
	termWords  map[string]struct{}
	exceptions []string
}

// NewStapleClassifier builds a classifier over terms. With no terms the
// default list is used.
func NewStapleClassifier(terms ...string) *StapleClassifier {
	if len(terms) == 0 {
		terms = DefaultStaples
	}
	c := &StapleClassifier{termWords: make(map[string]struct{})}
	for _, term := range terms {
		c.add(term)
	}
	for _, ex := range defaultStapleExceptions {
		c.exceptions = append(c.exceptions, Normalize(ex))
	}
	return c
}

// WithExtra returns a copy extended with more staple terms.
func (c *StapleClassifier) WithExtra(terms ...string) *StapleClassifier {
	out := &StapleClassifier{
		terms:      append([]string(nil), c.terms...),
		termWords:  make(map[string]struct{}, len(c.termWords)),
		exceptions: c.exceptions,
	}
	for w := range c.termWords {
		out.termWords[w] = struct{}{}
	}
	for _, term := range terms {
		out.add(term)
	}
	return out
}

func (c *StapleClassifier) add(term string) {
	norm := Normalize(term)
	if norm == "" {
		return
	}
	for _, existing := range c.terms {
		if existing == norm {
			return
		}
	}
	c.terms = append(c.terms, norm)
	for _, w := range Tokens(norm) {
		c.termWords[w] = struct{}{}
	}
}

// Terms returns the normalised staple terms.
func (c *StapleClassifier) Terms() []string {
	return append([]string(nil), c.terms...)
}

// IsPantryStaple classifies an ingredient by name alone. The name is a
// staple when it contains a staple term, or when it is itself a word of a
// staple term ("peper" via "zwarte peper"). Terms shorter than three
// characters only match whole words.
func (c *StapleClassifier) IsPantryStaple(name string) bool {
	norm := Normalize(name)
	if norm == "" {
		return false
	}
	if _, ok := c.termWords[norm]; ok {
		return true
	}

	words := Tokens(norm)
	for _, term := range c.terms {
		if len(term) < minSubstringTerm {
			if containsWord(words, term) {
				return true
			}
			continue
		}
		if strings.Contains(norm, term) && !c.excepted(words, term) {
			return true
		}
	}
	return false
}

// IsStaple honours both the author-set flag and the name classifier.
func (c *StapleClassifier) IsStaple(ing catalog.Ingredient) bool {
	return ing.IsPantryStaple || c.IsPantryStaple(ing.Name)
}

// excepted reports whether every occurrence of term sits inside an
// exception word.
func (c *StapleClassifier) excepted(words []string, term string) bool {
	hit := false
	for _, w := range words {
		if !strings.Contains(w, term) {
			continue
		}
		if !c.isException(w) {
			return false
		}
		hit = true
	}
	return hit
}

func (c *StapleClassifier) isException(word string) bool {
	for _, ex := range c.exceptions {
		if strings.Contains(word, ex) {
			return true
		}
	}
	return false
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
