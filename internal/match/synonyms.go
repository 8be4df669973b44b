package match

import "strings"

// SynonymGroup ties a base ingredient term to the product-name variants that
// should count as the same thing.
type SynonymGroup struct {
	Base     string   `json:"base" yaml:"base"`
	Variants []string `json:"variants" yaml:"variants"`
}

// DefaultSynonyms is the built-in Dutch ingredient table.
var DefaultSynonyms = []SynonymGroup{
	{Base: "gehakt", Variants: []string{"rundergehakt", "varkensgehakt", "half om half", "half-om-half gehakt", "kipgehakt"}},
	{Base: "kip", Variants: []string{"kipfilet", "kipdrumstick", "kippendij", "kippenvleugel", "kippenborst", "kippenbout"}},
	{Base: "tomaat", Variants: []string{"tomaten", "cherrytomaat", "roma tomaat", "trostomaat", "tomatenblokjes", "passata"}},
	{Base: "bonen", Variants: []string{"kidneybonen", "witte bonen", "zwarte bonen", "bruine bonen", "cannellinibonen"}},
	{Base: "pasta", Variants: []string{"spaghetti", "penne", "macaroni", "fusilli", "tagliatelle", "linguine", "lasagne"}},
	{Base: "rijst", Variants: []string{"basmatirijst", "jasmijnrijst", "witte rijst", "zilvervliesrijst", "risottorijst"}},
	{Base: "kaas", Variants: []string{"jonge kaas", "belegen kaas", "oude kaas", "geraspte kaas", "goudse kaas", "parmezaan", "mozzarella"}},
	{Base: "melk", Variants: []string{"halfvolle melk", "volle melk", "magere melk"}},
	{Base: "worst", Variants: []string{"rookworst", "braadworst"}},
	{Base: "varken", Variants: []string{"varkensschouder", "varkenshaas", "spek", "varkensvlees"}},
	{Base: "rund", Variants: []string{"rundvlees", "runderstoofvlees", "biefstuk", "rundergehakt"}},
	{Base: "linzen", Variants: []string{"rode linzen", "bruine linzen"}},
	{Base: "pompoen", Variants: []string{"flespompoen", "hokkaido", "butternut"}},
	{Base: "paprika", Variants: []string{"rode paprika", "groene paprika", "gele paprika", "paprika mix"}},
	{Base: "aardappel", Variants: []string{"aardappelen", "kruimige aardappelen", "vastkokende aardappelen"}},
	{Base: "wortel", Variants: []string{"wortelen", "winterwortel", "bospeen"}},
	{Base: "room", Variants: []string{"slagroom", "kookroom", "creme fraiche"}},
}

// SynonymTable is an ordered, pre-normalised set of synonym groups.
type SynonymTable struct {
	groups [][]string // each entry: base followed by its variants, normalised
	bases  []string
}

// NewSynonymTable normalises groups. Groups sharing a base are merged.
func NewSynonymTable(groups ...SynonymGroup) *SynonymTable {
	t := &SynonymTable{}
	for _, g := range groups {
		t.add(g)
	}
	return t
}

// DefaultSynonymTable returns a table over DefaultSynonyms.
func DefaultSynonymTable() *SynonymTable {
	return NewSynonymTable(DefaultSynonyms...)
}

// Merge returns a copy of t extended with extra groups. Variants of an
// existing base are appended to that group.
func (t *SynonymTable) Merge(extra ...SynonymGroup) *SynonymTable {
	out := &SynonymTable{
		groups: make([][]string, len(t.groups)),
		bases:  append([]string(nil), t.bases...),
	}
	for i, g := range t.groups {
		out.groups[i] = append([]string(nil), g...)
	}
	for _, g := range extra {
		out.add(g)
	}
	return out
}

func (t *SynonymTable) add(g SynonymGroup) {
	base := Normalize(g.Base)
	if base == "" {
		return
	}
	idx := -1
	for i, b := range t.bases {
		if b == base {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.bases = append(t.bases, base)
		t.groups = append(t.groups, []string{base})
		idx = len(t.groups) - 1
	}
	for _, v := range g.Variants {
		norm := Normalize(v)
		if norm == "" || containsWord(t.groups[idx], norm) {
			continue
		}
		t.groups[idx] = append(t.groups[idx], norm)
	}
}

// Len returns the number of groups.
func (t *SynonymTable) Len() int { return len(t.groups) }

// Bases returns the normalised base terms in table order.
func (t *SynonymTable) Bases() []string { return append([]string(nil), t.bases...) }

// Groups returns the table contents.
func (t *SynonymTable) Groups() []SynonymGroup {
	out := make([]SynonymGroup, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, SynonymGroup{Base: g[0], Variants: append([]string(nil), g[1:]...)})
	}
	return out
}

// groupsFor returns the indexes of every group whose base or a variant
// occurs in the normalised text.
func (t *SynonymTable) groupsFor(normalized string) []int {
	var hits []int
	for i, g := range t.groups {
		for _, term := range g {
			if strings.Contains(normalized, term) {
				hits = append(hits, i)
				break
			}
		}
	}
	return hits
}

// Related reports whether two normalised names share a synonym group.
func (t *SynonymTable) Related(a, b string) bool {
	if t == nil || a == "" || b == "" {
		return false
	}
	for _, i := range t.groupsFor(a) {
		for _, term := range t.groups[i] {
			if strings.Contains(b, term) {
				return true
			}
		}
	}
	return false
}
