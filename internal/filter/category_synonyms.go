package filter

import "strings"

var categorySynonyms = map[string][]string{
	"vlees":       {"meat", "kip", "gevogelte", "rund", "varken", "gehakt", "vleeswaren"},
	"vis":         {"fish", "seafood", "zeevruchten", "schaaldieren"},
	"groenten":    {"groente", "produce", "vegetables", "aardappelen", "agf"},
	"fruit":       {"fruits", "vers fruit"},
	"zuivel":      {"dairy", "kaas", "melk", "yoghurt", "eieren"},
	"brood":       {"bakkerij", "bakery", "banket"},
	"pasta-rijst": {"pasta", "rijst", "noodles", "wereldkeuken"},
	"conserven":   {"blik", "pot", "canned", "houdbaar"},
	"diepvries":   {"frozen", "diepvriesproducten"},
	"sauzen":      {"saus", "sauce", "dressing", "kruiden"},
	"dranken":     {"drinken", "drinks", "frisdrank", "sap"},
}

type categoryMatcher struct {
	exactAliases []string
	normalized   map[string]struct{}
}

func newCategoryMatcher(wanted string) categoryMatcher {
	aliases := categoryAliasList(wanted)
	if len(aliases) == 0 {
		return categoryMatcher{}
	}

	normalized := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		normalized[normalizeCategory(alias)] = struct{}{}
	}

	return categoryMatcher{
		exactAliases: aliases,
		normalized:   normalized,
	}
}

func categoryAliasList(wanted string) []string {
	raw := strings.TrimSpace(wanted)
	group := resolveCategoryGroup(wanted)
	if raw == "" && group == "" {
		return nil
	}

	out := make([]string, 0, 1+len(categorySynonyms[group]))
	addAlias := func(alias string) {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			return
		}
		for _, existing := range out {
			if strings.EqualFold(existing, alias) {
				return
			}
		}
		out = append(out, alias)
	}

	addAlias(raw)
	addAlias(group)
	for _, s := range categorySynonyms[group] {
		addAlias(s)
	}
	return out
}

// CategoryGroup resolves a category or one of its aliases to the canonical
// offer category ("kip" -> "vlees"). Unknown values come back normalised.
func CategoryGroup(wanted string) string {
	return resolveCategoryGroup(wanted)
}

func resolveCategoryGroup(wanted string) string {
	norm := normalizeCategory(wanted)
	if norm == "" {
		return ""
	}

	for key := range categorySynonyms {
		if normalizeCategory(key) == norm {
			return key
		}
	}
	for key, synonyms := range categorySynonyms {
		for _, s := range synonyms {
			if normalizeCategory(s) == norm {
				return key
			}
		}
	}
	return norm
}

func (m categoryMatcher) matches(category string) bool {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return false
	}
	for _, alias := range m.exactAliases {
		if strings.EqualFold(trimmed, alias) {
			return true
		}
	}

	// Without separators normalisation cannot produce a new match.
	if !strings.ContainsAny(trimmed, "-_ ") {
		return false
	}

	_, ok := m.normalized[normalizeCategory(trimmed)]
	return ok
}

func normalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}
