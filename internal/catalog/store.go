package catalog

import "strings"

// Store identifies a retailer by its slug, e.g. "albert-heijn".
type Store string

// Known retailers, in display order.
const (
	AlbertHeijn Store = "albert-heijn"
	Jumbo       Store = "jumbo"
	Lidl        Store = "lidl"
	Aldi        Store = "aldi"
	Plus        Store = "plus"
	Dirk        Store = "dirk"
	Coop        Store = "coop"
	DekaMarkt   Store = "dekamarkt"
	Vomar       Store = "vomar"
	Hoogvliet   Store = "hoogvliet"
	Spar        Store = "spar"
	Poiesz      Store = "poiesz"
)

// KnownStores lists every retailer the catalog recognises.
var KnownStores = []Store{
	AlbertHeijn, Jumbo, Lidl, Aldi, Plus, Dirk,
	Coop, DekaMarkt, Vomar, Hoogvliet, Spar, Poiesz,
}

var storeNames = map[Store]string{
	AlbertHeijn: "Albert Heijn",
	Jumbo:       "Jumbo",
	Lidl:        "Lidl",
	Aldi:        "Aldi",
	Plus:        "Plus",
	Dirk:        "Dirk",
	Coop:        "Coop",
	DekaMarkt:   "DekaMarkt",
	Vomar:       "Vomar",
	Hoogvliet:   "Hoogvliet",
	Spar:        "Spar",
	Poiesz:      "Poiesz",
}

// ParseStore turns a display name or slug into a Store slug. Unknown names
// are slugged the same way so foreign feeds still partition cleanly.
func ParseStore(raw string) Store {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", " ")
	return Store(strings.Join(strings.Fields(s), "-"))
}

// Known reports whether s is one of KnownStores.
func (s Store) Known() bool {
	_, ok := storeNames[s]
	return ok
}

// DisplayName returns the human-readable retailer name.
func (s Store) DisplayName() string {
	if name, ok := storeNames[s]; ok {
		return name
	}
	return string(s)
}

// UnmarshalText canonicalises the store slug on decode.
func (s *Store) UnmarshalText(text []byte) error {
	*s = ParseStore(string(text))
	return nil
}
