package storage

import "fmt"

// Kind identifies one of the per-user documents
type Kind string

const (
	KindRoster     Kind = "ships"
	KindFormations Kind = "decks"
	KindBonus      Kind = "bonus"
	KindCatalog    Kind = "master"
	KindBuckets    Kind = "stype_config"
)

// Kinds lists every document kind in route order
func Kinds() []Kind {
	return []Kind{KindRoster, KindFormations, KindBonus, KindCatalog, KindBuckets}
}

// ParseKind validates a kind name (the route segment)
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// FileSuffix is appended to the username to build the file name; the roster has none
func (k Kind) FileSuffix() string {
	switch k {
	case KindRoster:
		return ""
	case KindFormations:
		return "_decks"
	case KindBonus:
		return "_bonus"
	case KindCatalog:
		return "_master"
	case KindBuckets:
		return "_stype_config"
	}
	return "_" + string(k)
}

// EmptyDocument is returned for a kind that was never saved
func (k Kind) EmptyDocument() []byte {
	if k == KindCatalog {
		return []byte("{}")
	}
	return []byte("[]")
}

func (k Kind) String() string {
	return string(k)
}
