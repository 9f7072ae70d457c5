package scenarios

import "strings"

// ID identifies a bias-analysis framing. The set is closed: adding a scenario
// means adding a constant here, a case in String and a catalog entry, and
// Load refuses to start when the catalog is missing one.
type ID int

const (
	// Unknown covers any scenario id the catalog does not define. It is a
	// valid input that selects the generic prompt.
	Unknown ID = iota
	Amazon
	HireVue
	Keyword
	Socioeconomic
)

// Known lists every scenario except Unknown, in display order.
func Known() []ID {
	return []ID{Amazon, HireVue, Keyword, Socioeconomic}
}

// String returns the wire identifier.
func (id ID) String() string {
	switch id {
	case Amazon:
		return "amazon"
	case HireVue:
		return "hirevue"
	case Keyword:
		return "keyword"
	case Socioeconomic:
		return "socioeconomic"
	default:
		return "unknown"
	}
}

// Parse maps a wire identifier to an ID. Unrecognized values yield Unknown.
func Parse(raw string) ID {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, id := range Known() {
		if id.String() == key {
			return id
		}
	}
	return Unknown
}
