package organizer

// MatchState classifies how closely a record corresponds to the records
// sharing its id in another library.
type MatchState int

const (
	// MatchNone means no candidate shares the id, or none shares title and version.
	MatchNone MatchState = iota
	// MatchPartial means a candidate shares id, title and version but
	// differs in unity version, version id, or publish date.
	MatchPartial
	// MatchExact means a candidate matches the full identity tuple.
	MatchExact
)

func (m MatchState) String() string {
	switch m {
	case MatchNone:
		return "None"
	case MatchPartial:
		return "Partial"
	case MatchExact:
		return "Exact"
	default:
		return "Unknown"
	}
}

// FieldMatch records which identity fields of two records are equal.
type FieldMatch struct {
	Title        bool `json:"title" yaml:"title"`
	UnityVersion bool `json:"unity_version" yaml:"unity_version"`
	Version      bool `json:"version" yaml:"version"`
	VersionID    bool `json:"version_id" yaml:"version_id"`
	PubDate      bool `json:"pubdate" yaml:"pubdate"`
}

// CompareIdentity compares the identity fields of a and b. The id is not
// compared; callers partition by id first.
func CompareIdentity(a, b *PackageRecord) FieldMatch {
	return FieldMatch{
		Title:        a.Title == b.Title,
		UnityVersion: a.UnityVersion == b.UnityVersion,
		Version:      a.Version == b.Version,
		VersionID:    a.VersionID == b.VersionID,
		PubDate:      a.PubDate == b.PubDate,
	}
}

// Exact reports whether every identity field matches.
func (m FieldMatch) Exact() bool {
	return m.Title && m.Version && m.UnityVersion && m.VersionID && m.PubDate
}

// Partial reports whether title and version match but the full tuple does not.
func (m FieldMatch) Partial() bool {
	return m.Title && m.Version && !m.Exact()
}
