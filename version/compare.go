package version

import (
	goversion "github.com/hashicorp/go-version"
)

// Relation describes a candidate release relative to the running version.
type Relation int

const (
	// RelationUnknown means one of the versions could not be parsed,
	// typically because the running version could not be determined.
	RelationUnknown Relation = iota
	RelationNewer
	RelationSame
	RelationOlder
)

// Compare relates candidate to current. The result is informational
// only; it never gates an update.
func Compare(current, candidate string) Relation {
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return RelationUnknown
	}

	cand, err := goversion.NewVersion(candidate)
	if err != nil {
		return RelationUnknown
	}

	switch {
	case cand.GreaterThan(cur):
		return RelationNewer
	case cand.Equal(cur):
		return RelationSame
	default:
		return RelationOlder
	}
}
