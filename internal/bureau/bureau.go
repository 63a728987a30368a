package bureau

import (
	"errors"
	"strings"
)

// Bureau identifies one of the simulated credit-reporting sources.
type Bureau string

const (
	CIBIL    Bureau = "CIBIL"
	Experian Bureau = "EXPERIAN"
	Equifax  Bureau = "EQUIFAX"
	CRIF     Bureau = "CRIF"
)

var ErrUnknownBureau = errors.New("unknown_bureau")

// All returns the closed bureau set in display order.
func All() []Bureau {
	return []Bureau{CIBIL, Experian, Equifax, CRIF}
}

// Parse validates a single bureau identifier.
func Parse(value string) (Bureau, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(CIBIL):
		return CIBIL, nil
	case string(Experian):
		return Experian, nil
	case string(Equifax):
		return Equifax, nil
	case string(CRIF):
		return CRIF, nil
	default:
		return "", ErrUnknownBureau
	}
}

// ParseSet validates a bureau selection, rejecting unknown members and
// collapsing duplicates.
func ParseSet(values []string) ([]Bureau, error) {
	if len(values) == 0 {
		return nil, ErrUnknownBureau
	}

	seen := make(map[Bureau]struct{}, len(values))
	set := make([]Bureau, 0, len(values))
	for _, value := range values {
		b, err := Parse(value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		set = append(set, b)
	}
	return set, nil
}

// Strings converts a bureau set for storage and transport.
func Strings(set []Bureau) []string {
	out := make([]string, 0, len(set))
	for _, b := range set {
		out = append(out, string(b))
	}
	return out
}
