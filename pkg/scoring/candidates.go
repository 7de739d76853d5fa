package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/districtscope/districtscope/pkg/election"
)

const democratic = "democratic"

// NameMatcher decides whether a filed candidate is the sitting incumbent.
type NameMatcher interface {
	// Key returns the machine-readable strategy name.
	Key() string
	// Match reports whether candidate and incumbent name the same person.
	Match(incumbent, candidate string) bool
}

// SubstringMatcher matches when either lowercased name contains the other.
// Loose on purpose: it tolerates middle names and suffixes, at the cost of
// false positives such as "Lee" matching "Leeman".
type SubstringMatcher struct{}

func (SubstringMatcher) Key() string { return "substring" }

func (SubstringMatcher) Match(incumbent, candidate string) bool {
	inc := strings.ToLower(incumbent)
	cand := strings.ToLower(candidate)
	return strings.Contains(cand, inc) || strings.Contains(inc, cand)
}

// TokenMatcher compares normalized name tokens: surnames must be equal and
// one first name must be a prefix of the other ("Chris" / "Christopher").
type TokenMatcher struct{}

func (TokenMatcher) Key() string { return "token" }

func (TokenMatcher) Match(incumbent, candidate string) bool {
	a := nameTokens(incumbent)
	b := nameTokens(candidate)
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if a[len(a)-1] != b[len(b)-1] {
		return false
	}
	if len(a) == 1 || len(b) == 1 {
		return true
	}
	return strings.HasPrefix(a[0], b[0]) || strings.HasPrefix(b[0], a[0])
}

var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
}

// nameTokens lowercases, strips punctuation, and drops suffixes and initials.
func nameTokens(name string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsSpace(r):
			return unicode.ToLower(r)
		case r == '-':
			return ' '
		default:
			return -1
		}
	}, name)

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if nameSuffixes[tok] || len([]rune(tok)) == 1 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// MatcherByKey returns the NameMatcher registered under key. An empty key
// selects the substring matcher.
func MatcherByKey(key string) (NameMatcher, error) {
	switch strings.ToLower(key) {
	case "", "substring":
		return SubstringMatcher{}, nil
	case "token":
		return TokenMatcher{}, nil
	default:
		return nil, fmt.Errorf("unknown name matching strategy %q (want substring or token)", key)
	}
}

// CandidateStatus holds the facts derived from a district's filings.
type CandidateStatus struct {
	HasDemocrat    bool
	OpenSeat       bool
	DemIncumbent   bool
	IncumbentFiled bool
}

// ResolveStatus derives candidate facts from filings and the incumbent record.
// A nil matcher uses SubstringMatcher.
func ResolveStatus(candidates []election.CandidateFiling, incumbent *election.Incumbent, matcher NameMatcher) CandidateStatus {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}

	var st CandidateStatus
	for _, c := range candidates {
		if strings.EqualFold(c.Party, democratic) {
			st.HasDemocrat = true
			break
		}
	}

	if incumbent == nil {
		st.OpenSeat = true
		return st
	}

	st.DemIncumbent = strings.EqualFold(incumbent.Party, democratic)
	for _, c := range candidates {
		if matcher.Match(incumbent.Name, c.Name) {
			st.IncumbentFiled = true
			break
		}
	}
	st.OpenSeat = !st.IncumbentFiled
	return st
}
