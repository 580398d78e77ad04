package phone

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Engine names accepted by EngineByName.
const (
	EngineBruteForce = "bruteforce"
	EngineRegexp     = "regexp"
)

// ErrUnknownEngine is returned by EngineByName for names it does not know.
var ErrUnknownEngine = errors.New("unknown engine")

// Engine finds phone numbers in text.
type Engine interface {
	Name() string
	Find(text string) []Match
}

// BruteForce checks every window with IsPhoneNumber.
type BruteForce struct{}

// Name returns "bruteforce".
func (BruteForce) Name() string { return EngineBruteForce }

// Find delegates to FindMatches.
func (BruteForce) Find(text string) []Match { return FindMatches(text) }

// numberRE is the same shape IsPhoneNumber checks.
var numberRE = regexp.MustCompile(`[0-9]{3}-[0-9]{3}-[0-9]{4}`)

// Regexp finds numbers with a compiled regular expression.
// Matches never overlap: in "415-555-4242-555-1234" it reports only the
// number at offset 0, where BruteForce also reports "242-555-1234" at 9.
type Regexp struct{}

// Name returns "regexp".
func (Regexp) Name() string { return EngineRegexp }

// Find returns non-overlapping matches in order.
func (Regexp) Find(text string) []Match {
	locs := numberRE.FindAllStringIndex(text, -1)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{Number: text[loc[0]:loc[1]], Offset: loc[0]})
	}
	return matches
}

var engines = map[string]Engine{
	EngineBruteForce: BruteForce{},
	EngineRegexp:     Regexp{},
}

// EngineByName returns the engine registered under name (case-insensitive).
func EngineByName(name string) (Engine, error) {
	e, ok := engines[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownEngine, name, strings.Join(EngineNames(), ", "))
	}
	return e, nil
}

// EngineNames lists the registered engine names, sorted.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
