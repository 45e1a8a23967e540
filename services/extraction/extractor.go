// Package extraction pulls booking fields out of free text with fixed
// pattern rules. It never fails: no match means no value.
package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"staybot/models"
)

// Field names a BookingState field that rules can target.
type Field string

const (
	FieldFullName    Field = "fullName"
	FieldEmail       Field = "email"
	FieldCheckInDate Field = "checkInDate"
	FieldNights      Field = "nights"
	FieldRoomID      Field = "selectedRoomId"
)

// Rule is a tagged capture rule. Group 0 means the whole match.
type Rule struct {
	Field   Field
	Pattern *regexp.Regexp
	Group   int
}

// Extractor evaluates rules in order; for each field the first rule that
// yields a usable value wins.
type Extractor struct {
	rules []Rule
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{Field: FieldFullName, Pattern: regexp.MustCompile(`My name is (.*)`), Group: 1},
		{Field: FieldFullName, Pattern: regexp.MustCompile(`I am (.*)`), Group: 1},
		{Field: FieldEmail, Pattern: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
		{Field: FieldCheckInDate, Pattern: regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}`)},
		{Field: FieldNights, Pattern: regexp.MustCompile(`(\d+) nights?`), Group: 1},
		{Field: FieldRoomID, Pattern: regexp.MustCompile(`room (\d+)`), Group: 1},
	}
}

// New builds an Extractor from a custom rule set.
func New(rules []Rule) *Extractor {
	return &Extractor{rules: rules}
}

// NewDefault builds an Extractor with DefaultRules.
func NewDefault() *Extractor {
	return New(DefaultRules())
}

var defaultExtractor = NewDefault()

// Match returns the first usable raw capture for field.
func (e *Extractor) Match(field Field, text string) (string, bool) {
	for _, r := range e.rules {
		if r.Field != field {
			continue
		}
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil || r.Group >= len(m) {
			continue
		}
		v := strings.TrimSpace(m[r.Group])
		if v == "" {
			continue
		}
		return v, true
	}
	return "", false
}

func (e *Extractor) matchPositive(field Field, text string) (int, bool) {
	raw, ok := e.Match(field, text)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// FullName returns the trimmed name following "My name is" or "I am".
func (e *Extractor) FullName(text string) (string, bool) { return e.Match(FieldFullName, text) }

// Email returns the first email address in text.
func (e *Extractor) Email(text string) (string, bool) { return e.Match(FieldEmail, text) }

// Date returns the first YYYY-MM-DD or DD/MM/YYYY date, unparsed.
func (e *Extractor) Date(text string) (string, bool) { return e.Match(FieldCheckInDate, text) }

// Nights returns N from "N night(s)". Zero and overflow count as absent.
func (e *Extractor) Nights(text string) (int, bool) { return e.matchPositive(FieldNights, text) }

// RoomID returns N from "room N". Zero and overflow count as absent.
func (e *Extractor) RoomID(text string) (int, bool) { return e.matchPositive(FieldRoomID, text) }

// Apply fills every absent field of state that text provides a value for.
// Fields that are already set are never touched.
func (e *Extractor) Apply(state *models.BookingState, text string) {
	if state.FullName == nil {
		if v, ok := e.FullName(text); ok {
			state.FullName = &v
		}
	}
	if state.Email == nil {
		if v, ok := e.Email(text); ok {
			state.Email = &v
		}
	}
	if state.CheckInDate == nil {
		if v, ok := e.Date(text); ok {
			state.CheckInDate = &v
		}
	}
	if state.Nights == nil {
		if v, ok := e.Nights(text); ok {
			state.Nights = &v
		}
	}
	if state.SelectedRoomID == nil {
		if v, ok := e.RoomID(text); ok {
			state.SelectedRoomID = &v
		}
	}
}

// FullName extracts a name with the default rules.
func FullName(text string) (string, bool) { return defaultExtractor.FullName(text) }

// Email extracts an email address with the default rules.
func Email(text string) (string, bool) { return defaultExtractor.Email(text) }

// Date extracts a check-in date with the default rules.
func Date(text string) (string, bool) { return defaultExtractor.Date(text) }

// Nights extracts the length of stay with the default rules.
func Nights(text string) (int, bool) { return defaultExtractor.Nights(text) }

// RoomID extracts a room number with the default rules.
func RoomID(text string) (int, bool) { return defaultExtractor.RoomID(text) }
