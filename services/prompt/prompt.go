// Package prompt builds the system instruction for each turn from the
// current booking state.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"staybot/models"
)

const guidedFlow = `Guide the user through the booking process in this order:
1. Ask for their name, email, and check-in/check-out dates.
2. Calculate the duration of stay.
3. Show available room options.
4. Confirm booking details.
5. Complete the booking.

Do not repeat information unnecessarily. Make sure the conversation is dynamic and smooth.`

// Build returns the system instruction for state. The output depends only on state.
func Build(state models.BookingState) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a helpful hotel booking assistant. The current booking state is: %s.\n", stateJSON(state))
	sb.WriteString(guidedFlow)

	for _, clause := range KnownFieldClauses(state) {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	return sb.String()
}

// KnownFieldClauses returns one sentence per captured field, in the fixed
// order name, email, check-in date, nights.
func KnownFieldClauses(state models.BookingState) []string {
	var clauses []string
	if state.FullName != nil {
		clauses = append(clauses, fmt.Sprintf("The user's name is %s.", *state.FullName))
	}
	if state.Email != nil {
		clauses = append(clauses, fmt.Sprintf("The user's email is %s.", *state.Email))
	}
	if state.CheckInDate != nil {
		clauses = append(clauses, fmt.Sprintf("The check-in date is %s.", *state.CheckInDate))
	}
	if state.Nights != nil {
		clauses = append(clauses, fmt.Sprintf("The duration of stay is %d nights.", *state.Nights))
	}
	return clauses
}

func stateJSON(state models.BookingState) string {
	b, err := json.Marshal(state)
	if err != nil {
		// BookingState holds only strings and ints.
		return "{}"
	}
	return string(b)
}
