package tracker

// Outcome is the discriminated result of a play mutation. It distinguishes a
// recorded play from the two rejection kinds so the presentation layer can
// phrase each one; the tracker itself never formats user-facing text.
type Outcome int

const (
	// OutcomeRecorded indicates the operator was marked as played.
	OutcomeRecorded Outcome = iota
	// OutcomeAlreadyPlayed indicates the participant had already played the operator.
	OutcomeAlreadyPlayed
	// OutcomeUnknownOperator indicates the operator is not in the catalog.
	OutcomeUnknownOperator
)

// String returns a machine-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeAlreadyPlayed:
		return "already_played"
	case OutcomeUnknownOperator:
		return "unknown_operator"
	default:
		return "unspecified"
	}
}
