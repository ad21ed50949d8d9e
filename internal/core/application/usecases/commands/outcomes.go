package commands

// ClaimOutcome is the result of a claim attempt that reached the store.
type ClaimOutcome int

const (
	ClaimUnknown ClaimOutcome = iota
	Claimed
	ClaimConflict
	ClaimNotFound
)

func (o ClaimOutcome) String() string {
	switch o {
	case Claimed:
		return "claimed"
	case ClaimConflict:
		return "conflict"
	case ClaimNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ReleaseOutcome is the result of a release attempt.
type ReleaseOutcome int

const (
	ReleaseUnknown ReleaseOutcome = iota
	Released
	ReleaseNoOp
)

func (o ReleaseOutcome) String() string {
	switch o {
	case Released:
		return "released"
	case ReleaseNoOp:
		return "noop"
	default:
		return "unknown"
	}
}

// CompleteOutcome is the result of marking an item completed.
type CompleteOutcome int

const (
	CompleteUnknown CompleteOutcome = iota
	Completed
	CompleteUnauthorized
	CompleteNotFound
)

func (o CompleteOutcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case CompleteUnauthorized:
		return "unauthorized"
	case CompleteNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
