package model

// Reason is the outcome of an eligibility check.
type Reason string

const (
	ReasonOK           Reason = "OK"
	ReasonInactive     Reason = "INACTIVE"
	ReasonNotYetActive Reason = "NOT_YET_ACTIVE"
	ReasonExpired      Reason = "EXPIRED"
	ReasonLimitReached Reason = "LIMIT_REACHED"
)

func (r Reason) String() string {
	return string(r)
}
