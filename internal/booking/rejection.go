package booking

import "errors"

// Reason tags why a booking request or cancellation was refused.
type Reason string

const (
	ReasonMissingFields       Reason = "missing_fields"
	ReasonDescriptionRequired Reason = "description_required"
	ReasonDurationOutOfRange  Reason = "duration_out_of_range"
	ReasonInPast              Reason = "in_past"
	ReasonTooFarAhead         Reason = "too_far_ahead"
	ReasonOutsideWorkingHours Reason = "outside_working_hours"
	ReasonNotWorkDay          Reason = "not_work_day"
	ReasonSlotTaken           Reason = "slot_taken"
	ReasonNotOwner            Reason = "not_owner"
	ReasonCannotCancelPast    Reason = "cannot_cancel_past"
)

// Rejection is returned when a booking operation violates the policy. It
// carries a user facing message.
type Rejection struct {
	Reason  Reason
	Message string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	return string(r.Reason)
}

func reject(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

// RejectionReason extracts the reason from err when it wraps a Rejection.
func RejectionReason(err error) (Reason, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) && rejection != nil {
		return rejection.Reason, true
	}
	return "", false
}
