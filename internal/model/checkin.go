package model

import "time"

// CheckInStatus enumerates the states of the check-in session state
// machine.  IN_PROGRESS and WAITING_PAYMENT are the only non-terminal
// states; COMPLETED, EXPIRED and CANCELLED are terminal.
type CheckInStatus string

const (
    CheckInInProgress     CheckInStatus = "IN_PROGRESS"
    CheckInWaitingPayment CheckInStatus = "WAITING_PAYMENT"
    CheckInCompleted      CheckInStatus = "COMPLETED"
    CheckInExpired        CheckInStatus = "EXPIRED"
    CheckInCancelled      CheckInStatus = "CANCELLED"
)

// PaymentStatus values recorded on a session once a fee is owed.
const (
    PaymentPending   = "PENDING"
    PaymentCompleted = "COMPLETED"
    PaymentDeclined  = "DECLINED"
    PaymentFailed    = "FAILED"
)

// CheckInSession models one passenger's check-in for one booking.
// ExpiresAt slides: it is always LastActivityAt plus the configured
// session timeout, recomputed on every activity-bearing operation.
// The session references at most one seat; the seat's own hold expiry
// is tracked independently on the seat row.
//
// Fields:
//  ID               – primary key (UUID).
//  BookingID        – booking being checked in (one active session per booking).
//  SeatID           – currently attached seat, if any.
//  Status           – session state machine value.
//  BaggageWeightKg  – declared baggage weight, if added.
//  ExcessBaggageFee – fee owed for excess weight, if any.
//  PaymentStatus    – PENDING/COMPLETED/DECLINED/FAILED once a fee exists.
//  PaymentReference – gateway reference of a completed payment.
//  StartedAt        – session creation time.
//  LastActivityAt   – time of the most recent activity-bearing call.
//  ExpiresAt        – sliding expiry deadline.
//  CompletedAt      – set when the session reaches COMPLETED.
//  Version          – optimistic lock counter.
type CheckInSession struct {
    ID               string        // check_ins.id
    BookingID        string        // check_ins.booking_id
    SeatID           *string       // check_ins.seat_id (nullable)
    Status           CheckInStatus // check_ins.status
    BaggageWeightKg  *float64      // check_ins.baggage_weight_kg (nullable)
    ExcessBaggageFee *float64      // check_ins.excess_baggage_fee (nullable)
    PaymentStatus    *string       // check_ins.payment_status (nullable)
    PaymentReference *string       // check_ins.payment_reference (nullable)
    StartedAt        time.Time     // check_ins.started_at
    LastActivityAt   time.Time     // check_ins.last_activity_at
    ExpiresAt        time.Time     // check_ins.expires_at
    CompletedAt      *time.Time    // check_ins.completed_at (nullable)
    Version          int           // check_ins.version
    CreatedAt        time.Time     // check_ins.created_at
    UpdatedAt        time.Time     // check_ins.updated_at
}

func (c *CheckInSession) IsInProgress() bool     { return c.Status == CheckInInProgress }
func (c *CheckInSession) IsWaitingPayment() bool { return c.Status == CheckInWaitingPayment }
func (c *CheckInSession) IsCompleted() bool      { return c.Status == CheckInCompleted }

// IsTerminal reports whether the session can no longer change state.
func (c *CheckInSession) IsTerminal() bool {
    switch c.Status {
    case CheckInCompleted, CheckInExpired, CheckInCancelled:
        return true
    }
    return false
}

// IsExpired reports whether the sliding deadline has passed at the
// given instant.
func (c *CheckInSession) IsExpired(now time.Time) bool {
    return now.After(c.ExpiresAt)
}

// Touch records activity and slides the expiry forward by the session
// timeout.  Every mutating operation on the session calls this,
// including failed payment attempts, since an active retry counts as
// activity.
func (c *CheckInSession) Touch(now time.Time, timeout time.Duration) {
    c.LastActivityAt = now
    c.ExpiresAt = now.Add(timeout)
}
