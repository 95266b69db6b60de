package model

import "time"

// SeatAuditLog is an immutable, append-only record of a seat status
// transition.  One entry is written per transition and entries are
// never updated or deleted.  ChangedByPassengerID is nil for system
// actions such as reconciler sweeps.
type SeatAuditLog struct {
    ID                   string    // seat_audit_log.id
    SeatID               string    // seat_audit_log.seat_id
    FlightID             string    // seat_audit_log.flight_id
    SeatNumber           string    // seat_audit_log.seat_number
    PreviousStatus       string    // seat_audit_log.previous_status
    NewStatus            string    // seat_audit_log.new_status
    ChangedByPassengerID *string   // seat_audit_log.changed_by_passenger_id (nullable)
    ChangeReason         string    // seat_audit_log.change_reason
    CreatedAt            time.Time // seat_audit_log.created_at
}
