package model

import "time"

// BoardingPass is the artifact generated exactly once when a check-in
// session completes.  Repeated generation requests for the same
// session return the stored pass rather than creating a new one.
type BoardingPass struct {
    ID            string    // boarding_passes.id
    CheckInID     string    // boarding_passes.check_in_id (unique)
    PassengerName string    // boarding_passes.passenger_name ("LAST/FIRST")
    FlightNumber  string    // boarding_passes.flight_number
    SeatNumber    string    // boarding_passes.seat_number
    SeatClass     string    // boarding_passes.seat_class
    Origin        string    // boarding_passes.origin
    Destination   string    // boarding_passes.destination
    DepartureTime time.Time // boarding_passes.departure_time
    Gate          string    // boarding_passes.gate
    BoardingTime  time.Time // boarding_passes.boarding_time
    BarcodeData   string    // boarding_passes.barcode_data
    QRCodeData    string    // boarding_passes.qr_code_data (base64 PNG)
    GeneratedAt   time.Time // boarding_passes.generated_at
}
