package icm20948

import "errors"

// ErrNilTransport signals that a required transport function was
// absent at initialization. No bus transaction is issued in that case.
var ErrNilTransport = errors.New("icm20948: transport function is nil")

// ErrBadIdentity signals that WHO_AM_I did not match the expected
// value: wrong device, wiring fault, or dead bus.
var ErrBadIdentity = errors.New("icm20948: WHO_AM_I mismatch")

// ErrSensorDisabled signals that sample data was requested for a
// sensor that is disabled in the current settings.
var ErrSensorDisabled = errors.New("icm20948: sensor disabled in settings")
