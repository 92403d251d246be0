package sensors

import "errors"

// Sentinel kinds for sensor source errors.
var (
	// ErrConnect means the MQTT broker could not be reached.
	ErrConnect = errors.New("sensors: broker connect failed")

	// ErrSubscribe means a topic subscription was rejected.
	ErrSubscribe = errors.New("sensors: subscribe failed")

	// ErrBadPayload means a message could not be parsed as a reading.
	ErrBadPayload = errors.New("sensors: unparseable payload")

	// ErrInvalidFix means a parsed fix carried no usable position, such as
	// an NMEA sentence without a valid satellite lock.
	ErrInvalidFix = errors.New("sensors: fix not valid")
)
