package protocol

import "errors"

// ErrProtocol is returned when a line read off the wire doesn't decode to a
// well-formed request or response.
var ErrProtocol = errors.New("protocol error")
