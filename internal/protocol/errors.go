package protocol

import "errors"

// Error is a protocol-level error with a stable numeric code. It is never
// fatal for a session: the controller converts it into an "error" event sent
// to the offending connection only.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrRoomDoesNotExists    = &Error{Code: 1, Message: "Room does not exist"}
	ErrUserNotAMemberOfRoom = &Error{Code: 2, Message: "User not a member of room"}
	ErrUnknownCommand       = &Error{Code: 3, Message: "Unknown command"}
	ErrIncorrectMessage     = &Error{Code: 4, Message: "Incorrect message"}
	ErrNotCompatibleVersion = &Error{Code: 6, Message: "Your version is not supported"}
)

// ErrParamNotPassed reports a missing required field of a command.
func ErrParamNotPassed(param string) *Error {
	return &Error{Code: 5, Message: param + " not passed"}
}

// AsError extracts a protocol error from an error chain.
func AsError(err error) (*Error, bool) {
	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr, true
	}

	return nil, false
}
