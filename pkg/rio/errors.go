package rio

import "errors"

var (
	// ErrEmptyLine indicates a line with no content.
	ErrEmptyLine = errors.New("empty line")

	// ErrUnknownTag indicates a line not starting with S, E or N.
	ErrUnknownTag = errors.New("unknown line tag")

	// ErrInvalidAddress indicates a path that is not a controller, zone or
	// source address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrLineTooLong indicates an unterminated line exceeding the buffer.
	ErrLineTooLong = errors.New("line too long")

	// ErrRequestTimeout indicates a GET that received no response in time.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrErrorResponse indicates the controller answered a request with E.
	ErrErrorResponse = errors.New("error response")

	// ErrClientClosed indicates the client was closed while waiting.
	ErrClientClosed = errors.New("client closed")

	// ErrInvalidParam indicates a parameter index without a text form.
	ErrInvalidParam = errors.New("invalid parameter")
)
