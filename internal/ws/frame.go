package ws

import "errors"

var (
	ErrFrameTooShort  = errors.New("input frame too short")
	ErrEmptySessionID = errors.New("input frame has empty session ID")
)

// parseInputFrame splits a binary input frame into session id and data.
func parseInputFrame(payload []byte) (sessionID string, data []byte, err error) {
	if len(payload) < 1 {
		return "", nil, ErrFrameTooShort
	}
	idLen := int(payload[0])
	if idLen == 0 {
		return "", nil, ErrEmptySessionID
	}
	if len(payload) < 1+idLen {
		return "", nil, ErrFrameTooShort
	}
	sessionID = string(payload[1 : 1+idLen])
	data = payload[1+idLen:]
	return sessionID, data, nil
}
