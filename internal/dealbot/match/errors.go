package match

import "errors"

var (
	ErrBadPassword    = errors.New("incorrect password")
	ErrGameInProgress = errors.New("game already in progress")
	ErrRoomFull       = errors.New("room is full")
	ErrNotAuthorized  = errors.New("not authorized")
	ErrWrongPhase     = errors.New("not allowed in this phase")
)
