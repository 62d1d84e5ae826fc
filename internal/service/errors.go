package service

import "errors"

// 业务层错误。Handler 依据这些错误决定 HTTP 状态码，
// 仓库层错误不会越过 service 向外传播。
var (
	ErrInvalidName         = errors.New("participant name is required")
	ErrNameTaken           = errors.New("participant name already in use")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMessageNotFound     = errors.New("message not found")
	ErrNotJoined           = errors.New("sender is not a current participant")
	ErrNotOwner            = errors.New("only the original author may modify a message")
	ErrInvalidMessage      = errors.New("invalid message data")
	ErrInvalidLimit        = errors.New("limit must be a positive integer")
	ErrInternalServer      = errors.New("internal server error")
)
