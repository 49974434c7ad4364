package clog

import (
	"log/slog"

	"connectrpc.com/connect"
)

// HTTPStatusLevel picks the level a finished plain HTTP request is logged at.
// 499 is a client that went away.
func HTTPStatusLevel(status int) slog.Level {
	switch {
	case status >= 100 && status < 400, status == 499:
		return slog.LevelInfo
	case status >= 400 && status < 500:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Outcomes that are part of normal task flow stay below warn: lost claim
// races, expired sessions, incomplete submissions and stale transitions.
var connectCodeLevels = map[connect.Code]slog.Level{
	connect.CodeCanceled:           slog.LevelInfo,
	connect.CodeInvalidArgument:    slog.LevelInfo,
	connect.CodeDeadlineExceeded:   slog.LevelInfo,
	connect.CodeNotFound:           slog.LevelInfo,
	connect.CodeAlreadyExists:      slog.LevelInfo,
	connect.CodePermissionDenied:   slog.LevelWarn,
	connect.CodeFailedPrecondition: slog.LevelInfo,
	connect.CodeAborted:            slog.LevelDebug,
	connect.CodeOutOfRange:         slog.LevelInfo,
	connect.CodeUnauthenticated:    slog.LevelWarn,
}

// ConnectCodeLevel picks the level a failed RPC is logged at. Codes not
// listed are server faults.
func ConnectCodeLevel(code connect.Code) slog.Level {
	if level, ok := connectCodeLevels[code]; ok {
		return level
	}
	return slog.LevelError
}
