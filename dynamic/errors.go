package dynamic

import "github.com/KOMKZ/go-yogan-confenv/errcode"

// ModuleCode dynamic configuration module code
const ModuleCode = 22

const (
	ErrCodeUnknownProtocol = 1
	ErrCodeConnect         = 2
	ErrCodeRead            = 3
	ErrCodeWrite           = 4
	ErrCodeInvalidSettings = 5
)

var (
	// ErrUnknownProtocol no builder for the requested protocol
	ErrUnknownProtocol = errcode.Register(errcode.New(
		ModuleCode, ErrCodeUnknownProtocol,
		"dynamic", "error.dynamic.unknown_protocol", "unknown dynamic configuration protocol",
	))

	// ErrConnect remote store unreachable
	ErrConnect = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConnect,
		"dynamic", "error.dynamic.connect", "dynamic configuration connect failed",
	))

	// ErrRead remote read failed
	ErrRead = errcode.Register(errcode.New(
		ModuleCode, ErrCodeRead,
		"dynamic", "error.dynamic.read", "dynamic configuration read failed",
	))

	// ErrWrite remote write failed
	ErrWrite = errcode.Register(errcode.New(
		ModuleCode, ErrCodeWrite,
		"dynamic", "error.dynamic.write", "dynamic configuration write failed",
	))

	// ErrInvalidSettings settings cannot be used by the protocol
	ErrInvalidSettings = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidSettings,
		"dynamic", "error.dynamic.invalid_settings", "invalid dynamic configuration settings",
	))
)
