package extension

import "github.com/KOMKZ/go-yogan-confenv/errcode"

// ModuleCode extension module code
const ModuleCode = 23

const (
	ErrCodeInvalidName       = 1
	ErrCodeAlreadyRegistered = 2
	ErrCodeNotFound          = 3
	ErrCodeNoDefault         = 4
	ErrCodeCreateFailed      = 5
)

var (
	// ErrInvalidName extension name is blank
	ErrInvalidName = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidName,
		"extension", "error.extension.invalid_name", "extension name must not be empty",
	))

	// ErrAlreadyRegistered extension name already taken
	ErrAlreadyRegistered = errcode.Register(errcode.New(
		ModuleCode, ErrCodeAlreadyRegistered,
		"extension", "error.extension.already_registered", "extension already registered",
	))

	// ErrNotFound no extension under that name
	ErrNotFound = errcode.Register(errcode.New(
		ModuleCode, ErrCodeNotFound,
		"extension", "error.extension.not_found", "extension not found",
	))

	// ErrNoDefault no default extension configured
	ErrNoDefault = errcode.Register(errcode.New(
		ModuleCode, ErrCodeNoDefault,
		"extension", "error.extension.no_default", "no default extension configured",
	))

	// ErrCreateFailed factory returned an error
	ErrCreateFailed = errcode.Register(errcode.New(
		ModuleCode, ErrCodeCreateFailed,
		"extension", "error.extension.create_failed", "extension create failed",
	))
)
