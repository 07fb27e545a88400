package environment

import "github.com/KOMKZ/go-yogan-confenv/errcode"

// ModuleCode environment module code
const ModuleCode = 20

const (
	ErrCodeConfigCenter = 1
	ErrCodeInvalidKey   = 2
)

var (
	// ErrConfigCenter the config center failed while applying external configuration
	ErrConfigCenter = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConfigCenter,
		"environment", "error.environment.config_center", "config center initialization failed",
	))

	// ErrInvalidKey a required key argument is blank
	ErrInvalidKey = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidKey,
		"environment", "error.environment.invalid_key", "key must not be blank",
	))
)
