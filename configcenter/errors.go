package configcenter

import "github.com/KOMKZ/go-yogan-confenv/errcode"

// ModuleCode config center module code
const ModuleCode = 21

const (
	ErrCodeInvalidConfig = 1
	ErrCodeNotBound      = 2
	ErrCodeFetch         = 3
	ErrCodeParse         = 4
	ErrCodeWatch         = 5
)

var (
	// ErrInvalidConfig validation failed
	ErrInvalidConfig = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidConfig,
		"configcenter", "error.configcenter.invalid_config", "invalid config center config",
	))

	// ErrNotBound Init was called before Bind
	ErrNotBound = errcode.Register(errcode.New(
		ModuleCode, ErrCodeNotBound,
		"configcenter", "error.configcenter.not_bound", "config center is not bound to an environment",
	))

	// ErrFetch the remote configuration file could not be read
	ErrFetch = errcode.Register(errcode.New(
		ModuleCode, ErrCodeFetch,
		"configcenter", "error.configcenter.fetch", "fetch external configuration failed",
	))

	// ErrParse the remote configuration file is not valid properties content
	ErrParse = errcode.Register(errcode.New(
		ModuleCode, ErrCodeParse,
		"configcenter", "error.configcenter.parse", "parse external configuration failed",
	))

	// ErrWatch change notifications from the remote store could not be started
	ErrWatch = errcode.Register(errcode.New(
		ModuleCode, ErrCodeWatch,
		"configcenter", "error.configcenter.watch", "watch config center failed",
	))
)
