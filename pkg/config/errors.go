package config

import "errors"

var (
	ErrParsingConfig     = errors.New("failed to parse environment variables into config")
	ErrLoadingEnvFile    = errors.New("failed to load env file")
	ErrInvalidStore      = errors.New("invalid store kind")
	ErrMissingConnection = errors.New("store connection url is required")
	ErrInvalidLogSetting = errors.New("invalid log setting")
)
