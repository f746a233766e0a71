package config

import (
	"errors"
)

// Configuration failures. ErrLoadConfig covers unreadable files and
// undecodable values; ErrInvalidConfig covers values that decode but break
// a validation rule.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
