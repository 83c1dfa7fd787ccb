package cache

import "github.com/pkg/errors"

var (
	ErrUnsupportedValue = errors.New("cache: unsupported value type")
	ErrEmptyKey         = errors.New("cache: key is empty after normalisation")
	ErrNotJSON          = errors.New("cache: entry is not json")
)
