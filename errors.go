package mzsearch

import (
	"errors"
	"fmt"

	"github.com/524D/mzsearch/spectrum"
)

var (
	// ErrConfig is matched by every *ConfigError
	ErrConfig = errors.New("invalid configuration")
	// ErrNotFound is returned when a spectrum source has no spectrum with
	// the requested title
	ErrNotFound = spectrum.ErrNotFound
	// ErrInvalidSpectrum is returned for spectra that cannot be searched
	ErrInvalidSpectrum = errors.New("invalid spectrum")
	// ErrInvalidSequence is returned for peptide sequences with unknown residues
	ErrInvalidSequence = errors.New("invalid peptide sequence")
)

// ConfigError reports an unusable configuration value
type ConfigError struct {
	Field   string
	Message string
	Err     error // underlying cause, may be nil
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration in %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrConfig) true for any *ConfigError
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(field string, err error) error {
	return &ConfigError{Field: field, Message: err.Error(), Err: err}
}
