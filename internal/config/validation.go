package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tag constraints, then the handful of cross-field
// rules a tag can't express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	if cfg.PathBufLen > cfg.HardLimit {
		return fmt.Errorf("path_buf_len (%d) must not exceed hard_limit (%d)", cfg.PathBufLen, cfg.HardLimit)
	}
	return nil
}

func formatValidationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%s: validation failed on %q (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
