package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

// Validate checks the struct tags of config and logs every violated rule before returning.
func Validate(config any) error {
	err := validator.New().Struct(config)
	if err != nil {
		LogValidationErrors(err)
		return errors.WithStack(err)
	}
	return nil
}

func LogValidationErrors(err error) {
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			logging.Errorf("ConfigError: %s", err)
			return
		}
		for _, err := range validationErrors {
			fieldName := stripPrefix(err.Namespace())
			tag := err.Tag()
			switch tag {
			case "required":
				logging.Errorf("ConfigError: Field %s is required but was not found", fieldName)
			default:
				logging.Errorf("ConfigError: Field %s has invalid value %v: %s", fieldName, err.Value(), tag)
			}
		}
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
