package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct-level validation tags.
//
// Validation is intentionally separate from ApplyDefaults: values are checked
// exactly as loaded, without normalization.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(errs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Cross-field checks the tag language cannot express
	if cfg.Honeynet.URL != "" && cfg.Honeynet.Token == "" {
		return fmt.Errorf("invalid configuration: honeynet url is set but token is empty")
	}
	if cfg.VirusTotal.Token != "" && (cfg.VirusTotal.HashURL == "" || cfg.VirusTotal.ResultURL == "") {
		return fmt.Errorf("invalid configuration: virustotal token is set but hash_url or result_url is empty")
	}

	return nil
}

// formatValidationErrors renders field errors as "Namespace failed on tag".
func formatValidationErrors(errs validator.ValidationErrors) string {
	msg := ""
	for i, fe := range errs {
		if i > 0 {
			msg += ", "
		}
		msg += fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s=%s)", fe.Tag(), fe.Param())
		}
	}
	return msg
}
