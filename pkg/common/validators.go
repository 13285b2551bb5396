package common

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct checks the `validate` tags of s and flattens the violations into one error.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}

	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s must satisfy %s=%s (got %v)", v.Namespace(), v.Tag(), v.Param(), v.Value()))
		} else {
			messages = append(messages, fmt.Sprintf("%s must satisfy %s", v.Namespace(), v.Tag()))
		}
	}

	return errors.New(strings.Join(messages, "; "))
}

func ValidateRunRecord(r *RunRecord) error {
	if err := ValidateStruct(r); err != nil {
		return err
	}

	if len(r.PerDeviceTimings) > 0 && len(r.PerDeviceTimings) != r.DeviceCount {
		return fmt.Errorf("per_device_timings has %d entries for %d devices", len(r.PerDeviceTimings), r.DeviceCount)
	}

	return nil
}

func CheckPath(path string) error {
	if path == "" {
		return nil
	}

	_, err := os.Stat(path)
	return err
}
