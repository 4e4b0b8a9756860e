// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/fxctl/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func OutputValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(output.Formats, s) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

// PrecisionValidator accepts 0 through 9 decimal places.
func PrecisionValidator(value any) error {
	p, ok := value.(int)
	if !ok || p < 0 || p > 9 {
		return errors.New("must be between 0 and 9")
	}
	return nil
}

// CurrencyCodeValidator accepts three ASCII letters in either case.
func CurrencyCodeValidator(value any) error {
	s, _ := value.(string)
	if len(s) != 3 {
		return fmt.Errorf("invalid currency code %q: must be three letters", s)
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return fmt.Errorf("invalid currency code %q: must be three letters", s)
		}
	}
	return nil
}

// NormalizeCode upper-cases and validates a currency code argument.
func NormalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if err := FlagValidators(code, CurrencyCodeValidator); err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}
