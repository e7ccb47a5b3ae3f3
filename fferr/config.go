// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package fferr

import (
	"fmt"
)

func NewMissingConfigKey(section, key string) *InvalidConfigError {
	err := NewInvalidConfigf("%s.%s must be set", section, key)
	err.AddDetail("section", section)
	err.AddDetail("key", key)
	return err
}

func NewInvalidConfigValue(key string, val any, possibleValues any) *InvalidConfigError {
	return NewInvalidConfigf("%s set to %v. Must be %v", key, val, possibleValues)
}

func NewInvalidConfigf(format string, a ...any) *InvalidConfigError {
	err := fmt.Errorf("Failed to Parse Config: "+format, a...)
	return &InvalidConfigError{
		newBaseError(err, INVALID_CONFIG),
	}
}

func NewInvalidConfigError(path string, err error) *InvalidConfigError {
	if err == nil {
		err = fmt.Errorf("invalid config")
	}
	baseError := newBaseError(fmt.Errorf("Failed to Parse Config: %w", err), INVALID_CONFIG)
	baseError.AddDetail("path", path)
	return &InvalidConfigError{
		baseError,
	}
}

type InvalidConfigError struct {
	baseError
}
