// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package fferr

import (
	"errors"
	"fmt"
)

const (
	// STORAGE:
	EXECUTION_ERROR  = "Execution Error"
	CONNECTION_ERROR = "Connection Error"

	// DATA:
	DATASET_NOT_FOUND = "Dataset Not Found"
	DATA_SCHEMA_ERROR = "Data Schema Error"
	INVALID_FILE_TYPE = "Invalid File Type"

	// CONFIG:
	INVALID_CONFIG = "Invalid Config"

	// MISCELLANEOUS:
	INTERNAL_ERROR   = "Internal Error"
	INVALID_ARGUMENT = "Invalid Argument"
)

type JSONStackTrace map[string]interface{}

// Error is implemented by every typed error in this package.
type Error interface {
	GetType() string
	AddDetail(key, value string)
	Details() map[string]string
	Stack() JSONStackTrace
	Error() string
}

// As returns the typed error wrapped anywhere in err's chain.
func As(err error) (Error, bool) {
	var typed Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsType reports whether err is a typed error of the given kind.
func IsType(err error, errorType string) bool {
	typed, ok := As(err)
	return ok && typed.GetType() == errorType
}

func newBaseError(err error, errorType string) baseError {
	if err == nil {
		err = fmt.Errorf("initial error")
	}
	return baseError{
		errorType:    errorType,
		GenericError: NewGenericError(err),
	}
}

type baseError struct {
	errorType string
	GenericError
}

func (e *baseError) GetType() string {
	return e.errorType
}

func (e *baseError) AddDetail(key, value string) {
	e.GenericError.AddDetail(key, value)
}

func (e *baseError) Error() string {
	return e.GenericError.Error()
}

func (e *baseError) Unwrap() error {
	return e.cause
}
