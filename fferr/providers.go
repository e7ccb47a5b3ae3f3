package fferr

import (
	"fmt"
)

func NewConnectionError(storeType string, err error) *ConnectionError {
	if err == nil {
		err = fmt.Errorf("initial connection error")
	}
	baseError := newBaseError(err, CONNECTION_ERROR)
	baseError.AddDetail("Store", storeType)

	return &ConnectionError{
		baseError,
	}
}

type ConnectionError struct {
	baseError
}

func NewExecutionError(storeType, location string, err error) *ExecutionError {
	if err == nil {
		err = fmt.Errorf("initial execution error")
	}
	baseError := newBaseError(err, EXECUTION_ERROR)
	baseError.AddDetail("Store", storeType)
	baseError.AddDetail("Location", location)

	return &ExecutionError{
		baseError,
	}
}

type ExecutionError struct {
	baseError
}
