package fferr

import (
	"fmt"
	"strconv"
)

func NewDatasetNotFoundError(location string, err error) *DatasetNotFoundError {
	if err == nil {
		err = fmt.Errorf("dataset not found")
	}
	baseError := newBaseError(err, DATASET_NOT_FOUND)
	baseError.AddDetail("location", location)

	return &DatasetNotFoundError{
		baseError,
	}
}

type DatasetNotFoundError struct {
	baseError
}

// NewDataSchemaError reports a record that does not match its declared schema.
// index is the zero-based position of the record inside the object.
func NewDataSchemaError(key string, index int, err error) *DataSchemaError {
	if err == nil {
		err = fmt.Errorf("record does not match schema")
	}
	baseError := newBaseError(err, DATA_SCHEMA_ERROR)
	baseError.AddDetail("key", key)
	baseError.AddDetail("record_index", strconv.Itoa(index))

	return &DataSchemaError{
		baseError,
	}
}

type DataSchemaError struct {
	baseError
}

func NewInvalidFileTypeError(fileType string, err error) *InvalidFileTypeError {
	if err == nil {
		err = fmt.Errorf("invalid file type")
	}
	baseError := newBaseError(err, INVALID_FILE_TYPE)
	baseError.AddDetail("file_type", fileType)

	return &InvalidFileTypeError{
		baseError,
	}
}

type InvalidFileTypeError struct {
	baseError
}
