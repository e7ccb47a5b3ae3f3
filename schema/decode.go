package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/featureform/sparkify/fferr"
)

// Decode parses every JSON value in data, which may hold one document or a
// newline-delimited stream, and validates each record. In strict mode a
// field not declared on T is an error. Errors are DataSchemaErrors naming
// key and the position of the offending record.
func Decode[T Record](key string, data []byte, strict bool) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	records := make([]T, 0)
	for i := 0; ; i++ {
		var record T
		err := dec.Decode(&record)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fferr.NewDataSchemaError(key, i, err)
		}
		if err := record.Validate(); err != nil {
			return nil, fferr.NewDataSchemaError(key, i, err)
		}
		records = append(records, record)
	}
}
