// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/featureform/sparkify/fferr"
)

// ScalarType is the set of column types a table can hold.
type ScalarType string

const (
	String    ScalarType = "string"
	Int32     ScalarType = "int32"
	Int64     ScalarType = "int64"
	Float64   ScalarType = "float64"
	Timestamp ScalarType = "timestamp"
)

var ScalarTypes = map[ScalarType]bool{
	String:    true,
	Int32:     true,
	Int64:     true,
	Float64:   true,
	Timestamp: true,
}

var scalarToType = map[ScalarType]reflect.Type{
	String:    reflect.PointerTo(reflect.TypeOf("")),
	Int32:     reflect.PointerTo(reflect.TypeOf(int32(0))),
	Int64:     reflect.PointerTo(reflect.TypeOf(int64(0))),
	Float64:   reflect.PointerTo(reflect.TypeOf(float64(0))),
	Timestamp: reflect.TypeOf(time.Time{}),
}

// Type returns the Go type used for the column in a parquet struct. Pointer
// types keep columns nullable; timestamps are values and the zero time is
// written as null.
func (t ScalarType) Type() reflect.Type {
	return scalarToType[t]
}

func (t ScalarType) IsValid() bool {
	return ScalarTypes[t]
}

// Check verifies that value can be stored in a column of this type. nil is
// always accepted.
func (t ScalarType) Check(value interface{}) error {
	if value == nil {
		return nil
	}
	ok := false
	switch value.(type) {
	case string:
		ok = t == String
	case int32:
		ok = t == Int32
	case int64:
		ok = t == Int64
	case float64:
		ok = t == Float64
	case time.Time:
		ok = t == Timestamp
	}
	if !ok {
		return fferr.NewInternalErrorf("value %v of type %T cannot be stored as %s", value, value, t)
	}
	return nil
}

// Null is a comparable nullable value. The zero value is null.
type Null[T comparable] struct {
	V     T
	Valid bool
}

func Some[T comparable](v T) Null[T] {
	return Null[T]{V: v, Valid: true}
}

func None[T comparable]() Null[T] {
	return Null[T]{}
}

// Value returns the wrapped value or nil when null.
func (n Null[T]) Value() interface{} {
	if !n.Valid {
		return nil
	}
	return n.V
}

func (n Null[T]) OrElse(fallback T) T {
	if !n.Valid {
		return fallback
	}
	return n.V
}

func (n Null[T]) String() string {
	if !n.Valid {
		return "null"
	}
	return fmt.Sprintf("%v", n.V)
}

func (n *Null[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Null[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Null[T]{V: v, Valid: true}
	return nil
}

func (n Null[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}
