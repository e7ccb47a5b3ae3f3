// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2025 FeatureForm Inc.
//

package dataset

// GenericRecord holds one row's values in schema column order.
type GenericRecord []interface{}

// Row is implemented by every typed output row.
type Row interface {
	Values() GenericRecord
}

// Table is what the sink consumes: a named, schema'd set of records.
type Table interface {
	Name() string
	Schema() Schema
	Iterator() Iterator
	Len() int
}

type Iterator interface {
	Next() bool
	Values() GenericRecord
	Err() error
	Close() error
}
