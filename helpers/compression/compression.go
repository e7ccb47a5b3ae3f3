// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package compression

import (
	"bytes"
	"compress/gzip"
	"strings"

	"github.com/featureform/sparkify/fferr"
)

const GzipExt = ".gz"

// IsGzip reports whether an object key names a gzip-compressed file.
func IsGzip(key string) bool {
	return strings.HasSuffix(key, GzipExt)
}

// GunZip takes a gzip compressed byte array and uncompresses it.
func GunZip(message []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(message))
	if err != nil {
		return nil, fferr.NewInvalidFileTypeError("gzip", err)
	}
	defer gr.Close()

	var uncompressed bytes.Buffer
	if _, err := uncompressed.ReadFrom(gr); err != nil {
		return nil, fferr.NewInvalidFileTypeError("gzip", err)
	}
	return uncompressed.Bytes(), nil
}
