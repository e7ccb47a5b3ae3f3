// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package compression

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/featureform/sparkify/fferr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGunZip(t *testing.T) {
	type TestCase struct {
		InputString string
	}

	tests := map[string]TestCase{
		"Empty": {
			InputString: "",
		},
		"EventLine": {
			InputString: `{"page":"NextSong","ts":1541990258796}` + "\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var compressed bytes.Buffer
			gz := gzip.NewWriter(&compressed)
			_, err := gz.Write([]byte(test.InputString))
			require.NoError(t, err)
			require.NoError(t, gz.Close())

			uncompressed, err := GunZip(compressed.Bytes())
			require.NoError(t, err)
			assert.Equal(t, test.InputString, string(uncompressed))
		})
	}
}

func TestGunZipInvalid(t *testing.T) {
	_, err := GunZip([]byte("not gzip"))
	require.Error(t, err)
	assert.True(t, fferr.IsType(err, fferr.INVALID_FILE_TYPE))
}

func TestIsGzip(t *testing.T) {
	assert.True(t, IsGzip("log-data/2018-11-12-events.json.gz"))
	assert.False(t, IsGzip("log-data/2018-11-12-events.json"))
}
