// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/featureform/sparkify/fferr"
)

type FileType string

type FileStoreType string

const (
	Memory     FileStoreType = "MEMORY"
	FileSystem FileStoreType = "LOCAL_FILESYSTEM"
	S3         FileStoreType = "S3"
	GCS        FileStoreType = "GCS"
)

const (
	Parquet FileType = "parquet"
	JSON    FileType = "json"
)

const (
	GSPrefix   = "gs://"
	S3Prefix   = "s3://"
	S3APrefix  = "s3a://"
	FilePrefix = "file://"
	MemPrefix  = "mem://"
)

var ValidSchemes = []string{
	GSPrefix, S3Prefix, S3APrefix, FilePrefix, MemPrefix,
}

var schemeToStoreType = map[string]FileStoreType{
	"s3":   S3,
	"s3a":  S3,
	"gs":   GCS,
	"file": FileSystem,
	"mem":  Memory,
}

// Filepath is a parsed object-store location. Keys never start with "/";
// directory keys end with "/".
type Filepath struct {
	scheme string
	bucket string
	key    string
}

// ParsePath consumes a URI (e.g. s3://bucket/path/to/file) and splits it
// into scheme, bucket and key. file:// paths use "/" as their bucket.
func ParsePath(fullPath string) (Filepath, error) {
	u, err := url.Parse(fullPath)
	if err != nil {
		return Filepath{}, fferr.NewInvalidArgumentErrorf("could not parse path '%s': %v", fullPath, err)
	}
	if _, ok := schemeToStoreType[u.Scheme]; !ok {
		return Filepath{}, fferr.NewInvalidArgumentErrorf("invalid scheme '%s' in '%s', must be one of %v", u.Scheme, fullPath, ValidSchemes)
	}
	fp := Filepath{scheme: u.Scheme}
	if u.Scheme == "file" {
		if u.Host != "" && u.Host != "localhost" {
			return Filepath{}, fferr.NewInvalidArgumentErrorf("file paths must be absolute, got '%s'", fullPath)
		}
		fp.bucket = "/"
	} else {
		if u.Host == "" {
			return Filepath{}, fferr.NewInvalidArgumentErrorf("bucket cannot be empty in '%s'", fullPath)
		}
		fp.bucket = u.Host
	}
	fp.key = strings.TrimPrefix(u.Path, "/")
	return fp, nil
}

// MustParsePath is ParsePath for constants and tests.
func MustParsePath(fullPath string) Filepath {
	fp, err := ParsePath(fullPath)
	if err != nil {
		panic(err)
	}
	return fp
}

func (fp Filepath) Scheme() string {
	return fp.scheme
}

func (fp Filepath) Bucket() string {
	return fp.bucket
}

func (fp Filepath) Key() string {
	return fp.key
}

func (fp Filepath) StoreType() FileStoreType {
	return schemeToStoreType[fp.scheme]
}

func (fp Filepath) IsDir() bool {
	return fp.key == "" || strings.HasSuffix(fp.key, "/")
}

func (fp Filepath) Ext() FileType {
	return FileType(strings.TrimPrefix(path.Ext(fp.key), "."))
}

// Base returns the last element of the key.
func (fp Filepath) Base() string {
	return path.Base(strings.TrimSuffix(fp.key, "/"))
}

// AsDir returns the same location with a trailing "/".
func (fp Filepath) AsDir() Filepath {
	if fp.IsDir() {
		return fp
	}
	fp.key = fp.key + "/"
	return fp
}

// Join appends elements to the key. A trailing "/" on the last element is
// kept so Join can build both file and directory paths.
func (fp Filepath) Join(elems ...string) Filepath {
	if len(elems) == 0 {
		return fp
	}
	dir := strings.HasSuffix(elems[len(elems)-1], "/")
	joined := path.Join(append([]string{fp.key}, elems...)...)
	joined = strings.TrimPrefix(joined, "/")
	if joined == "." {
		joined = ""
	}
	if dir && joined != "" {
		joined += "/"
	}
	fp.key = joined
	return fp
}

// WithKey returns a path in the same bucket with a different key.
func (fp Filepath) WithKey(key string) Filepath {
	fp.key = strings.TrimPrefix(key, "/")
	return fp
}

// Rel returns the key of fp relative to dir, or false when fp is not below dir.
func (fp Filepath) Rel(dir Filepath) (string, bool) {
	if fp.BucketURI() != dir.BucketURI() {
		return "", false
	}
	prefix := dir.AsDir().key
	if !strings.HasPrefix(fp.key, prefix) {
		return "", false
	}
	return strings.TrimPrefix(fp.key, prefix), true
}

// HasGlob reports whether the key contains glob metacharacters.
func (fp Filepath) HasGlob() bool {
	return strings.ContainsAny(fp.key, "*?[{")
}

// StaticPrefix is the part of the key before the first path segment that
// contains a glob metacharacter.
func (fp Filepath) StaticPrefix() string {
	if !fp.HasGlob() {
		return fp.key
	}
	segments := strings.Split(fp.key, "/")
	static := make([]string, 0, len(segments))
	for _, segment := range segments {
		if strings.ContainsAny(segment, "*?[{") {
			break
		}
		static = append(static, segment)
	}
	if len(static) == 0 {
		return ""
	}
	return strings.Join(static, "/") + "/"
}

// BucketURI identifies the bucket; two paths with the same BucketURI are
// served by the same FileStore. s3a paths share the s3 key.
func (fp Filepath) BucketURI() string {
	switch fp.scheme {
	case "file":
		return FilePrefix + "/"
	case "s3a":
		return fmt.Sprintf("s3://%s", fp.bucket)
	}
	return fmt.Sprintf("%s://%s", fp.scheme, fp.bucket)
}

// ToURI returns the full path including scheme and bucket.
func (fp Filepath) ToURI() string {
	if fp.scheme == "file" {
		return fmt.Sprintf("%s/%s", FilePrefix, fp.key)
	}
	return fmt.Sprintf("%s://%s/%s", fp.scheme, fp.bucket, fp.key)
}

func (fp Filepath) String() string {
	return fp.ToURI()
}
