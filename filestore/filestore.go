package filestore

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/featureform/sparkify/fferr"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

const (
	defaultReadAttempts = 3
	defaultReadDelay    = 200 * time.Millisecond
)

type FileStore interface {
	Type() FileStoreType
	// List returns every object below dir, recursively, sorted by key.
	List(ctx context.Context, dir Filepath) ([]Filepath, error)
	// Glob returns every object whose key matches pattern, sorted by key.
	Glob(ctx context.Context, pattern Filepath) ([]Filepath, error)
	Read(ctx context.Context, fp Filepath) ([]byte, error)
	Write(ctx context.Context, fp Filepath, data []byte) error
	Copy(ctx context.Context, dst, src Filepath) error
	Exists(ctx context.Context, fp Filepath) (bool, error)
	Delete(ctx context.Context, fp Filepath) error
	DeleteAll(ctx context.Context, dir Filepath) error
	Close() error
}

type genericFileStore struct {
	bucket       *blob.Bucket
	storeType    FileStoreType
	readAttempts uint
	readDelay    time.Duration
	// shared buckets outlive the store and are not closed by it.
	shared bool
}

func newGenericFileStore(bucket *blob.Bucket, storeType FileStoreType) *genericFileStore {
	return &genericFileStore{
		bucket:       bucket,
		storeType:    storeType,
		readAttempts: defaultReadAttempts,
		readDelay:    defaultReadDelay,
	}
}

// NewFileStoreFromBucket wraps an already opened bucket.
func NewFileStoreFromBucket(bucket *blob.Bucket, storeType FileStoreType) FileStore {
	return newGenericFileStore(bucket, storeType)
}

func (store *genericFileStore) Type() FileStoreType {
	return store.storeType
}

func (store *genericFileStore) executionError(fp Filepath, err error) error {
	return fferr.NewExecutionError(string(store.storeType), fp.ToURI(), err)
}

func (store *genericFileStore) listKeys(ctx context.Context, prefix string) ([]string, error) {
	opts := blob.ListOptions{
		Prefix: prefix,
	}
	listIterator := store.bucket.List(&opts)
	keys := make([]string, 0)
	for {
		listObj, err := listIterator.Next(ctx)
		if err == io.EOF || gcerrors.Code(err) == gcerrors.NotFound {
			break
		}
		if err != nil {
			return nil, err
		}
		if listObj.IsDir {
			continue
		}
		keys = append(keys, listObj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (store *genericFileStore) List(ctx context.Context, dir Filepath) ([]Filepath, error) {
	keys, err := store.listKeys(ctx, dir.AsDir().Key())
	if err != nil {
		return nil, store.executionError(dir, err)
	}
	files := make([]Filepath, len(keys))
	for i, key := range keys {
		files[i] = dir.WithKey(key)
	}
	return files, nil
}

func (store *genericFileStore) Glob(ctx context.Context, pattern Filepath) ([]Filepath, error) {
	if !doublestar.ValidatePattern(pattern.Key()) {
		return nil, fferr.NewInvalidArgumentErrorf("invalid glob pattern '%s'", pattern.ToURI())
	}
	keys, err := store.listKeys(ctx, pattern.StaticPrefix())
	if err != nil {
		return nil, store.executionError(pattern, err)
	}
	files := make([]Filepath, 0, len(keys))
	for _, key := range keys {
		match, err := doublestar.Match(pattern.Key(), key)
		if err != nil {
			return nil, fferr.NewInvalidArgumentError(err)
		}
		if match {
			files = append(files, pattern.WithKey(key))
		}
	}
	return files, nil
}

// Read retries transient failures; a missing object is returned at once.
func (store *genericFileStore) Read(ctx context.Context, fp Filepath) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			b, err := store.bucket.ReadAll(ctx, fp.Key())
			if err != nil {
				return err
			}
			data = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(store.readAttempts),
		retry.Delay(store.readDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return gcerrors.Code(err) != gcerrors.NotFound
		}),
	)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fferr.NewDatasetNotFoundError(fp.ToURI(), err)
		}
		return nil, store.executionError(fp, err)
	}
	return data, nil
}

func (store *genericFileStore) Write(ctx context.Context, fp Filepath, data []byte) error {
	if err := store.bucket.WriteAll(ctx, fp.Key(), data, nil); err != nil {
		return store.executionError(fp, err)
	}
	return nil
}

func (store *genericFileStore) Copy(ctx context.Context, dst, src Filepath) error {
	if err := store.bucket.Copy(ctx, dst.Key(), src.Key(), nil); err != nil {
		return store.executionError(dst, err)
	}
	return nil
}

func (store *genericFileStore) Exists(ctx context.Context, fp Filepath) (bool, error) {
	exists, err := store.bucket.Exists(ctx, fp.Key())
	if err != nil {
		return false, store.executionError(fp, err)
	}
	return exists, nil
}

func (store *genericFileStore) Delete(ctx context.Context, fp Filepath) error {
	err := store.bucket.Delete(ctx, fp.Key())
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return store.executionError(fp, err)
	}
	return nil
}

func (store *genericFileStore) DeleteAll(ctx context.Context, dir Filepath) error {
	prefix := dir.AsDir().Key()
	if prefix == "" {
		return fferr.NewInvalidArgumentErrorf("refusing to delete the whole bucket %s", dir.BucketURI())
	}
	keys, err := store.listKeys(ctx, prefix)
	if err != nil {
		return store.executionError(dir, err)
	}
	for _, key := range keys {
		if err := store.Delete(ctx, dir.WithKey(key)); err != nil {
			return err
		}
	}
	return nil
}

func (store *genericFileStore) Close() error {
	if store.shared {
		return nil
	}
	return store.bucket.Close()
}

// IsHidden reports whether any element of key is a Hadoop-style metadata
// name such as "_SUCCESS", "_temporary" or ".crc".
func IsHidden(key string) bool {
	for _, part := range strings.Split(key, "/") {
		if strings.HasPrefix(part, "_") || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
