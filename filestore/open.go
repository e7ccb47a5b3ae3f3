// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package filestore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv2cfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/featureform/sparkify/config"
	"github.com/featureform/sparkify/fferr"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
	"golang.org/x/oauth2/google"
)

const gcsScope = "https://www.googleapis.com/auth/cloud-platform"

// Open returns a FileStore for the bucket that fp lives in.
func Open(ctx context.Context, fp Filepath, creds config.Credentials) (FileStore, error) {
	switch fp.StoreType() {
	case S3:
		return openS3(ctx, fp.Bucket(), creds.AWS)
	case GCS:
		return openGCS(ctx, fp.Bucket(), creds.GCP)
	case FileSystem:
		return openLocal()
	case Memory:
		return openMemory(fp.Bucket()), nil
	default:
		return nil, fferr.NewInvalidArgumentErrorf("unsupported file store for '%s'", fp.ToURI())
	}
}

func openS3(ctx context.Context, bucketName string, creds config.AWSCredentials) (FileStore, error) {
	cfg, err := awsv2cfg.LoadDefaultConfig(ctx,
		awsv2cfg.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: creds.AccessKeyID, SecretAccessKey: creds.SecretAccessKey,
			},
		}),
		awsv2cfg.WithRegion(creds.Region),
	)
	if err != nil {
		return nil, fferr.NewConnectionError(string(S3), err)
	}
	clientV2 := s3v2.NewFromConfig(cfg, func(o *s3v2.Options) {
		if creds.Endpoint != "" {
			o.BaseEndpoint = aws.String(creds.Endpoint)
			o.UsePathStyle = true
		}
	})
	bucket, err := s3blob.OpenBucketV2(ctx, clientV2, bucketName, nil)
	if err != nil {
		return nil, fferr.NewConnectionError(string(S3), err)
	}
	return newGenericFileStore(bucket, S3), nil
}

func openGCS(ctx context.Context, bucketName string, creds config.GCPCredentials) (FileStore, error) {
	var gcpCreds *google.Credentials
	if creds.CredentialsFile != "" {
		serialized, err := os.ReadFile(creds.CredentialsFile)
		if err != nil {
			return nil, fferr.NewConnectionError(string(GCS), fmt.Errorf("could not read credentials file: %w", err))
		}
		gcpCreds, err = google.CredentialsFromJSON(ctx, serialized, gcsScope)
		if err != nil {
			return nil, fferr.NewConnectionError(string(GCS), fmt.Errorf("could not get credentials from JSON: %w", err))
		}
	} else {
		var err error
		gcpCreds, err = gcp.DefaultCredentials(ctx)
		if err != nil {
			return nil, fferr.NewConnectionError(string(GCS), fmt.Errorf("could not find default credentials: %w", err))
		}
	}
	client, err := gcp.NewHTTPClient(
		gcp.DefaultTransport(),
		gcp.CredentialsTokenSource(gcpCreds))
	if err != nil {
		return nil, fferr.NewConnectionError(string(GCS), fmt.Errorf("could not create client: %w", err))
	}
	bucket, err := gcsblob.OpenBucket(ctx, client, bucketName, nil)
	if err != nil {
		return nil, fferr.NewConnectionError(string(GCS), fmt.Errorf("could not open bucket: %w", err))
	}
	return newGenericFileStore(bucket, GCS), nil
}

func openLocal() (FileStore, error) {
	bucket, err := fileblob.OpenBucket("/", &fileblob.Options{Metadata: fileblob.MetadataDontWrite})
	if err != nil {
		return nil, fferr.NewConnectionError(string(FileSystem), err)
	}
	return newGenericFileStore(bucket, FileSystem), nil
}

var memBuckets = struct {
	sync.Mutex
	buckets map[string]*blob.Bucket
}{buckets: make(map[string]*blob.Bucket)}

// MemoryBucket returns the process-wide in-memory bucket with the given
// name, creating it on first use. Every mem:// path with the same bucket
// name shares its contents.
func MemoryBucket(name string) *blob.Bucket {
	memBuckets.Lock()
	defer memBuckets.Unlock()
	bucket, ok := memBuckets.buckets[name]
	if !ok {
		bucket = memblob.OpenBucket(nil)
		memBuckets.buckets[name] = bucket
	}
	return bucket
}

// ResetMemoryBucket drops the contents of an in-memory bucket.
func ResetMemoryBucket(name string) {
	memBuckets.Lock()
	defer memBuckets.Unlock()
	if bucket, ok := memBuckets.buckets[name]; ok {
		bucket.Close()
		delete(memBuckets.buckets, name)
	}
}

func openMemory(name string) FileStore {
	store := newGenericFileStore(MemoryBucket(name), Memory)
	store.shared = true
	return store
}
