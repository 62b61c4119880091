/* Copyright (c) 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gregjones/httpcache/test"
	"github.com/mikeb26/voobly/internal"
)

// fakeObjects is an in-memory stand-in for the S3 object API.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput,
	optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput,
	optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput,
	optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3CacheFake(t *testing.T) {
	cache := NewWithClient(context.Background(), newFakeObjects(), "bucket", "",
		false, true)
	test.Cache(t, cache)
}

func TestS3CacheFakeWithGzip(t *testing.T) {
	objs := newFakeObjects()
	cache := NewWithClient(context.Background(), objs, "bucket", "p", true, true)
	test.Cache(t, cache)

	cache.Set("k", []byte("compressed payload"))
	for name, data := range objs.objects {
		if !strings.HasPrefix(name, "bucket/p/") || !strings.HasSuffix(name, ".gz") {
			t.Errorf("unexpected object key %v", name)
		}
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("stored object is not gzip: %v", err)
		}
		plain, _ := io.ReadAll(gz)
		if string(plain) != "compressed payload" {
			t.Errorf("unexpected stored payload %q", plain)
		}
	}
}

func TestS3Cache(t *testing.T) {
	// Initialize S3-backed cache
	cache := New(context.Background(), internal.WebCacheBucket, "", false, true)
	err := cache.Init()
	if err != nil {
		t.Skip(fmt.Sprintf("Skipping test due to lack of access to %v: %v",
			internal.WebCacheBucket, err))
	}

	test.Cache(t, cache)
}
