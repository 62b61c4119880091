/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 *
 * Package s3cache provides an implementation of httpcache.Cache that stores and
 * retrieves data using Amazon S3, so that several hosts running the voobly
 * client can share one response cache. It is based on the original
 * github.com/sourcegraph/s3cache but updated to use the more modern
 * aws-sdk-go-v2 and golang standard library functions
 */
package s3cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const DefaultPrefix = "vooblycache"

// ObjectAPI is the subset of *s3.Client the cache uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput,
		optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput,
		optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Cache objects store and retrieve data using Amazon S3.
type Cache struct {
	// Client is the object API the cache uses. Init() sets it to an s3.Client
	// built from the default AWS config; callers may supply their own instead
	// via NewWithClient.
	Client ObjectAPI

	bucketName string

	// objects are stored under <prefix>/<md5(key)>
	prefix string

	// gzip indicates whether cache entries should be gzipped in Set and
	// gunzipped in Get. If true, object keys have the suffix ".gz" appended.
	gzip bool

	logErrors bool

	// The context to specify when initiating s3 requests
	ctx context.Context
}

func (c *Cache) Get(key string) ([]byte, bool) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	resp, err := c.Client.GetObject(c.ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		// no such key just indicates a cache miss
		if c.logErrors &&
			!(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey") {

			log.Printf("s3cache.get: failed to get object %v/%v: %v",
				*input.Bucket, *input.Key, err)
		}
		return nil, false
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if c.gzip {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			if c.logErrors {
				log.Printf("s3cache.get: failed to open compressed object %v/%v: %v",
					*input.Bucket, *input.Key, err)
			}
			return nil, false
		}
		defer gz.Close()
		rdr = gz
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		if c.logErrors {
			log.Printf("s3cache.get: failed to read object %v/%v: %v",
				*input.Bucket, *input.Key, err)
		}
		return nil, false
	}

	return data, true
}

// Set stores the provided data in the cache under the given key.
func (c *Cache) Set(key string, data []byte) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if c.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, err := gw.Write(data)
		if err == nil {
			err = gw.Close()
		}
		if err != nil {
			if c.logErrors {
				log.Printf("s3cache.set: failed to gzip data for %v/%v: %v",
					*input.Bucket, *input.Key, err)
			}
			return
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := c.Client.PutObject(c.ctx, input); err != nil && c.logErrors {
		log.Printf("s3cache.set: put failed for %v/%v: %v", *input.Bucket,
			*input.Key, err)
	}
}

func (c *Cache) Delete(key string) {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(c.objectKey(key)),
	}

	if _, err := c.Client.DeleteObject(c.ctx, input); err != nil && c.logErrors {
		log.Printf("s3cache.delete: delete failed for %v/%v: %v", *input.Bucket,
			*input.Key, err)
	}
}

func (c *Cache) objectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("%v/%v", c.prefix, hex.EncodeToString(h.Sum(nil)))
	if c.gzip {
		objKey += ".gz"
	}

	return objKey
}

// New returns a new Cache with underlying storage in the specified Amazon S3
// bucket. An empty prefix selects DefaultPrefix. Callers should take care to
// invoke Init() on the returned Cache object before use.
func New(ctx context.Context, bucketName string, prefix string, gzip bool,
	logErrors bool) *Cache {

	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{
		ctx:        ctx,
		bucketName: bucketName,
		prefix:     prefix,
		gzip:       gzip,
		logErrors:  logErrors,
	}
}

// NewWithClient is like New but uses client instead of one built by Init().
func NewWithClient(ctx context.Context, client ObjectAPI, bucketName string,
	prefix string, gzip bool, logErrors bool) *Cache {

	c := New(ctx, bucketName, prefix, gzip, logErrors)
	c.Client = client
	return c
}

// Init loads the default AWS configuration and verifies the bucket is
// reachable. The default configuration sources are:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
func (c *Cache) Init() error {
	cfg, err := config.LoadDefaultConfig(c.ctx)
	if err != nil {
		return fmt.Errorf("s3cache.init: failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	// Permission check: verify bucket exists and is accessible
	if _, err = client.HeadBucket(c.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucketName),
	}); err != nil {
		return fmt.Errorf("s3cache.init: head bucket failed for %s: %w", c.bucketName, err)
	}

	// Permission check: verify ability to list objects (read/list permissions)
	if _, err = client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucketName),
		Prefix:  aws.String(c.prefix + "/"),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3cache.init: list objects failed for %s: %w", c.bucketName, err)
	}

	c.Client = client
	return nil
}
