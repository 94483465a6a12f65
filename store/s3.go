package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"airlinesim"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps documents as objects at <prefix>/<collection>/<key>.json in one bucket.
type S3Store struct {
	bucket string
	prefix string
	s3     s3API
}

func NewS3Store(s3Client s3API, bucket, prefix string) *S3Store {
	return &S3Store{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		s3:     s3Client,
	}
}

func (s *S3Store) collectionPrefix(collection string) string {
	return path.Join(s.prefix, collection) + "/"
}

func (s *S3Store) objectKey(collection, key string) string {
	return s.collectionPrefix(collection) + key + ".json"
}

func (s *S3Store) Get(ctx context.Context, collection, key string) ([]byte, error) {
	return s.get(ctx, s.objectKey(collection, key))
}

func (s *S3Store) get(ctx context.Context, objectKey string) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", objectKey, airlinesim.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object %s from S3: %w", objectKey, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3Store) Put(ctx context.Context, collection, key string, doc []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(collection, key)),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s to S3: %w", s.objectKey(collection, key), err)
	}
	return nil
}

// Query lists every object in the collection and filters client side.
func (s *S3Store) Query(ctx context.Context, collection string, q Query) ([][]byte, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.collectionPrefix(collection)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s in S3: %w", collection, err)
		}
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if strings.HasSuffix(k, ".json") {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)

	docs := make([][]byte, 0, len(keys))
	for _, k := range keys {
		b, err := s.get(ctx, k)
		if errors.Is(err, airlinesim.ErrNotFound) {
			continue // deleted between list and get
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, b)
	}
	return q.apply(docs), nil
}
