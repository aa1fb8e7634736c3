package gateway

import (
	"context"
	"errors"
	"io"
	"testing"

	"cricket-hub/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3FileStore_UploadFile(t *testing.T) {
	putter := &fakePutter{}
	store := newS3FileStore(putter, "https://project.supabase.co/", logger.NewNop())

	url, err := store.UploadFile(context.Background(), "team-logos", "/logos/lions-1.png", "image/png", []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, "team-logos", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "logos/lions-1.png", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("img"), putter.body)
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/team-logos/logos/lions-1.png", url)
}

func TestS3FileStore_DefaultContentTypeAndError(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	store := newS3FileStore(putter, "https://cdn.test", logger.NewNop())

	_, err := store.UploadFile(context.Background(), "b", "k", "", nil)
	require.Error(t, err)
	assert.Equal(t, "application/octet-stream", aws.ToString(putter.input.ContentType))
	assert.Contains(t, err.Error(), "access denied")
}
