package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	deletes []string
	putErr  error
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func smallPNG(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	return &buf
}

func TestUploadAndDeleteCreative(t *testing.T) {
	objects := &fakeObjects{}
	store := newCreativeStore(objects, "ads", "https://cdn.example.com/", time.Second)

	url, err := store.UploadCreative(context.Background(), smallPNG(t))
	require.NoError(t, err)
	require.Len(t, objects.puts, 1)

	key := aws.ToString(objects.puts[0].Key)
	assert.True(t, strings.HasPrefix(key, creativePrefix))
	assert.Equal(t, "ads", aws.ToString(objects.puts[0].Bucket))
	assert.Equal(t, "https://cdn.example.com/"+key, url)

	require.NoError(t, store.DeleteCreative(context.Background(), url))
	assert.Equal(t, []string{key}, objects.deletes)
}

func TestDeleteCreativeRejectsForeignURL(t *testing.T) {
	store := newCreativeStore(&fakeObjects{}, "ads", "https://cdn.example.com", time.Second)
	err := store.DeleteCreative(context.Background(), "https://elsewhere.example.com/ad-creatives/x.webp")
	assert.ErrorIs(t, err, ErrForeignURL)
}

func TestUploadCreativeSurfacesBucketErrors(t *testing.T) {
	store := newCreativeStore(&fakeObjects{putErr: errors.New("boom")}, "ads", "https://cdn.example.com", time.Second)
	_, err := store.UploadCreative(context.Background(), smallPNG(t))
	assert.ErrorContains(t, err, "boom")
}
