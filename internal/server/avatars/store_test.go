package avatars

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "0b9e4a8e-5c62-4a35-8f3f-1d2c3b4a5e6f"

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(testID))
	assert.False(t, ValidID("../../etc/passwd"))
	assert.False(t, ValidID(""))
}

func TestInlineStore(t *testing.T) {
	s := NewInlineStore()
	ctx := context.Background()

	ref, err := s.Put(ctx, testID, []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, models.Avatar{Data: []byte("png"), ContentType: ContentType}, ref)

	data, err := s.Get(ctx, testID, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = s.Get(ctx, testID, models.Avatar{ContentType: ContentType})
	assert.ErrorIs(t, err, ErrNotStored)
	assert.NoError(t, s.Delete(ctx, testID, ref))
}

func TestFileStore_RoundTripAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	ref, err := s.Put(ctx, testID, []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, testID+".png", ref.Key)
	assert.Empty(t, ref.Data)

	_, err = s.Put(ctx, testID, []byte("second"))
	require.NoError(t, err)

	data, err := s.Get(ctx, testID, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Delete(ctx, testID, ref))
	require.NoError(t, s.Delete(ctx, testID, ref))
	_, err = s.Get(ctx, testID, ref)
	assert.ErrorIs(t, err, ErrNotStored)
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "avatars"))

	_, err := s.Put(context.Background(), "../escape", []byte("x"))
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.png"))
	assert.True(t, os.IsNotExist(statErr))
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	s := NewS3Store(fake, "bucket")
	ctx := context.Background()

	ref, err := s.Put(ctx, testID, []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "avatars/"+testID+".png", ref.Key)
	assert.Contains(t, fake.objects, "bucket/avatars/"+testID+".png")

	data, err := s.Get(ctx, testID, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, s.Delete(ctx, testID, ref))
	_, err = s.Get(ctx, testID, ref)
	assert.ErrorIs(t, err, ErrNotStored)
}

func TestS3Store_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("boom")

	_, err := NewS3Store(fake, "bucket").Put(context.Background(), testID, []byte("png"))
	assert.ErrorContains(t, err, "boom")
}

func TestNewS3StoreFromConfig_UsesSeams(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	defer func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew }()

	var opts s3.Options
	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) S3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	s, err := NewS3StoreFromConfig(context.Background(), S3Config{
		Region:       "us-east-1",
		AccessKey:    "admin",
		SecretKey:    "secretpassword",
		BaseEndpoint: "http://127.0.0.1:9000/",
		Bucket:       "avatars",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", s.Name())
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.Same(t, fake, s.client.(*fakeS3))
}
