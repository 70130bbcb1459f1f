package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/account-service/internal/config"
)

func TestLocalStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewLocalStore(dir)

	path, err := store.Save(context.Background(), "avatar.PNG", strings.NewReader("PNGDATA"), 7)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, filepath.ToSlash(dir)+"/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	b, err := os.ReadFile(filepath.FromSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(b))
}

func TestLocalStore_IgnoresClientPath(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	path, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), filepath.Dir(filepath.FromSlash(path)))
}

func TestLocalStore_ShortWriteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	_, err := store.Save(context.Background(), "a.txt", strings.NewReader("abc"), 10)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalStore(t.TempDir()).Save(ctx, "a.txt", strings.NewReader("a"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakePutObject struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutObject) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	fake := &fakePutObject{}
	store := NewS3Store(fake, "avatars", "profile-images")
	store.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }

	path, err := store.Save(context.Background(), "me.jpg", strings.NewReader("JPEG"), 4)
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	assert.Equal(t, "avatars", aws.ToString(fake.in.Bucket))
	key := aws.ToString(fake.in.Key)
	assert.True(t, strings.HasPrefix(key, "profile-images/2026/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, int64(4), aws.ToInt64(fake.in.ContentLength))
	assert.Equal(t, "JPEG", fake.body)
	assert.Equal(t, "s3://avatars/"+key, path)
}

func TestS3Store_SaveError(t *testing.T) {
	fake := &fakePutObject{err: errors.New("access denied")}
	_, err := NewS3Store(fake, "b", "").Save(context.Background(), "x.png", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "access denied")
}

func TestFromConfig(t *testing.T) {
	store, err := FromConfig(context.Background(), config.Storage{Driver: config.StorageLocal, UploadDir: "up"})
	require.NoError(t, err)
	local, ok := store.(*LocalStore)
	require.True(t, ok)
	assert.Equal(t, "up", local.Dir())

	store, err = FromConfig(context.Background(), config.Storage{
		Driver:      config.StorageS3,
		S3Bucket:    "b",
		S3Region:    "us-east-1",
		S3Endpoint:  "http://127.0.0.1:9000",
		S3AccessKey: "minio",
		S3SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	_, err = FromConfig(context.Background(), config.Storage{Driver: "ftp"})
	assert.Error(t, err)
}
