package loader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalStore_ListDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song_data", "A", "B", "TRABC.json"), "{}")
	writeFile(t, filepath.Join(dir, "song_data", "A", "TRAAA.json"), "{}")
	writeFile(t, filepath.Join(dir, "log_data", "2018-11-01-events.json"), "{}")

	got, err := LocalStore{}.List(context.Background(), filepath.Join(dir, "song_data"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "song_data", "A", "B", "TRABC.json"),
		filepath.Join(dir, "song_data", "A", "TRAAA.json"),
	}, got)
}

func TestLocalStore_ListPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "log_data", "e.json"), "{}")
	writeFile(t, filepath.Join(dir, "log_json_path.json"), "{}")
	writeFile(t, filepath.Join(dir, "songs.json"), "{}")

	got, err := LocalStore{}.List(context.Background(), "file://"+filepath.Join(dir, "log_"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "log_data", "e.json"),
		filepath.Join(dir, "log_json_path.json"),
	}, got)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	_, err := LocalStore{}.List(context.Background(), filepath.Join(t.TempDir(), "nope", "deeper"))
	assert.Error(t, err)
}

func TestLocalStore_Open(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	writeFile(t, path, `{"a":1}`)

	r, err := LocalStore{}.Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))

	_, err = LocalStore{}.Open(context.Background(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://udacity-dend/log_data/2018/11")
	require.NoError(t, err)
	assert.Equal(t, "udacity-dend", bucket)
	assert.Equal(t, "log_data/2018/11", key)

	bucket, key, err = ParseS3URI("s3://udacity-dend")
	require.NoError(t, err)
	assert.Equal(t, "udacity-dend", bucket)
	assert.Empty(t, key)

	_, _, err = ParseS3URI("s3:///key")
	assert.Error(t, err)
	_, _, err = ParseS3URI("/tmp/data")
	assert.Error(t, err)
}

// fakeS3 serves a fixed object set, two keys per page.
type fakeS3 struct {
	objects map[string]string
	keys    []string
	calls   int
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.calls++
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range f.keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	var matching []string
	for _, k := range f.keys[start:] {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			matching = append(matching, k)
		}
	}
	out := &s3.ListObjectsV2Output{}
	for i, k := range matching {
		if i == 2 {
			out.IsTruncated = aws.Bool(true)
			out.NextContinuationToken = aws.String(k)
			break
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func newFakeS3(objects map[string]string) *fakeS3 {
	f := &fakeS3{objects: objects}
	for k := range objects {
		f.keys = append(f.keys, k)
	}
	sort.Strings(f.keys)
	return f
}

func TestS3Store_ListPaginates(t *testing.T) {
	fake := newFakeS3(map[string]string{
		"song_data/A/A/a.json": "{}",
		"song_data/A/B/b.json": "{}",
		"song_data/B/c.json":   "{}",
		"song_data/":           "",
		"log_data/e.json":      "{}",
	})
	store := NewS3StoreWithClient(fake)

	got, err := store.List(context.Background(), "s3://bucket/song_data")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"s3://bucket/song_data/A/A/a.json",
		"s3://bucket/song_data/A/B/b.json",
		"s3://bucket/song_data/B/c.json",
	}, got)
	assert.Equal(t, 2, fake.calls)
}

func TestS3Store_Open(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3(map[string]string{"log_json_path.json": `{"jsonpaths":[]}`}))

	r, err := store.Open(context.Background(), "s3://bucket/log_json_path.json")
	require.NoError(t, err)
	b, _ := io.ReadAll(r)
	assert.Equal(t, `{"jsonpaths":[]}`, string(b))

	_, err = store.Open(context.Background(), "s3://bucket/missing.json")
	assert.ErrorContains(t, err, "failed to read s3://bucket/missing.json")
}

func TestRouter_Dispatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	router := NewRouterWithStores(LocalStore{}, NewS3StoreWithClient(newFakeS3(map[string]string{"k/x.json": "{}"})))

	local, err := router.List(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json")}, local)

	remote, err := router.List(context.Background(), "s3://bucket/k")
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://bucket/k/x.json"}, remote)
}

func TestRouter_NoS3Store(t *testing.T) {
	router := NewRouterWithStores(LocalStore{}, nil)
	_, err := router.Open(context.Background(), "s3://bucket/key")
	assert.ErrorContains(t, err, "no S3 store configured")
}
