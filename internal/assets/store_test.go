package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}

// mockS3 is a thread-safe in-memory S3 backend. pageSize forces paginated
// listings so the continuation loop gets exercised.
type mockS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int

	getErr  error
	listErr error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	page := m.pageSize
	if page <= 0 {
		page = 1000
	}
	end := min(start+page, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func newTestStore() (*S3Store, *mockS3) {
	mock := newMockS3()
	return NewS3Store(mock, "test-bucket"), mock
}

func TestS3StoreList(t *testing.T) {
	store, mock := newTestStore()
	mock.objects["input/alice/tenor/ballad/vocals.wav"] = []byte("a")
	mock.objects["input/alice/tenor/ballad/inst.wav"] = []byte("b")
	mock.objects["input/alice/tenor/other/vocals.wav"] = []byte("c")

	keys, err := store.List(context.Background(), "input/alice/tenor/ballad/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"input/alice/tenor/ballad/inst.wav",
		"input/alice/tenor/ballad/vocals.wav",
	}
	if !slices.Equal(keys, want) {
		t.Errorf("List = %q, want %q", keys, want)
	}
}

func TestS3StoreListPaginates(t *testing.T) {
	store, mock := newTestStore()
	mock.pageSize = 2
	for _, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav"} {
		mock.objects["songs/"+name] = []byte("x")
	}

	keys, err := store.List(context.Background(), "songs/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 5 {
		t.Errorf("List returned %d keys across pages, want 5", len(keys))
	}
}

func TestS3StoreListError(t *testing.T) {
	store, mock := newTestStore()
	mock.listErr = errors.New("bucket unreachable")

	if _, err := store.List(context.Background(), "songs/"); err == nil {
		t.Error("expected error from failing listing")
	}
}

func TestS3StoreFetch(t *testing.T) {
	store, mock := newTestStore()
	mock.objects["songs/vocals.wav"] = []byte("stem audio")
	dest := filepath.Join(t.TempDir(), "vocals.wav")

	if err := store.Fetch(context.Background(), "songs/vocals.wav", dest); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "stem audio" {
		t.Errorf("fetched %q, want the object bytes", data)
	}
}

func TestS3StoreFetchMissingKey(t *testing.T) {
	store, _ := newTestStore()
	dest := filepath.Join(t.TempDir(), "vocals.wav")

	err := store.Fetch(context.Background(), "songs/ghost.wav", dest)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		t.Error("destination file created for a missing object")
	}
}

func TestS3FromEnv(t *testing.T) {
	vars := map[string]string{
		"B2_BUCKET":             "songs",
		"B2_S3_ENDPOINT":        "https://s3.us-west-004.backblazeb2.com",
		"AWS_ACCESS_KEY_ID":     "key",
		"AWS_SECRET_ACCESS_KEY": "secret",
	}

	t.Run("complete environment", func(t *testing.T) {
		for k, v := range vars {
			t.Setenv(k, v)
		}
		store, ok := S3FromEnv()
		if !ok || store == nil {
			t.Fatal("store not built from complete environment")
		}
		if store.bucket != "songs" {
			t.Errorf("bucket = %q, want songs", store.bucket)
		}
	})

	for missing := range vars {
		t.Run("missing "+missing, func(t *testing.T) {
			for k, v := range vars {
				if k == missing {
					t.Setenv(k, "")
				} else {
					t.Setenv(k, v)
				}
			}
			if _, ok := S3FromEnv(); ok {
				t.Error("store built despite missing variable")
			}
		})
	}
}
