package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func audioServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sfx/req-1/sword_swing.m4a", Key("req-1", "sword_swing", "m4a"))
}

func TestURL(t *testing.T) {
	assert.Equal(t, "s3://sfx-bucket/sfx/a.wav", newArchiver(&fakeS3{}, nil, "sfx-bucket", "").URL("sfx/a.wav"))
	assert.Equal(t, "https://cdn.example.com/sfx/a.wav", newArchiver(&fakeS3{}, nil, "b", "https://cdn.example.com/").URL("sfx/a.wav"))
}

func TestArchive(t *testing.T) {
	server := audioServer(t, http.StatusOK, "AUDIO")
	fake := &fakeS3{}
	archiver := newArchiver(fake, server.Client(), "sfx-bucket", "https://cdn.example.com")

	url, err := archiver.Archive(context.Background(), server.URL+"/abc.m4a", "sfx/req-1/boom.m4a", "audio/mp4")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/sfx/req-1/boom.m4a", url)
	require.NotNil(t, fake.input)
	assert.Equal(t, "sfx-bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "sfx/req-1/boom.m4a", aws.ToString(fake.input.Key))
	assert.Equal(t, "audio/mp4", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, []byte("AUDIO"), fake.body)
}

func TestArchiveFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		s3Err    error
		emptyURL bool
	}{
		{name: "download not found", status: http.StatusNotFound, body: "missing"},
		{name: "empty download", status: http.StatusOK, body: ""},
		{name: "upload rejected", status: http.StatusOK, body: "AUDIO", s3Err: errors.New("access denied")},
		{name: "no source url", emptyURL: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := audioServer(t, tt.status, tt.body)
			archiver := newArchiver(&fakeS3{err: tt.s3Err}, server.Client(), "b", "")

			source := server.URL
			if tt.emptyURL {
				source = ""
			}
			url, err := archiver.Archive(context.Background(), source, "k", "audio/mp4")
			assert.Error(t, err)
			assert.Empty(t, url)
		})
	}
}
