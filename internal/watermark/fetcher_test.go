package watermark

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/Duffman2k/duffvouchbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetcherConfig(markURL string) *structures.Config {
	return &structures.Config{
		Watermark: structures.WatermarkConfig{
			URL:          markURL,
			UserAgent:    "Mozilla/5.0",
			FetchTimeout: 2 * time.Second,
		},
	}
}

func TestFetcher_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(srv.URL), testutil.NewMockCache(), &testutil.MockLogger{})
	data, err := f.Fetch(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, "Mozilla/5.0", got)
}

func TestFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(srv.URL), testutil.NewMockCache(), &testutil.MockLogger{})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetch))

	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestFetcher_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewFetcher(fetcherConfig(url), testutil.NewMockCache(), &testutil.MockLogger{})
	_, err := f.Fetch(context.Background(), url)
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewFetcher(fetcherConfig(srv.URL), testutil.NewMockCache(), &testutil.MockLogger{})
	_, err := f.Fetch(ctx, srv.URL)
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestFetcher_WatermarkIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("mark"))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(srv.URL+"/mark.png"), testutil.NewMockCache(), &testutil.MockLogger{})
	for i := 0; i < 3; i++ {
		data, err := f.Watermark(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []byte("mark"), data)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_WatermarkConcurrentCallersShareFetch(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte("mark"))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(srv.URL), &testutil.MockCacheNever{}, &testutil.MockLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Watermark(context.Background())
			assert.NoError(t, err)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_WatermarkFailureNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("mark"))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(srv.URL), testutil.NewMockCache(), &testutil.MockLogger{})
	_, err := f.Watermark(context.Background())
	require.Error(t, err)

	data, err := f.Watermark(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("mark"), data)
}

type stubFetcher struct {
	base, mark       []byte
	baseErr, markErr error
	fetchURLs        []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.fetchURLs = append(s.fetchURLs, url)
	return s.base, s.baseErr
}

func (s *stubFetcher) Watermark(_ context.Context) ([]byte, error) {
	return s.mark, s.markErr
}

func TestService_Watermark(t *testing.T) {
	stub := &stubFetcher{
		base: encodePNG(t, solid(300, 300, color.NRGBA{A: 255})),
		mark: encodePNG(t, solid(20, 20, color.NRGBA{R: 255, A: 255})),
	}
	svc := NewService(stub, NewCompositor())

	out, err := svc.Watermark(context.Background(), "https://cdn.example/photo.png")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, []string{"https://cdn.example/photo.png"}, stub.fetchURLs)
}

func TestService_WatermarkFetchFailure(t *testing.T) {
	stub := &stubFetcher{baseErr: &models.FetchError{URL: "x", Status: 500}}
	svc := NewService(stub, NewCompositor())

	_, err := svc.Watermark(context.Background(), "x")
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestService_WatermarkAssetFailure(t *testing.T) {
	stub := &stubFetcher{
		base:    encodePNG(t, solid(10, 10, color.NRGBA{A: 255})),
		markErr: &models.FetchError{URL: "mark", Err: errors.New("dial")},
	}
	svc := NewService(stub, NewCompositor())

	_, err := svc.Watermark(context.Background(), "x")
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestService_WatermarkCorruptImage(t *testing.T) {
	stub := &stubFetcher{base: []byte("nope"), mark: encodePNG(t, solid(10, 10, color.NRGBA{A: 255}))}
	svc := NewService(stub, NewCompositor())

	_, err := svc.Watermark(context.Background(), "x")
	assert.True(t, errors.Is(err, models.ErrDecode))
}
