package runninglog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

func TestNewClient(t *testing.T) {
	t.Run("applies defaults for empty arguments", func(t *testing.T) {
		client := NewClient("", 0)

		require.NotNil(t, client)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
		assert.Equal(t, DefaultTimeout, client.timeout)
	})

	t.Run("trims trailing slash from base URL", func(t *testing.T) {
		client := NewClient("http://example.com/", time.Second)

		assert.Equal(t, "http://example.com", client.baseURL)
	})
}

func TestClient_URLs(t *testing.T) {
	client := NewClient("http://example.com", time.Second)

	t.Run("workout detail URL", func(t *testing.T) {
		assert.Equal(t, "http://example.com/workouts/42?athleteid=7", client.workoutURL(7, 42))
	})

	t.Run("workout list URL", func(t *testing.T) {
		assert.Equal(t, "http://example.com/workouts?athleteid=7&page=3", client.listURL(7, 3))
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("returns body on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		body, err := client.get(context.Background(), srv.URL+"/workouts/1")

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", body)
	})

	t.Run("sends browser headers", func(t *testing.T) {
		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		_, err := client.get(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Contains(t, gotUA, "Mozilla/5.0")
	})

	t.Run("classifies 500 as transient", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		_, err := client.get(context.Background(), srv.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransient)
		assert.Equal(t, domain.KindTransient, domain.Classify(err))
	})

	t.Run("classifies 404 as permanent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		_, err := client.get(context.Background(), srv.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPermanent)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.KindPermanent, domain.Classify(err))
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("only 404 carries not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		_, err := client.get(context.Background(), srv.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPermanent)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("classifies 429 as rate limited with hint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "17")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		_, err := client.get(context.Background(), srv.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.Equal(t, 17*time.Second, domain.RetryAfterHint(err))
	})

	t.Run("classifies connection failure as transient", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()
		client := NewClient(url, time.Second)

		_, err := client.get(context.Background(), url)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransient)
	})

	t.Run("classifies login redirect as permanent", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/athlete/login", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("please sign in"))
		})
		mux.HandleFunc("/workouts/1", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/athlete/login", http.StatusFound)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		client := NewClient(srv.URL, time.Second)

		_, err := client.get(context.Background(), srv.URL+"/workouts/1")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPermanent)
	})

	t.Run("returns context error when parent is cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()
		client := NewClient(srv.URL, time.Minute)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := client.get(ctx, srv.URL)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "seconds value", header: "30", want: 30 * time.Second},
		{name: "absent header", header: "", want: 0},
		{name: "unparseable value", header: "Wed, 21 Oct 2026 07:28:00 GMT", want: 0},
		{name: "zero seconds", header: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, retryAfter(resp))
		})
	}
}

func TestStatusOf(t *testing.T) {
	t.Run("extracts status from http error", func(t *testing.T) {
		err := newHTTPError(http.StatusNotFound, "http://example.com")

		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("returns zero for other errors", func(t *testing.T) {
		assert.Equal(t, 0, statusOf(context.Canceled))
		assert.Equal(t, 0, statusOf(nil))
	})
}
