package content_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
	"zkl/internal/content"
	"zkl/internal/rpc"
)

func TestComputeCID(t *testing.T) {
	a, err := content.ComputeCID([]byte("hello"))
	require.NoError(t, err)
	b, err := content.ComputeCID([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, byte('b'), a[0], "CIDv1 renders in base32")

	c, err := content.ComputeCID([]byte("hello!"))
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	got, err := content.ValidateCID(a)
	require.NoError(t, err)
	require.Equal(t, a, got)

	_, err = content.ValidateCID("not-a-cid")
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestAPIURL(t *testing.T) {
	tests := []struct {
		in, want string
		err      bool
	}{
		{in: "/ip4/127.0.0.1/tcp/5001", want: "http://127.0.0.1:5001"},
		{in: "/ip6/::1/tcp/5001", want: "http://[::1]:5001"},
		{in: "/dns4/ipfs.local/tcp/80", want: "http://ipfs.local:80"},
		{in: "http://localhost:5001/", want: "http://localhost:5001"},
		{in: "/ip4/127.0.0.1", err: true},
		{in: "localhost:5001", err: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := content.APIURL(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := content.NewMemoryStore()

	id, err := s.Add(ctx, []byte("blob"))
	require.NoError(t, err)
	again, err := s.Add(ctx, []byte("blob"))
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Equal(t, 1, s.Len())

	require.False(t, s.Pinned(id))
	require.NoError(t, s.Pin(ctx, id))
	require.True(t, s.Pinned(id))

	b, err := s.Cat(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("blob"), b)

	other, err := content.ComputeCID([]byte("other"))
	require.NoError(t, err)
	_, err = s.Cat(ctx, other)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, s.Pin(ctx, other), apperr.ErrNotFound)
}

// fakeNode serves the subset of the IPFS HTTP API the client uses.
func fakeNode(t *testing.T, store *content.MemoryStore) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+content.PathAdd, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pin") != "false" || q.Get("cid-version") != "1" {
			content.WriteError(w, apperr.InvalidInput("add must not pin and must use CIDv1"))
			return
		}
		data, err := content.ReadUpload(w, r, 1<<20)
		if err != nil {
			content.WriteError(w, err)
			return
		}
		id, _ := store.Add(r.Context(), data)
		content.WriteJSON(w, http.StatusOK, content.AddResponse{Name: id, Hash: id})
	})
	mux.HandleFunc("POST "+content.PathPin, func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("arg")
		if err := store.Pin(r.Context(), id); err != nil {
			content.WriteError(w, err)
			return
		}
		content.WriteJSON(w, http.StatusOK, content.PinResponse{Pins: []string{id}})
	})
	mux.HandleFunc("POST "+content.PathCat, func(w http.ResponseWriter, r *http.Request) {
		b, err := store.Cat(r.Context(), r.URL.Query().Get("arg"))
		if err != nil {
			content.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(b)
	})
	mux.HandleFunc("POST "+content.PathVersion, func(w http.ResponseWriter, r *http.Request) {
		content.WriteJSON(w, http.StatusOK, content.VersionResponse{Version: "0.30.0"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIPFSClient(t *testing.T) {
	ctx := context.Background()
	store := content.NewMemoryStore()
	srv := fakeNode(t, store)
	c := content.NewIPFSClient(rpc.New(srv.URL, 5*time.Second, 0), nil)

	data := []byte{0x00, 0x01, 0xfe, 0xff}
	id, err := c.Add(ctx, data)
	require.NoError(t, err)
	want, err := content.ComputeCID(data)
	require.NoError(t, err)
	require.Equal(t, want, id)
	require.False(t, store.Pinned(id))

	require.NoError(t, c.Pin(ctx, id))
	require.True(t, store.Pinned(id))

	got, err := c.Cat(ctx, id)
	require.NoError(t, err)
	require.Equal(t, data, got)

	missing, err := content.ComputeCID([]byte("missing"))
	require.NoError(t, err)
	_, err = c.Cat(ctx, missing)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, c.Pin(ctx, missing), apperr.ErrNotFound)

	_, err = c.Cat(ctx, "bogus")
	require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestIPFSClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := content.NewIPFSClient(rpc.New(srv.URL, time.Second, 0), nil)

	_, err := c.Add(context.Background(), []byte("x"))
	require.True(t, apperr.Retryable(err))
}

func TestIPFSClientMapsNodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   content.NodeError
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusInternalServerError,
			body:   content.NodeError{Message: "block not found", Code: content.ErrNotFound},
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, apperr.ErrNotFound) },
		},
		{
			name:   "client error",
			status: http.StatusBadRequest,
			body:   content.NodeError{Message: "invalid path", Code: content.ErrClient},
			check: func(t *testing.T, err error) {
				require.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
				require.False(t, apperr.Retryable(err))
			},
		},
		{
			name:   "node failure",
			status: http.StatusInternalServerError,
			body:   content.NodeError{Message: "datastore closed", Code: content.ErrNormal},
			check:  func(t *testing.T, err error) { require.True(t, apperr.Retryable(err)) },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				content.WriteJSON(w, tc.status, tc.body)
			}))
			defer srv.Close()
			c := content.NewIPFSClient(rpc.New(srv.URL, time.Second, 0), nil)

			id, err := content.ComputeCID([]byte("x"))
			require.NoError(t, err)
			_, err = c.Cat(context.Background(), id)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.body.Message)
			tc.check(t, err)
		})
	}
}
