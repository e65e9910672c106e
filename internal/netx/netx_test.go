package netx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    Endpoint
		target  string
		wantErr bool
	}{
		{in: "unix:/run/reposync.sock", want: Endpoint{"unix", "/run/reposync.sock"}, target: "unix:/run/reposync.sock"},
		{in: "unix:///run/reposync.sock", want: Endpoint{"unix", "/run/reposync.sock"}, target: "unix:/run/reposync.sock"},
		{in: "127.0.0.1:7070", want: Endpoint{"tcp", "127.0.0.1:7070"}, target: "127.0.0.1:7070"},
		{in: "tcp://localhost:7070", want: Endpoint{"tcp", "localhost:7070"}, target: "localhost:7070"},
		{in: "", wantErr: true},
		{in: "unix:", wantErr: true},
		{in: "no-port", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.target, got.Target())
		})
	}
}

func TestListen_RemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.sock")
	e := Endpoint{Network: "unix", Address: path}

	l1, err := e.Listen()
	require.NoError(t, err)
	// Closing a unix listener unlinks the file; simulate a crash instead by
	// listening again while the first one is still bound.
	l2, err := e.Listen()
	require.NoError(t, err)
	_ = l2.Close()
	_ = l1.Close()
}

func TestDecodeJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.Header().Set("X-Seafile-OTP", "required")
			http.Error(w, `{"detail":"bad"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ok")
	require.NoError(t, err)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, DecodeJSON(resp, &out))
	assert.Equal(t, "abc", out.Token)

	resp, err = http.Get(ts.URL + "/fail")
	require.NoError(t, err)
	err = DecodeJSON(resp, &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "required", se.Header.Get("X-Seafile-OTP"))
	assert.Contains(t, se.Error(), "bad")
}
