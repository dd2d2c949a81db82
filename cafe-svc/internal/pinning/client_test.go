package pinning

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PinFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "logo.png", header.Filename)
			assert.Equal(t, "png-bytes", string(content))
		}
		w.Write([]byte(`{"IpfsHash":"QmHash","PinSize":9}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "key", "secret", srv.Client())
	hash, err := client.PinFile(context.Background(), "logo.png", strings.NewReader("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "QmHash", hash)
	assert.Equal(t, srv.URL+"/ipfs/QmHash", client.FileURL(hash))
}

func TestClient_PinFileFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "upstream error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`},
		{name: "missing hash", status: http.StatusOK, body: `{}`, wantErr: ErrNoHash},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				w.Write([]byte(testCase.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, srv.URL, "", "", srv.Client())
			_, err := client.PinFile(context.Background(), "menu.json", strings.NewReader("{}"))

			require.Error(t, err)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			}
		})
	}
}

func TestClient_FetchFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ipfs/QmMenu", r.URL.Path)
		w.Write([]byte(`{"name":"Espresso"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, "", "", srv.Client())
	var doc map[string]string
	require.NoError(t, client.FetchFile(context.Background(), "QmMenu", &doc))
	assert.Equal(t, "Espresso", doc["name"])
}
