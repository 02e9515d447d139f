package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openshelf/catalogd/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCloud  = "testcloud"
	testKey    = "key123"
	testSecret = "secret123"
)

func testConfig(baseURL string) config.MediaConfig {
	return config.MediaConfig{
		CloudName: testCloud,
		APIKey:    testKey,
		APISecret: testSecret,
		Folder:    "products",
		BaseURL:   baseURL,
	}
}

func expectSignature(payload string) string {
	sum := sha1.Sum([]byte(payload + testSecret))
	return hex.EncodeToString(sum[:])
}

func TestUploadSignsAndParsesResult(t *testing.T) {
	var gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/"+testCloud+"/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		assert.Equal(t, testKey, r.FormValue("api_key"))
		assert.Equal(t, "products", r.FormValue("folder"))
		ts := r.FormValue("timestamp")
		require.NotEmpty(t, ts)
		expected := expectSignature(fmt.Sprintf("folder=products&timestamp=%s", ts))
		assert.Equal(t, expected, r.FormValue("signature"))

		_, fh, err := r.FormFile("file")
		require.NoError(t, err)
		gotFilename = fh.Filename

		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.example.test/products/mug.png",
			"public_id":  "products/mug",
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	res, err := c.Upload(context.Background(), "mug.png", []byte("pngdata"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.example.test/products/mug.png", res.URL)
	assert.Equal(t, "products/mug", res.PublicID)
	assert.Equal(t, "mug.png", gotFilename)
}

func TestUploadMapsCredentialRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Invalid API key"},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Upload(context.Background(), "mug.png", []byte("pngdata"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestDestroySignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/"+testCloud+"/image/destroy", r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "products/mug", r.FormValue("public_id"))
		ts := r.FormValue("timestamp")
		expected := expectSignature(fmt.Sprintf("public_id=products/mug&timestamp=%s", ts))
		assert.Equal(t, expected, r.FormValue("signature"))

		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	require.NoError(t, c.Destroy(context.Background(), "products/mug"))
}

func TestDestroySurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "error"})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	err := c.Destroy(context.Background(), "products/mug")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCredentials))
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != testKey || pass != testSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	require.NoError(t, c.Ping(context.Background()))

	bad := testConfig(srv.URL)
	bad.APISecret = "wrong"
	err := NewClient(bad).Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentials)
}
