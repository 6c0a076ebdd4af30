package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Jaipur", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "wayfarer-trip-planner", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"26.9154576","lon":"75.8189817","display_name":"Jaipur, Rajasthan, India","importance":0.71}]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, time.Second)
	place, found, err := client.Lookup(context.Background(), "Jaipur")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "Jaipur", place.Input)
	assert.Equal(t, "Jaipur, Rajasthan, India", place.CanonicalName)
	assert.InDelta(t, 26.9154576, place.Latitude, 1e-6)
	assert.InDelta(t, 75.8189817, place.Longitude, 1e-6)
	assert.True(t, place.Confident)
}

func TestNominatimLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, time.Second)
	place, found, err := client.Lookup(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, place)
}

func TestNominatimLookupLowImportanceNotConfident(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"1.0","lon":"2.0","display_name":"Somewhere","importance":0.1}]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, time.Second)
	place, found, err := client.Lookup(context.Background(), "somewhere obscure")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, place.Confident)
}

func TestNominatimLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, time.Second)
	_, _, err := client.Lookup(context.Background(), "Jaipur")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status")
}

func TestNominatimLookupBadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"not-a-number","lon":"75.8","display_name":"Jaipur","importance":0.7}]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, time.Second)
	_, _, err := client.Lookup(context.Background(), "Jaipur")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}
