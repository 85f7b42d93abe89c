package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) ProductConfig {
	return ProductConfig{Name: "clovis", APIURL: url, APIKey: "abc1234567x"}
}

func TestFetchMetaSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product-meta", r.URL.Path)
		assert.Equal(t, "abc1234567x", r.Header.Get("clovis-api-key"))
		assert.Equal(t, "https://stratus-ventures.org", r.Header.Get("Origin"))
		w.Write([]byte(`{"stratusProductMeta":{"source_id":"clovis-app","name":"clovis","tagline":"notes for builders","url":"https://clovis.app"}}`))
	}))
	defer server.Close()

	client := NewClient()
	meta, err := client.FetchMeta(context.Background(), testConfig(server.URL))
	require.NoError(t, err)
	assert.Equal(t, "clovis-app", meta.SourceID)
	assert.Equal(t, "clovis", meta.Name)
	assert.Equal(t, "https://clovis.app", meta.URL)
}

func TestFetchMetaNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.FetchMeta(context.Background(), testConfig(server.URL))
	assert.Error(t, err)
}

func TestFetchMetaMissingEnvelopeIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"something":"else"}`))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.FetchMeta(context.Background(), testConfig(server.URL))
	assert.Error(t, err)
}

func TestFetchEventsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/product-events", r.URL.Path)
		w.Write([]byte(`{"stratusProductEvents":[
			{"id":"e1","event_type":"user_created","origin_lat":"52.5200","origin_long":"13.4050","city_code":"BER","country_code":"DEU"},
			{"source_id":"e2","event_type":"download_started","origin_lat":48.8566,"origin_long":2.3522,"city_code":"PAR","country_code":"FRA"}
		]}`))
	}))
	defer server.Close()

	client := NewClient()
	events, err := client.FetchEvents(context.Background(), testConfig(server.URL))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].SourceID)
	assert.Equal(t, "e2", events[1].SourceID)
	assert.InDelta(t, 52.52, events[0].OriginLat, 0.0001)
}

func TestFetchEventsForbiddenYieldsEmptyList(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusTeapot, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewClient()
		events, err := client.FetchEvents(context.Background(), testConfig(server.URL))
		require.NoError(t, err, "status %d", status)
		assert.Empty(t, events, "status %d", status)

		server.Close()
	}
}

func TestFetchEventsMalformedBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.FetchEvents(context.Background(), testConfig(server.URL))
	assert.Error(t, err)
}

func TestFetchEventCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stratusProductEvents":[{"id":"e1"},{"id":"e2"},{"id":"e3"}]}`))
	}))
	defer server.Close()

	client := NewClient()
	count, err := client.FetchEventCount(context.Background(), testConfig(server.URL))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFetchEventCountNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.FetchEventCount(context.Background(), testConfig(server.URL))
	assert.Error(t, err)
}

func TestFetchEventCountUnreachableHost(t *testing.T) {
	client := NewClient()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.FetchEventCount(ctx, testConfig("http://127.0.0.1:1"))
	assert.Error(t, err)
}
