package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPClient_Post_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Arpay/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "/payment", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"amount":"150.00"}`, string(body))

		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewHTTPClient("mock", server.URL)
	resp, err := client.Post(context.Background(), &HTTPRequest{
		Endpoint: "/payment",
		Body:     map[string]string{"amount": "150.00"},
	})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.Map()["status"])
}

func TestHTTPClient_Post_StringBodyPassthrough(t *testing.T) {
	payload := `{"price":"150.00","locale":"tr"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, string(body))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient("mock", server.URL)
	_, err := client.Post(context.Background(), &HTTPRequest{Endpoint: "/", Body: payload})
	assert.NoError(t, err)
}

func TestHTTPClient_Post_Form(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		r.ParseForm()
		assert.Equal(t, "ORD-1", r.FormValue("merchant_oid"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient("mock", server.URL)
	_, err := client.Post(context.Background(), &HTTPRequest{
		Endpoint: "/",
		FormData: map[string]string{"merchant_oid": "ORD-1"},
	})
	assert.NoError(t, err)
}

func TestHTTPClient_NonSuccessStatusIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"card_declined"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient("mock", server.URL)
	resp, err := client.Post(context.Background(), &HTTPRequest{Endpoint: "/"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, resp.Map())
}

func TestHTTPClient_TransportFailure(t *testing.T) {
	client := NewHTTPClient("mock", "http://127.0.0.1:1")
	resp, err := client.Post(context.Background(), &HTTPRequest{Endpoint: "/"})

	assert.Nil(t, resp)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, "mock", netErr.Gateway)
	assert.NotNil(t, netErr.Unwrap())
}

func TestHTTPClient_Get_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "ORD-1", r.URL.Query().Get("orderId"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient("mock", server.URL)
	_, err := client.Get(context.Background(), &HTTPRequest{
		Endpoint:    "/payments",
		QueryParams: map[string]string{"orderId": "ORD-1"},
	})
	assert.NoError(t, err)
}

func TestHTTPResponse_Map(t *testing.T) {
	assert.Equal(t, map[string]any{"a": "b"}, (&HTTPResponse{Body: []byte(`{"a":"b"}`)}).Map())
	assert.Empty(t, (&HTTPResponse{Body: []byte(`not json`)}).Map())
	assert.Empty(t, (&HTTPResponse{Body: []byte(`[1,2]`)}).Map())
	assert.Empty(t, (&HTTPResponse{Body: nil}).Map())
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/v1/pay", joinURL("https://api.example.com/v1", "/pay"))
	assert.Equal(t, "https://api.example.com/v1/pay", joinURL("https://api.example.com/v1/", "pay"))
	assert.Equal(t, "https://api.example.com/v1/pay", joinURL("https://api.example.com/v1/", "/pay"))
	assert.Equal(t, "https://api.example.com/v1/pay", joinURL("https://api.example.com/v1", "pay"))
}

func TestMarshalBody(t *testing.T) {
	s, err := MarshalBody(map[string]string{"a": "b"})
	assert.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, s)
}
