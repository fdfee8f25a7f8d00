package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withServiceAndHarness(t *testing.T, service http.Handler, action func(h *TestHarness)) {
	httphelpers.WithServer(service, func(serviceServer *httptest.Server) {
		var h *TestHarness
		callbacks := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { h.Handler().ServeHTTP(w, r) })
		httphelpers.WithServer(callbacks, func(callbackServer *httptest.Server) {
			h = AttachTestHarness(serviceServer.URL, callbackServer.URL, nil)
			action(h)
		})
	})
}

func TestNewTestServiceEntityUsesLocationHeader(t *testing.T) {
	headers := make(http.Header)
	headers.Set("Location", "/sessions/1")
	service, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithResponse(201, headers, nil))

	withServiceAndHarness(t, service, func(h *TestHarness) {
		e, err := h.NewTestServiceEntity(map[string]string{"tag": "x"}, "session", nil)
		require.NoError(t, err)
		assert.Equal(t, h.testServiceBaseURL+"/sessions/1", e.ResourceURL())

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.JSONEq(t, `{"tag":"x"}`, string(r.Body))
	})
}

func TestNewTestServiceEntityFailsWithoutLocation(t *testing.T) {
	withServiceAndHarness(t, httphelpers.HandlerWithStatus(201), func(h *TestHarness) {
		_, err := h.NewTestServiceEntity(map[string]string{}, "session", nil)
		assert.Error(t, err)
	})
}

func TestSendCommandDecodesResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/sessions/1")
		w.WriteHeader(201)
	})
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"value": 3}, nil))
	mux.Handle("/sessions/1", handler)

	withServiceAndHarness(t, mux, func(h *TestHarness) {
		e, err := h.NewTestServiceEntity(map[string]string{}, "session", nil)
		require.NoError(t, err)

		var out struct {
			Value int `json:"value"`
		}
		require.NoError(t, e.SendCommand(map[string]string{"command": "getProperty"}, &out))
		assert.Equal(t, 3, out.Value)

		r := <-requestsCh
		assert.JSONEq(t, `{"command":"getProperty"}`, string(r.Body))
	})
}

func TestSendCommandReturnsServiceError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/sessions/1")
		w.WriteHeader(201)
	})
	mux.Handle("/sessions/1", httphelpers.HandlerWithResponse(404, nil,
		[]byte(`{"error":"elementNotAvailable","message":"element 42.7 is gone"}`)))

	withServiceAndHarness(t, mux, func(h *TestHarness) {
		e, err := h.NewTestServiceEntity(map[string]string{}, "session", nil)
		require.NoError(t, err)

		err = e.SendCommand(map[string]string{"command": "navigate"}, nil)
		var se *ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 404, se.StatusCode)
		assert.Equal(t, "elementNotAvailable", se.Code)
		assert.Equal(t, "element 42.7 is gone", se.Message)
	})
}

func TestServiceErrorWithPlainBody(t *testing.T) {
	withServiceAndHarness(t, httphelpers.HandlerWithResponse(500, nil, []byte("oops\n")), func(h *TestHarness) {
		_, err := h.NewTestServiceEntity(map[string]string{}, "session", nil)
		var se *ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "", se.Code)
		assert.Equal(t, "oops", se.Message)
		assert.Equal(t, "test service returned HTTP 500: oops", se.Error())
	})
}

func TestMockEndpointReceivesSubpath(t *testing.T) {
	withServiceAndHarness(t, httphelpers.HandlerWithStatus(200), func(h *TestHarness) {
		handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
		e := h.NewMockEndpoint(handler, "events", 10, nil)
		defer e.Close()

		resp, err := http.Post(e.BaseURL()+"/3", "application/json", bytes.NewBufferString(`{"kind":"focus"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 202, resp.StatusCode)

		r := <-requestsCh
		assert.Equal(t, "/3", r.Request.URL.Path)

		info, err := e.AwaitConnection(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "/3", info.Path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(info.Body, &body))
		assert.Equal(t, "focus", body["kind"])
	})
}

func TestClosedMockEndpointReturns404(t *testing.T) {
	withServiceAndHarness(t, httphelpers.HandlerWithStatus(200), func(h *TestHarness) {
		e := h.NewMockEndpoint(httphelpers.HandlerWithStatus(202), "events", 1, nil)
		url := e.BaseURL()
		e.Close()

		resp, err := http.Post(url+"/1", "application/json", bytes.NewBufferString(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 404, resp.StatusCode)

		_, err = e.AwaitConnection(time.Millisecond * 10)
		assert.Error(t, err)
	})
}

func TestAwaitConnectionTimesOut(t *testing.T) {
	withServiceAndHarness(t, httphelpers.HandlerWithStatus(200), func(h *TestHarness) {
		e := h.NewMockEndpoint(httphelpers.HandlerWithStatus(202), "events", 1, nil)
		defer e.Close()
		_, err := e.AwaitConnection(time.Millisecond * 10)
		assert.Error(t, err)
	})
}
