package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
)

const endpointPathPrefix = "/endpoints/"
const httpListenerTimeout = time.Second * 10

// TestHarness is the harness's view of the test service: it creates sessions there, and it
// receives the event callbacks that the service posts back to our own HTTP listener.
type TestHarness struct {
	testServiceBaseURL         string
	testHarnessExternalBaseURL string
	testServiceInfo            TestServiceInfo
	endpoints                  map[string]*MockEndpoint
	lastEndpointID             int
	logger                     framework.Logger
	lock                       sync.Mutex
}

// NewTestHarness creates a TestHarness, and verifies that the test service is responding by
// querying its status resource. It also starts an HTTP listener on the specified port to
// receive callback requests.
func NewTestHarness(
	testServiceBaseURL string,
	testHarnessExternalHostname string,
	testHarnessPort int,
	statusQueryTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	h := AttachTestHarness(
		testServiceBaseURL,
		fmt.Sprintf("http://%s:%d", testHarnessExternalHostname, testHarnessPort),
		debugLogger,
	)

	testServiceInfo, err := queryTestServiceInfo(testServiceBaseURL, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	h.testServiceInfo = testServiceInfo

	if err = startServer(testHarnessPort, h.Handler()); err != nil {
		return nil, err
	}

	return h, nil
}

// AttachTestHarness creates a TestHarness without querying the service or starting a listener.
// The caller is responsible for serving Handler() at callbackBaseURL.
func AttachTestHarness(testServiceBaseURL, callbackBaseURL string, debugLogger framework.Logger) *TestHarness {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	return &TestHarness{
		testServiceBaseURL:         strings.TrimSuffix(testServiceBaseURL, "/"),
		testHarnessExternalBaseURL: strings.TrimSuffix(callbackBaseURL, "/"),
		endpoints:                  make(map[string]*MockEndpoint),
		logger:                     debugLogger,
	}
}

func (h *TestHarness) TestServiceInfo() TestServiceInfo {
	return h.testServiceInfo
}

func (h *TestHarness) TestServiceHasCapability(desired string) bool {
	for _, capability := range h.testServiceInfo.Capabilities {
		if capability == desired {
			return true
		}
	}
	return false
}

// Handler returns the HTTP handler that dispatches callback requests to mock endpoints.
func (h *TestHarness) Handler() http.Handler {
	return http.HandlerFunc(h.serveHTTP)
}

func (h *TestHarness) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == "HEAD" {
		w.WriteHeader(200) // we use this to test whether our own listener is active yet
		return
	}

	if !strings.HasPrefix(req.URL.Path, endpointPathPrefix) {
		h.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(404)
		return
	}
	path := strings.TrimPrefix(req.URL.Path, endpointPathPrefix)
	var endpointID string
	if slashPos := strings.Index(path, "/"); slashPos >= 0 {
		endpointID, path = path[0:slashPos], path[slashPos:]
	} else {
		endpointID, path = path, ""
	}

	h.lock.Lock()
	e := h.endpoints[endpointID]
	h.lock.Unlock()
	if e == nil {
		h.logger.Printf("Received request for unrecognized endpoint %s", req.URL.Path)
		w.WriteHeader(404)
		return
	}

	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			h.logger.Printf("Unexpected error trying to read request body: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body = data
	}

	ctx, cancellerPtr, ok := e.track(req.Context())
	if !ok {
		w.WriteHeader(404)
		return
	}
	defer e.untrack(cancellerPtr)

	e.notify(IncomingRequestInfo{
		Headers: req.Header,
		Method:  req.Method,
		Path:    path,
		Body:    body,
		Context: ctx,
	})

	transformedReq := req.WithContext(ctx)
	url := *req.URL
	url.Path = path
	transformedReq.URL = &url
	if body != nil {
		transformedReq.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	e.handler.ServeHTTP(w, transformedReq)
}

func startServer(port int, handler http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- server.ListenAndServe()
	}()

	// Wait till the server is definitely listening for requests before we run any tests
	deadline := time.NewTimer(httpListenerTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case err := <-listenErr:
			return fmt.Errorf("could not start callback listener on port %d: %w", port, err)
		case <-deadline.C:
			return fmt.Errorf("could not detect own listener at %s", server.Addr)
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(fmt.Sprintf("http://localhost:%d", port))
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == 200 {
					return nil
				}
			}
		}
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
