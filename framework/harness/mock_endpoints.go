package harness

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
)

const defaultAwaitConnectionTimeout = time.Second * 5

// MockEndpoint is a URL under the harness's listener that the test service can post to. Each
// event subscription gets its own endpoint, so closing the endpoint is enough to make sure
// no more callbacks for that subscription are delivered.
type MockEndpoint struct {
	owner       *TestHarness
	id          string
	description string
	basePath    string
	handler     http.Handler
	newConns    chan IncomingRequestInfo
	cancels     []*context.CancelFunc
	closed      bool
	logger      framework.Logger
	lock        sync.Mutex
	closing     sync.Once
}

// IncomingRequestInfo contains information about an HTTP request sent by the test service
// to one of the mock endpoints.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	Path    string
	Body    []byte
	Context context.Context
}

// NewMockEndpoint adds a new endpoint that can receive requests.
//
// The handler is called for all requests to the endpoint's base URL or any subpath of it. If
// the base URL is http://localhost:8111/endpoints/3, then a request to
// http://localhost:8111/endpoints/3/7 reaches the handler with the URL path "/7". The request
// Context is cancelled if the endpoint is closed while the handler is running.
//
// Up to bufferedRequests requests are also queued for AwaitConnection; beyond that they are
// only logged.
func (h *TestHarness) NewMockEndpoint(
	handler http.Handler,
	description string,
	bufferedRequests int,
	logger framework.Logger,
) *MockEndpoint {
	if logger == nil {
		logger = h.logger
	}
	e := &MockEndpoint{
		owner:       h,
		description: description,
		handler:     handler,
		newConns:    make(chan IncomingRequestInfo, bufferedRequests),
		logger:      logger,
	}
	h.lock.Lock()
	h.lastEndpointID++
	e.id = strconv.Itoa(h.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	h.endpoints[e.id] = e
	h.lock.Unlock()

	return e
}

// BaseURL returns the full URL of the mock endpoint as the test service should see it.
func (e *MockEndpoint) BaseURL() string {
	return e.owner.testHarnessExternalBaseURL + e.basePath
}

func (e *MockEndpoint) Description() string { return e.description }

// AwaitConnection waits for an incoming request to the endpoint. A timeout of zero means the
// default of five seconds.
func (e *MockEndpoint) AwaitConnection(timeout time.Duration) (IncomingRequestInfo, error) {
	if timeout <= 0 {
		timeout = defaultAwaitConnectionTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case cxn, ok := <-e.newConns:
		if !ok {
			return IncomingRequestInfo{}, fmt.Errorf("endpoint %q was closed", e.description)
		}
		return cxn, nil
	case <-deadline.C:
		return IncomingRequestInfo{}, fmt.Errorf("timed out waiting for an incoming request to %s", e.description)
	}
}

func (e *MockEndpoint) track(parent context.Context) (context.Context, *context.CancelFunc, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return nil, nil, false
	}
	ctx, canceller := context.WithCancel(parent)
	cancellerPtr := &canceller
	e.cancels = append(e.cancels, cancellerPtr)
	return ctx, cancellerPtr, true
}

func (e *MockEndpoint) untrack(cancellerPtr *context.CancelFunc) {
	e.lock.Lock()
	for i, c := range e.cancels {
		if c == cancellerPtr { // can't compare functions with ==, but can compare pointers
			e.cancels = append(e.cancels[:i], e.cancels[i+1:]...)
			break
		}
	}
	e.lock.Unlock()
	(*cancellerPtr)()
}

func (e *MockEndpoint) notify(incoming IncomingRequestInfo) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.closed {
		return
	}
	select { // non-blocking push
	case e.newConns <- incoming:
	default:
		e.logger.Printf("Incoming request channel was full for %s", e.description)
	}
}

// Close unregisters the endpoint. Any subsequent requests to it will receive 404 errors.
// It also cancels the Context for every active request to that endpoint.
func (e *MockEndpoint) Close() {
	e.closing.Do(func() {
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.id)
		e.owner.lock.Unlock()

		e.lock.Lock()
		cancellers := e.cancels
		e.cancels = nil
		e.closed = true
		close(e.newConns)
		e.lock.Unlock()

		for _, cancel := range cancellers {
			(*cancel)()
		}
	})
}
