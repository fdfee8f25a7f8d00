package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/launchdarkly/uia-contract-tests/framework"
)

const defaultCommandTimeout = time.Second * 30

// TestServiceInfo is status information returned by the test service from the initial status query.
type TestServiceInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// ServiceError is returned when the test service rejects a request. If the response body was
// a JSON object of the form {"error": "...", "message": "..."}, Code and Message are taken
// from it; otherwise Message holds the raw body.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "test service returned HTTP %d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

type serviceErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func serviceErrorFromResponse(resp *http.Response) *ServiceError {
	se := &ServiceError{StatusCode: resp.StatusCode}
	if resp.Body == nil {
		return se
	}
	data, _ := io.ReadAll(resp.Body)
	var body serviceErrorBody
	if json.Unmarshal(data, &body) == nil && (body.Error != "" || body.Message != "") {
		se.Code, se.Message = body.Error, body.Message
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}

// TestServiceEntity is something we have asked the test service to create, such as an
// automation session bound to one application window.
type TestServiceEntity struct {
	resourceURL    string
	commandTimeout time.Duration
	logger         framework.Logger
}

func queryTestServiceInfo(url string, timeout time.Duration, output io.Writer) (TestServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to test service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				return TestServiceInfo{}, fmt.Errorf("test service returned status code %d", resp.StatusCode)
			}
			respData, err := io.ReadAll(resp.Body)
			if err != nil {
				return TestServiceInfo{}, err
			}
			if len(respData) == 0 {
				fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
				return TestServiceInfo{}, nil
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var info TestServiceInfo
			if err := json.Unmarshal(respData, &info); err != nil {
				return TestServiceInfo{}, fmt.Errorf("malformed status response from test service: %s", string(respData))
			}
			return info, nil
		}
		if !time.Now().Before(deadline) {
			return TestServiceInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

// StopService tells the test service that it should exit.
func (h *TestHarness) StopService() error {
	req, _ := http.NewRequest("DELETE", h.testServiceBaseURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		// It's normal for the request to return an I/O error if the service immediately quit before sending a response
		return nil
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// NewTestServiceEntity tells the test service to create a new entity based on the parameters
// we provide, which are simply marshaled to JSON. The entity remains active inside the test
// service until we explicitly close it.
func (h *TestHarness) NewTestServiceEntity(
	entityParams interface{},
	description string,
	logger framework.Logger,
) (*TestServiceEntity, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}

	data, err := json.Marshal(entityParams)
	if err != nil {
		return nil, err
	}

	logger.Printf("Creating test service entity (%s) with parameters: %s", description, string(data))
	resp, err := http.DefaultClient.Post(h.testServiceBaseURL, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serviceErrorFromResponse(resp)
	}
	resourceURL := resp.Header.Get("Location")
	if resourceURL == "" {
		return nil, errors.New("test service did not return a Location header with a resource URL")
	}
	if !strings.HasPrefix(resourceURL, "http:") && !strings.HasPrefix(resourceURL, "https:") {
		resourceURL = h.testServiceBaseURL + resourceURL
	}

	return &TestServiceEntity{
		resourceURL:    resourceURL,
		commandTimeout: defaultCommandTimeout,
		logger:         logger,
	}, nil
}

// ResourceURL is the URL the test service assigned to this entity.
func (e *TestServiceEntity) ResourceURL() string { return e.resourceURL }

// SetCommandTimeout changes how long SendCommand waits for a response. Zero means no limit.
func (e *TestServiceEntity) SetCommandTimeout(timeout time.Duration) {
	e.commandTimeout = timeout
}

// Close tells the test service to dispose of this entity.
func (e *TestServiceEntity) Close() error {
	req, err := http.NewRequest("DELETE", e.resourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 && resp.StatusCode != 204 {
		return serviceErrorFromResponse(resp)
	}
	return nil
}

// SendCommand posts a command to the entity. If out is non-nil and the service returned a
// body, the body is decoded into out. Failure responses are returned as *ServiceError.
func (e *TestServiceEntity) SendCommand(params interface{}, out interface{}) error {
	return e.SendCommandWithContext(context.Background(), params, out)
}

func (e *TestServiceEntity) SendCommandWithContext(ctx context.Context, params interface{}, out interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	e.logger.Printf("Sending command: %s", string(data))

	ctx, cancel := withTimeout(ctx, e.commandTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "POST", e.resourceURL, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return serviceErrorFromResponse(resp)
	}
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(respData) > 0 {
		e.logger.Printf("Command response: %s", string(respData))
	}
	if out == nil || len(respData) == 0 {
		return nil
	}
	if err := json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("malformed command response from test service: %s", string(respData))
	}
	return nil
}
