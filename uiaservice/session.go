// Package uiaservice implements the automation-tree interfaces of package uia by relaying
// every call to a test service, which hosts the real accessibility API next to the
// application under test.
package uiaservice

import (
	"errors"
	"fmt"
	"sync"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/framework/harness"
	"github.com/launchdarkly/uia-contract-tests/servicedef"
	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Session is one automation session in the test service. It implements uia.Provider and
// uia.InputInjector.
type Session struct {
	harness *harness.TestHarness
	entity  *harness.TestServiceEntity
	target  uia.Element
	subs    map[*subscription]struct{}
	logger  framework.Logger
	lock    sync.Mutex
}

// NewSession asks the test service to attach to the application described by params, and
// resolves the target element.
func NewSession(h *harness.TestHarness, params servicedef.CreateSessionParams, logger framework.Logger) (*Session, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	entity, err := h.NewTestServiceEntity(params, "automation session", logger)
	if err != nil {
		return nil, fmt.Errorf("could not create automation session: %w", translateError(err))
	}
	s := &Session{
		harness: h,
		entity:  entity,
		subs:    make(map[*subscription]struct{}),
		logger:  logger,
	}
	resp, err := s.command(servicedef.CommandParams{Command: servicedef.CommandTargetElement})
	if err != nil {
		_ = entity.Close()
		return nil, fmt.Errorf("could not find target element: %w", err)
	}
	s.target = uia.Element{RuntimeID: resp.Element}
	return s, nil
}

// Target is the element the session was created for.
func (s *Session) Target() uia.Element { return s.target }

// Close removes any remaining subscriptions and disposes of the session in the service.
func (s *Session) Close() error {
	s.lock.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.lock.Unlock()

	var errs []error
	for _, sub := range subs {
		errs = append(errs, sub.Remove())
	}
	errs = append(errs, s.entity.Close())
	return errors.Join(errs...)
}

func (s *Session) command(params servicedef.CommandParams) (servicedef.CommandResponse, error) {
	var resp servicedef.CommandResponse
	if err := s.entity.SendCommand(params, &resp); err != nil {
		return servicedef.CommandResponse{}, translateError(err)
	}
	return resp, nil
}

// translateError maps the service's error codes to the uia sentinels, keeping the service's
// message.
func translateError(err error) error {
	var se *harness.ServiceError
	if !errors.As(err, &se) {
		return err
	}
	var sentinel error
	switch se.Code {
	case servicedef.ErrorElementNotAvailable:
		sentinel = uia.ErrElementNotAvailable
	case servicedef.ErrorPatternNotSupported:
		sentinel = uia.ErrPatternNotSupported
	case servicedef.ErrorPropertyNotSupported:
		sentinel = uia.ErrPropertyNotSupported
	case servicedef.ErrorNotCached:
		sentinel = uia.ErrNotCached
	default:
		return err
	}
	if se.Message == "" {
		return sentinel
	}
	return fmt.Errorf("%s: %w", se.Message, sentinel)
}

func elementOrNone(resp servicedef.CommandResponse) uia.Element {
	return uia.Element{RuntimeID: resp.Element}
}

func (s *Session) Navigate(el uia.Element, dir uia.Direction, view uia.View) (uia.Element, bool, error) {
	resp, err := s.command(servicedef.CommandParams{
		Command:   servicedef.CommandNavigate,
		Element:   el.RuntimeID,
		Direction: string(dir),
		View:      string(view),
	})
	if err != nil {
		return uia.Element{}, false, err
	}
	if !resp.Found || resp.Element == "" {
		return uia.Element{}, false, nil
	}
	return elementOrNone(resp), true, nil
}

func (s *Session) GetPropertyValue(el uia.Element, prop uia.PropertyID, cached bool) (ldvalue.Value, error) {
	resp, err := s.command(servicedef.CommandParams{
		Command:  servicedef.CommandGetProperty,
		Element:  el.RuntimeID,
		Property: string(prop),
		Cached:   cached,
	})
	if err != nil {
		return ldvalue.Null(), err
	}
	return resp.Value, nil
}

func (s *Session) GetPattern(el uia.Element, pattern uia.PatternID, cached bool) error {
	_, err := s.command(servicedef.CommandParams{
		Command: servicedef.CommandGetPattern,
		Element: el.RuntimeID,
		Pattern: string(pattern),
		Cached:  cached,
	})
	return err
}

func (s *Session) InvokePattern(el uia.Element, pattern uia.PatternID, method string, args ...ldvalue.Value) error {
	_, err := s.command(servicedef.CommandParams{
		Command: servicedef.CommandInvokePattern,
		Element: el.RuntimeID,
		Pattern: string(pattern),
		Method:  method,
		Args:    args,
	})
	return err
}

func (s *Session) FromPoint(pt uia.Point) (uia.Element, error) {
	resp, err := s.command(servicedef.CommandParams{
		Command: servicedef.CommandFromPoint,
		Point:   &servicedef.PointParams{X: pt.X, Y: pt.Y},
	})
	return elementOrNone(resp), err
}

func (s *Session) FromHandle(hwnd int) (uia.Element, error) {
	resp, err := s.command(servicedef.CommandParams{
		Command:      servicedef.CommandFromHandle,
		WindowHandle: ldvalue.NewOptionalInt(hwnd),
	})
	return elementOrNone(resp), err
}

func (s *Session) FocusedElement() (uia.Element, error) {
	resp, err := s.command(servicedef.CommandParams{Command: servicedef.CommandFocusedElement})
	return elementOrNone(resp), err
}

func (s *Session) SetFocus(el uia.Element) error {
	_, err := s.command(servicedef.CommandParams{Command: servicedef.CommandSetFocus, Element: el.RuntimeID})
	return err
}
