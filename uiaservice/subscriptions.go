package uiaservice

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/launchdarkly/uia-contract-tests/framework"
	"github.com/launchdarkly/uia-contract-tests/framework/harness"
	"github.com/launchdarkly/uia-contract-tests/servicedef"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

const callbackQueueSize = 100

// subscription receives the callbacks for one event subscription on its own mock endpoint.
// The service may post callbacks concurrently, so they go through a MessageSortingQueue and
// are dispatched to the handler one at a time, in the order the service numbered them.
type subscription struct {
	session  *Session
	id       string
	endpoint *harness.MockEndpoint
	queue    *harness.MessageSortingQueue
	dispatch func(servicedef.CallbackMessage)
	done     chan struct{}
	removing sync.Once
	logger   framework.Logger
}

func (s *Session) subscribe(
	el uia.Element,
	params servicedef.SubscribeParams,
	dispatch func(servicedef.CallbackMessage),
) (uia.Subscription, error) {
	sub := &subscription{
		session:  s,
		queue:    harness.NewMessageSortingQueue(callbackQueueSize),
		dispatch: dispatch,
		done:     make(chan struct{}),
		logger:   s.logger,
	}
	sub.endpoint = s.harness.NewMockEndpoint(http.HandlerFunc(sub.handleCallback), params.Kind+" event callback", 0, s.logger)
	go sub.consumeCallbacks()

	params.CallbackURL = sub.endpoint.BaseURL()
	resp, err := s.command(servicedef.CommandParams{
		Command:   servicedef.CommandSubscribe,
		Element:   el.RuntimeID,
		Subscribe: &params,
	})
	if err != nil {
		sub.shutdown()
		return nil, err
	}
	sub.id = resp.SubscriptionID

	s.lock.Lock()
	s.subs[sub] = struct{}{}
	s.lock.Unlock()
	return sub, nil
}

func (sub *subscription) handleCallback(w http.ResponseWriter, req *http.Request) {
	if req.Body == nil {
		sub.logger.Printf("Got callback request with no body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() { _ = req.Body.Close() }()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		sub.logger.Printf("Error reading callback request body: %s", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if len(req.URL.Path) > 1 {
		counter, err := strconv.Atoi(req.URL.Path[1:])
		if err == nil {
			sub.queue.Accept(counter, data)
			w.WriteHeader(http.StatusAccepted)
			return
		}
	}
	sub.logger.Printf("Callback request had invalid path %q", req.URL.Path)
	w.WriteHeader(http.StatusBadRequest)
}

func (sub *subscription) consumeCallbacks() {
	defer close(sub.done)
	for data := range sub.queue.C {
		var message servicedef.CallbackMessage
		if err := json.Unmarshal(data, &message); err != nil {
			sub.logger.Printf("Malformed callback from test service: %s", string(data))
			continue
		}
		sub.logger.Printf("Received event: %s", string(data))
		sub.dispatch(message)
	}
}

// shutdown stops accepting callbacks and waits until the last dispatched one has returned.
func (sub *subscription) shutdown() {
	sub.endpoint.Close()
	sub.queue.Close()
	<-sub.done
}

// Remove unsubscribes in the service. The handler is not called again once Remove returns,
// even if unsubscribing failed.
func (sub *subscription) Remove() error {
	var err error
	sub.removing.Do(func() {
		sub.session.lock.Lock()
		delete(sub.session.subs, sub)
		sub.session.lock.Unlock()

		_, err = sub.session.command(servicedef.CommandParams{
			Command:        servicedef.CommandUnsubscribe,
			SubscriptionID: sub.id,
		})
		sub.shutdown()
		if err != nil {
			err = fmt.Errorf("could not unsubscribe %s: %w", sub.id, err)
		}
	})
	return err
}

func (s *Session) AddAutomationEventHandler(
	event uia.EventID,
	el uia.Element,
	scope uia.TreeScope,
	handler uia.AutomationEventHandler,
) (uia.Subscription, error) {
	return s.subscribe(el,
		servicedef.SubscribeParams{Kind: servicedef.SubscriptionAutomation, Event: string(event), Scope: int(scope)},
		func(m servicedef.CallbackMessage) {
			handler(uia.Element{RuntimeID: m.Element}, uia.EventID(m.Event))
		})
}

func (s *Session) AddPropertyChangedHandler(
	el uia.Element,
	scope uia.TreeScope,
	props []uia.PropertyID,
	handler uia.PropertyChangedHandler,
) (uia.Subscription, error) {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, string(p))
	}
	return s.subscribe(el,
		servicedef.SubscribeParams{Kind: servicedef.SubscriptionProperty, Scope: int(scope), Properties: names},
		func(m servicedef.CallbackMessage) {
			handler(uia.Element{RuntimeID: m.Element}, uia.PropertyID(m.Property), m.Value)
		})
}

func (s *Session) AddStructureChangedHandler(
	el uia.Element,
	scope uia.TreeScope,
	handler uia.StructureChangedHandler,
) (uia.Subscription, error) {
	return s.subscribe(el,
		servicedef.SubscribeParams{Kind: servicedef.SubscriptionStructure, Scope: int(scope)},
		func(m servicedef.CallbackMessage) {
			handler(uia.Element{RuntimeID: m.Element}, uia.StructureChangeType(m.Change))
		})
}

// AddFocusChangedHandler subscribes to focus changes anywhere on the desktop.
func (s *Session) AddFocusChangedHandler(handler uia.FocusChangedHandler) (uia.Subscription, error) {
	return s.subscribe(uia.Element{},
		servicedef.SubscribeParams{Kind: servicedef.SubscriptionFocus},
		func(m servicedef.CallbackMessage) {
			handler(uia.Element{RuntimeID: m.Element})
		})
}
