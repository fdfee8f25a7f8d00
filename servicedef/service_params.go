package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// Capabilities a test service may report in its status resource.
const (
	CapabilityEvents = "events"
	CapabilityInput  = "input"
	CapabilityCache  = "cache"
)

const (
	CommandNavigate       = "navigate"
	CommandGetProperty    = "getProperty"
	CommandGetPattern     = "getPattern"
	CommandInvokePattern  = "invokePattern"
	CommandSubscribe      = "subscribe"
	CommandUnsubscribe    = "unsubscribe"
	CommandFromPoint      = "fromPoint"
	CommandFromHandle     = "fromHandle"
	CommandFocusedElement = "focusedElement"
	CommandSetFocus       = "setFocus"
	CommandTargetElement  = "targetElement"
	CommandKeyboard       = "keyboard"
	CommandMouse          = "mouse"
)

// Error codes the test service puts in the "error" property of a failure response.
const (
	ErrorElementNotAvailable  = "elementNotAvailable"
	ErrorPatternNotSupported  = "patternNotSupported"
	ErrorPropertyNotSupported = "propertyNotSupported"
	ErrorNotCached            = "notCached"
)

// Subscription kinds, used both in SubscribeParams and in CallbackMessage.
const (
	SubscriptionAutomation = "automation"
	SubscriptionProperty   = "property"
	SubscriptionStructure  = "structure"
	SubscriptionFocus      = "focus"
)

// CreateSessionParams asks the test service to attach to an application. Exactly one of
// WindowHandle and ProcessID should be set; AutomationID then selects the target element
// inside that application, or the top-level window if it is empty.
type CreateSessionParams struct {
	Tag          string              `json:"tag"`
	WindowHandle ldvalue.OptionalInt `json:"windowHandle,omitempty"`
	ProcessID    ldvalue.OptionalInt `json:"processId,omitempty"`
	AutomationID string              `json:"automationId,omitempty"`
	TimeoutMS    ldvalue.OptionalInt `json:"timeoutMs,omitempty"`
}

type CommandParams struct {
	Command string `json:"command"`

	// Element is the runtime ID of the element the command applies to.
	Element string `json:"element,omitempty"`

	Direction string          `json:"direction,omitempty"`
	View      string          `json:"view,omitempty"`
	Property  string          `json:"property,omitempty"`
	Pattern   string          `json:"pattern,omitempty"`
	Method    string          `json:"method,omitempty"`
	Args      []ldvalue.Value `json:"args,omitempty"`
	Cached    bool            `json:"cached,omitempty"`

	Subscribe      *SubscribeParams `json:"subscribe,omitempty"`
	SubscriptionID string           `json:"subscriptionId,omitempty"`

	Point        *PointParams        `json:"point,omitempty"`
	WindowHandle ldvalue.OptionalInt `json:"windowHandle,omitempty"`

	Keyboard *KeyboardParams `json:"keyboard,omitempty"`
	Mouse    *MouseParams    `json:"mouse,omitempty"`
}

// SubscribeParams describes an event subscription. The service posts one CallbackMessage
// per event to CallbackURL + "/" + n, where n counts up from 1.
type SubscribeParams struct {
	Kind        string   `json:"kind"`
	Event       string   `json:"event,omitempty"`
	Scope       int      `json:"scope,omitempty"`
	Properties  []string `json:"properties,omitempty"`
	CallbackURL string   `json:"callbackUrl"`
}

type PointParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type KeyboardParams struct {
	Key  string `json:"key"`
	Down bool   `json:"down"`
}

// MouseParams is a mouse action: "move" to Point, or "down"/"up" of Button.
type MouseParams struct {
	Action string       `json:"action"`
	Point  *PointParams `json:"point,omitempty"`
	Button string       `json:"button,omitempty"`
}

// CommandResponse is the body of a successful command response. Which fields are set
// depends on the command.
type CommandResponse struct {
	Element        string        `json:"element,omitempty"`
	Found          bool          `json:"found,omitempty"`
	Value          ldvalue.Value `json:"value"`
	SubscriptionID string        `json:"subscriptionId,omitempty"`
}

// CallbackMessage is one event delivered to a subscription's callback URL.
type CallbackMessage struct {
	Kind     string        `json:"kind"`
	Element  string        `json:"element"`
	Event    string        `json:"event,omitempty"`
	Property string        `json:"property,omitempty"`
	Value    ldvalue.Value `json:"value"`
	Change   string        `json:"change,omitempty"`
}
