package uiatest

import "strings"

// StepCursor tracks which of the descriptor's declared steps the test body is on. It starts
// at 0 for every invocation and only moves forward, one position per step operation, so that
// the log lines up with the descriptor's Steps.
type StepCursor struct {
	index int
	desc  *Descriptor
}

func (c *StepCursor) Index() int { return c.index }

// Text is the declared description of the current step, or "" past the end of the script.
func (c *StepCursor) Text() string {
	if c.desc == nil {
		return ""
	}
	return c.desc.StepText(c.index)
}

// IsBugStep is true if the current step's description starts with BugMarker.
func (c *StepCursor) IsBugStep() bool {
	return strings.HasPrefix(c.Text(), BugMarker)
}

func (c *StepCursor) advance() { c.index++ }
