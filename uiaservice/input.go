package uiaservice

import (
	"github.com/launchdarkly/uia-contract-tests/servicedef"
	"github.com/launchdarkly/uia-contract-tests/uia"
)

func (s *Session) key(key uia.Key, down bool) error {
	_, err := s.command(servicedef.CommandParams{
		Command:  servicedef.CommandKeyboard,
		Keyboard: &servicedef.KeyboardParams{Key: string(key), Down: down},
	})
	return err
}

func (s *Session) mouse(params servicedef.MouseParams) error {
	_, err := s.command(servicedef.CommandParams{Command: servicedef.CommandMouse, Mouse: &params})
	return err
}

func (s *Session) KeyDown(key uia.Key) error { return s.key(key, true) }

func (s *Session) KeyUp(key uia.Key) error { return s.key(key, false) }

func (s *Session) MouseMove(pt uia.Point) error {
	return s.mouse(servicedef.MouseParams{Action: "move", Point: &servicedef.PointParams{X: pt.X, Y: pt.Y}})
}

func (s *Session) MouseDown(button uia.MouseButton) error {
	return s.mouse(servicedef.MouseParams{Action: "down", Button: string(button)})
}

func (s *Session) MouseUp(button uia.MouseButton) error {
	return s.mouse(servicedef.MouseParams{Action: "up", Button: string(button)})
}
