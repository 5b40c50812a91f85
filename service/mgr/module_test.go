package mgr

import (
	"errors"
	"testing"
)

type testModule struct {
	started bool
	stopped bool

	startErr error
}

func (m *testModule) Start(mgr *Manager) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *testModule) Stop(mgr *Manager) error {
	m.stopped = true
	return nil
}

func TestGroupStartStop(t *testing.T) { //nolint:paralleltest
	one := &testModule{}
	two := &testModule{}
	g := NewGroup(one, two)

	if err := g.Start(); err != nil {
		t.Fatal(err)
	}
	if !one.started || !two.started {
		t.Error("not all modules started")
	}

	if !g.Stop() {
		t.Error("stop failed")
	}
	if !one.stopped || !two.stopped {
		t.Error("not all modules stopped")
	}
	if !g.IsDone() {
		t.Error("group context should be done after stop")
	}
}

func TestGroupStartFailure(t *testing.T) { //nolint:paralleltest
	one := &testModule{}
	two := &testModule{startErr: errors.New("start failed")}
	g := NewGroup(one, two)

	if err := g.Start(); err == nil {
		t.Fatal("expected start error")
	}
	// The previously started module must be stopped again.
	if !one.stopped {
		t.Error("first module was not stopped after start failure")
	}
}

func TestGroupSkipsNilModules(t *testing.T) { //nolint:paralleltest
	var nilModule *testModule
	g := NewGroup(nil, nilModule, &testModule{})

	if len(g.modules) != 1 {
		t.Errorf("expected 1 module, got %d", len(g.modules))
	}
}
