package render

import (
	"reflect"
	"testing"
)

func TestTeardownRunsInReverseOrder(t *testing.T) {
	var stack teardownStack
	var order []string

	stack.push(func() { order = append(order, "instance") })
	stack.push(func() { order = append(order, "device") })
	stack.push(func() { order = append(order, "swapchain") })

	stack.run()

	want := []string{"swapchain", "device", "instance"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("teardown order = %v, want %v", order, want)
	}
}

func TestTeardownRunClearsStack(t *testing.T) {
	var stack teardownStack
	calls := 0

	stack.push(func() { calls++ })
	stack.run()
	stack.run()

	if calls != 1 {
		t.Errorf("closure ran %d times, want 1", calls)
	}
}

func TestTeardownPartialStack(t *testing.T) {
	// A bootstrap that fails midway unwinds only what was created.
	var stack teardownStack
	var order []string

	stack.push(func() { order = append(order, "window") })
	stack.push(func() { order = append(order, "instance") })

	stack.run()

	want := []string{"instance", "window"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("partial teardown order = %v, want %v", order, want)
	}
}
