package eventbus

import "testing"

func TestPublishInOrder(t *testing.T) {
	bus := New[int]()
	var got []int
	bus.Subscribe(func(v int) { got = append(got, v) })
	bus.Subscribe(func(v int) { got = append(got, v*10) })

	bus.Publish(1)
	bus.Publish(2)

	want := []int{1, 10, 2, 20}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order: got %v, want %v", got, want)
		}
	}
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *Bus[string]
	bus.Publish("dropped") // must not panic
}

func TestNilHandlerIgnored(t *testing.T) {
	bus := New[int]()
	bus.Subscribe(nil)
	bus.Publish(1) // must not panic
}
