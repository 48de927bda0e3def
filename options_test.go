package async

import "testing"

func TestNewOptions_DefaultsToElasticThreadPool(t *testing.T) {
	rt := NewOptions()
	defer rt.Queue.Close()
	defer rt.Env.Release()

	if rt.Queue == nil || rt.Factory == nil || rt.Env == nil {
		t.Fatal("expected NewOptions to populate Queue, Factory, and Env")
	}
}

func TestNewOptions_LegacyThreadPoolSelection(t *testing.T) {
	rt := NewOptions(WithLegacyThreadPool())
	defer rt.Queue.Close()
	defer rt.Env.Release()

	if !rt.Queue.QueueWorkItem(func() {}) {
		t.Fatal("expected a freshly built legacy Queue to accept work")
	}
}

func TestNewOptions_PanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewOptions to panic on threadpool-max < threadpool-min")
		}
	}()
	NewOptions(WithThreadPoolBounds(10, 2))
}

func TestNewOptions_PanicsOnNilOption(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewOptions to panic on a nil option")
		}
	}()
	NewOptions(nil)
}
