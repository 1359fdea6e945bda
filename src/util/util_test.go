package util

import (
	"testing"
	"time"
)

func TestContrain(t *testing.T) {
	if Constrain(-3, -1, 3) != -1 {
		t.Error("Expected", -1)
	}
	if Constrain(2, -1, 3) != 2 {
		t.Error("Expected", 2)
	}

	if Constrain(5, -1, 3) != 3 {
		t.Error("Expected", 3)
	}
}

func TestDurWithin(t *testing.T) {
	if DurWithin(0, time.Second, time.Minute) != time.Second {
		t.Error("Expected", time.Second)
	}
	if DurWithin(2*time.Second, time.Second, time.Minute) != 2*time.Second {
		t.Error("Expected", 2*time.Second)
	}
	if DurWithin(time.Hour, time.Second, time.Minute) != time.Minute {
		t.Error("Expected", time.Minute)
	}
}
