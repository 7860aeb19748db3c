package network

import (
	"testing"

	"github.com/automoto/bouncerz-mp/shared/arena"
)

func TestPredictionBufferAcknowledge(t *testing.T) {
	pb := NewPredictionBuffer(0)
	for _, ts := range []float64{10, 20, 30, 40} {
		pb.Store(arena.Input{Timestamp: ts}, ts, 0)
	}

	if n := pb.Acknowledge(25); n != 2 {
		t.Errorf("Acknowledge(25) dropped %d, want 2", n)
	}
	pending := pb.Pending()
	if len(pending) != 2 || pending[0].Input.Timestamp != 30 {
		t.Fatalf("pending = %+v", pending)
	}
	if n := pb.Acknowledge(5); n != 0 {
		t.Errorf("old ack dropped %d records", n)
	}
	if n := pb.Acknowledge(40); n != 2 || pb.Len() != 0 {
		t.Errorf("Acknowledge(40) dropped %d, %d left", n, pb.Len())
	}
}

func TestPredictionBufferLimit(t *testing.T) {
	pb := NewPredictionBuffer(3)
	for i := 1; i <= 5; i++ {
		pb.Store(arena.Input{Timestamp: float64(i)}, 0, 0)
	}
	pending := pb.Pending()
	if len(pending) != 3 || pending[0].Input.Timestamp != 3 {
		t.Errorf("pending = %+v, want timestamps 3..5", pending)
	}

	pending[0].PredictedX = 99
	if pb.Pending()[0].PredictedX == 99 {
		t.Error("Pending shares the buffer")
	}
}

func TestPredictionError(t *testing.T) {
	pb := NewPredictionBuffer(8)
	pb.Store(arena.Input{Timestamp: 1}, 3, 4)

	if got := pb.PredictionError(1, 0, 0); got != 5 {
		t.Errorf("PredictionError = %v, want 5", got)
	}
	if got := pb.PredictionError(2, 0, 0); got != 0 {
		t.Errorf("unknown timestamp error = %v, want 0", got)
	}
}
