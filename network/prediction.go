package network

import (
	"math"

	"github.com/automoto/bouncerz-mp/shared/arena"
)

const defaultHistorySize = 256

// InputRecord stores an input alongside the predicted position after applying it.
type InputRecord struct {
	Input      arena.Input
	PredictedX float64
	PredictedY float64
}

// PredictionBuffer holds the inputs the server has not acknowledged yet, in
// the order they were predicted. Timestamps are the acknowledgement keys.
type PredictionBuffer struct {
	records []InputRecord
	limit   int
}

// NewPredictionBuffer creates a buffer keeping at most limit records; the
// oldest are dropped first.
func NewPredictionBuffer(limit int) *PredictionBuffer {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return &PredictionBuffer{limit: limit}
}

// Store saves an input and the resulting predicted position.
func (pb *PredictionBuffer) Store(input arena.Input, predX, predY float64) {
	if len(pb.records) >= pb.limit {
		pb.records = append(pb.records[:0], pb.records[1:]...)
	}
	pb.records = append(pb.records, InputRecord{
		Input:      input,
		PredictedX: predX,
		PredictedY: predY,
	})
}

// Acknowledge drops every record at or before the acknowledged timestamp and
// returns how many were dropped.
func (pb *PredictionBuffer) Acknowledge(ack float64) int {
	n := 0
	for n < len(pb.records) && pb.records[n].Input.Timestamp <= ack {
		n++
	}
	if n > 0 {
		pb.records = append(pb.records[:0], pb.records[n:]...)
	}
	return n
}

// Pending returns a copy of the unacknowledged records.
func (pb *PredictionBuffer) Pending() []InputRecord {
	return append([]InputRecord(nil), pb.records...)
}

func (pb *PredictionBuffer) Len() int {
	return len(pb.records)
}

func (pb *PredictionBuffer) Reset() {
	pb.records = pb.records[:0]
}

// PredictionError calculates the distance between the predicted and the
// server position for the input with the given timestamp. It returns 0 when
// the input is no longer buffered.
func (pb *PredictionBuffer) PredictionError(ts, serverX, serverY float64) float64 {
	for _, record := range pb.records {
		if record.Input.Timestamp == ts {
			return math.Hypot(record.PredictedX-serverX, record.PredictedY-serverY)
		}
	}
	return 0
}
