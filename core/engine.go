package core

import (
	"context"

	"twislave/protocol"
)

// verdict is what a table step decided about the transaction.
type verdict uint8

const (
	stepContinue verdict = iota
	stepDone
	stepFail
)

// transfer is the state of one Receive/Respond call.
type transfer struct {
	ctl    *controller
	buf    []byte
	cursor int // 0 <= cursor <= len(buf)
	status protocol.Status
	err    error
}

// step performs the register actions for one edge.
type step func(t *transfer) verdict

// table maps each decoded event to its step; nil entries are unknown states.
type table [protocol.EventCount]step

// receiveTable is the slave receiver state machine.
var receiveTable = table{
	protocol.EventOwnWrite:           rxAddressed,
	protocol.EventGeneralCall:        rxAddressed,
	protocol.EventOwnWriteArbLost:    arbitrationLost,
	protocol.EventGeneralCallArbLost: arbitrationLost,
	protocol.EventDataAck:            rxData,
	protocol.EventGeneralDataAck:     rxData,
	protocol.EventDataNack:           rxEnd,
	protocol.EventGeneralDataNack:    rxEnd,
	protocol.EventStop:               rxStop,
	protocol.EventOwnRead:            wrongDirection,
}

// respondTable is the slave transmitter state machine.
var respondTable = table{
	protocol.EventOwnRead:         txAddressed,
	protocol.EventByteSentAck:     txNext,
	protocol.EventByteSentNack:    txEnd,
	protocol.EventLastByteSentAck: txEnd,
	protocol.EventOwnReadArbLost:  arbitrationLost,
	protocol.EventOwnWrite:        wrongDirection,
}

func rxAddressed(t *transfer) verdict {
	t.ctl.ackNext()
	return stepContinue
}

func rxData(t *transfer) verdict {
	if t.cursor == len(t.buf) {
		t.ctl.release()
		t.err = ErrBufferOverflow
		return stepFail
	}
	t.buf[t.cursor] = t.ctl.readData()
	t.cursor++
	t.ctl.ackNext()
	return stepContinue
}

// rxEnd: the byte was not acknowledged, so it is not part of the transfer.
func rxEnd(t *transfer) verdict {
	return stepDone
}

func rxStop(t *transfer) verdict {
	t.ctl.release()
	return stepDone
}

func txAddressed(t *transfer) verdict {
	if len(t.buf) == 0 {
		t.ctl.loadData(0x00)
		t.ctl.nackNext()
		return stepContinue
	}
	return txLoad(t)
}

func txNext(t *transfer) verdict {
	if t.cursor == len(t.buf) {
		// Pad byte; not counted.
		t.ctl.loadData(0x00)
		t.ctl.nackNext()
		return stepDone
	}
	return txLoad(t)
}

func txLoad(t *transfer) verdict {
	t.ctl.loadData(t.buf[t.cursor])
	t.cursor++
	t.ctl.ackNext()
	return stepContinue
}

func txEnd(t *transfer) verdict {
	t.ctl.release()
	return stepDone
}

func arbitrationLost(t *transfer) verdict {
	t.ctl.release()
	t.err = ErrArbitrationLost
	return stepFail
}

func wrongDirection(t *transfer) verdict {
	t.ctl.loadData(0x00)
	t.ctl.release()
	t.err = ErrNotExpectedTransactionDirection
	return stepFail
}

func unknownState(t *transfer) verdict {
	t.err = &UnknownStateError{Code: t.status}
	return stepFail
}

// run arms the controller and feeds every edge through tbl until a step
// ends the transaction. The controller is disarmed on every way out.
func (s *Slave) run(ctx context.Context, tbl *table, buf []byte) (int, error) {
	if err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.busy.Store(false)
	if !s.configured {
		return 0, ErrNotConfigured
	}

	t := transfer{ctl: &s.ctl, buf: buf}
	done := ctx.Done()

	// TWIE is off until arm, so nothing can signal in between. Whatever is
	// pending now belongs to a transaction that has already ended.
	s.bridge.Clear()
	s.ctl.arm()

	for {
		if !s.bridge.Pending() {
			select {
			case <-done:
				s.ctl.disarmAndReset()
				s.bridge.Clear()
				return t.cursor, ctx.Err()
			default:
			}
			s.idle()
			continue
		}

		t.status = protocol.Status(s.ctl.snapshot())
		ev := protocol.Decode(t.status)
		fn := tbl[ev]
		if fn == nil {
			fn = unknownState
		}
		v := fn(&t)
		if v != stepContinue {
			s.ctl.disarmAndReset()
		}
		s.bridge.Clear()
		RecordEdge(t.status, ev, t.cursor)

		switch v {
		case stepDone:
			return t.cursor, nil
		case stepFail:
			DebugPrintln("[TWI] " + t.err.Error())
			return t.cursor, t.err
		}
	}
}
