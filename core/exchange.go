package core

import (
	"context"

	"twislave/protocol"
)

// Reporter receives one Report per finished transaction.
type Reporter interface {
	Report(r protocol.Report) error
}

// Exchange runs the receive-then-respond cycle: take a write from the
// master, transform the bytes, and hand them back on the following read.
type Exchange struct {
	Slave       *Slave
	GeneralCall bool
	Buffer      []byte

	// Transform rewrites the received bytes before they are sent back.
	// Nil sends them back unchanged.
	Transform func(buf []byte)

	Reporter Reporter
}

// TimesTen multiplies every byte by ten (mod 256), which makes the echoed
// data easy to tell apart on the master side.
func TimesTen(buf []byte) {
	for i := range buf {
		buf[i] *= 10
	}
}

// Round runs one cycle. Transaction errors are reported, not returned; Round
// only fails when ctx ends or the Reporter fails.
func (e *Exchange) Round(ctx context.Context) error {
	for i := range e.Buffer {
		e.Buffer[i] = 0
	}
	if err := e.Slave.Configure(e.GeneralCall); err != nil {
		return err
	}

	err := e.Slave.ReceiveContext(ctx, e.Buffer)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if rerr := e.report(ReceiveReport(e.Buffer, err)); rerr != nil {
		return rerr
	}

	if e.Transform != nil {
		e.Transform(e.Buffer)
	}

	n, err := e.Slave.RespondContext(ctx, e.Buffer)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return e.report(RespondReport(n, err))
}

// Run repeats Round until ctx ends or reporting fails.
func (e *Exchange) Run(ctx context.Context) error {
	for {
		if err := e.Round(ctx); err != nil {
			return err
		}
	}
}

func (e *Exchange) report(r protocol.Report) error {
	if r.Code != protocol.CodeOK {
		DumpEdgeTrace()
	}
	if e.Reporter == nil {
		return nil
	}
	return e.Reporter.Report(r)
}

// StartupReport announces the slave address.
func StartupReport(addr Address) protocol.Report {
	return protocol.Report{Kind: protocol.KindStartup, Count: uint32(addr)}
}

// ReceiveReport describes a finished Receive into buf.
func ReceiveReport(buf []byte, err error) protocol.Report {
	r := protocol.Report{
		Kind:   protocol.KindReceive,
		Code:   ErrorCode(err),
		Count:  uint32(len(buf)),
		Status: errorStatus(err),
	}
	if err == nil {
		r.Data = buf
	}
	return r
}

// RespondReport describes a finished Respond that sent n bytes.
func RespondReport(n int, err error) protocol.Report {
	return protocol.Report{
		Kind:   protocol.KindRespond,
		Code:   ErrorCode(err),
		Count:  uint32(n),
		Status: errorStatus(err),
	}
}
