// Package monitor decodes the report frames the firmware writes to its
// serial port.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"twislave/protocol"
)

// Stats counts what a Monitor has seen so far.
type Stats struct {
	Reports   int
	Failures  int
	Invalid   int
	Missed    int
	Discarded int
}

// Monitor reads a report stream and logs every decoded report.
type Monitor struct {
	r   io.Reader
	log zerolog.Logger
	dec protocol.FrameDecoder

	// Follow keeps reading after io.EOF, which is what a serial port with a
	// read timeout returns when the line is idle.
	Follow bool

	// OnReport, if set, is called for every decoded report.
	OnReport func(seq uint8, r protocol.Report)

	stats   Stats
	lastSeq int
}

// New returns a Monitor reading from r.
func New(r io.Reader, log zerolog.Logger) *Monitor {
	return &Monitor{r: r, log: log, lastSeq: -1}
}

// Stats returns the counters collected so far.
func (m *Monitor) Stats() Stats {
	s := m.stats
	s.Discarded = m.dec.Discarded
	return s
}

// Run decodes reports until the reader is exhausted or ctx ends. With
// Follow unset, io.EOF ends the run without error.
func (m *Monitor) Run(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := m.r.Read(buf)
		if n > 0 {
			m.dec.Write(buf[:n])
			m.drain()
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if !m.Follow {
				return nil
			}
		default:
			return fmt.Errorf("failed to read reports: %w", err)
		}
	}
}

func (m *Monitor) drain() {
	for {
		f, ok := m.dec.Next()
		if !ok {
			return
		}

		r, err := protocol.DecodeReport(f.Payload)
		if err != nil {
			m.stats.Invalid++
			m.log.Warn().Err(err).Uint8("seq", f.Seq).Msg("undecodable report")
			continue
		}

		m.track(f.Seq, r)
		m.emit(f.Seq, r)
	}
}

func (m *Monitor) track(seq uint8, r protocol.Report) {
	if r.Kind == protocol.KindStartup {
		// firmware restarted, sequence starts over
		m.lastSeq = -1
	}
	if m.lastSeq >= 0 {
		want := uint8(m.lastSeq+1) & protocol.FrameSeqMask
		if seq != want {
			missed := int((seq - want) & protocol.FrameSeqMask)
			m.stats.Missed += missed
			m.log.Warn().Uint8("seq", seq).Uint8("want", want).Int("missed", missed).
				Msg("report sequence gap")
		}
	}
	m.lastSeq = int(seq)

	m.stats.Reports++
	if r.Code != protocol.CodeOK {
		m.stats.Failures++
	}
}

func (m *Monitor) emit(seq uint8, r protocol.Report) {
	ev := m.log.Info()
	if r.Code != protocol.CodeOK {
		ev = m.log.Warn().Stringer("code", r.Code)
	}
	ev.Uint8("seq", seq).Stringer("kind", r.Kind).Msg(FormatReport(r))

	if m.OnReport != nil {
		m.OnReport(seq, r)
	}
}

// FormatReport renders r as a single human readable line.
func FormatReport(r protocol.Report) string {
	switch r.Kind {
	case protocol.KindStartup:
		return "Initialized with addr: 0x" + strings.ToUpper(strconv.FormatUint(uint64(r.Count), 16))

	case protocol.KindReceive:
		if r.Code != protocol.CodeOK {
			return "Error: " + formatCode(r)
		}
		var b strings.Builder
		b.WriteString("Received:")
		for _, c := range r.Data {
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(int(c)))
		}
		if uint32(len(r.Data)) < r.Count {
			fmt.Fprintf(&b, " ... (%d bytes)", r.Count)
		}
		return b.String()

	case protocol.KindRespond:
		if r.Code != protocol.CodeOK {
			return formatCode(r)
		}
		return strconv.FormatUint(uint64(r.Count), 10) + " bytes has been sent back"
	}
	return r.Kind.String() + ": " + formatCode(r)
}

func formatCode(r protocol.Report) string {
	if r.Code == protocol.CodeUnknownState {
		return "UnknownState: 0x" + strings.ToUpper(strconv.FormatUint(uint64(r.Status), 16))
	}
	return r.Code.String()
}
