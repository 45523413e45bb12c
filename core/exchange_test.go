package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"twislave/protocol"
)

func TestExchangeRoundEchoesTimesTen(t *testing.T) {
	s, _, ctx := newScriptedSlave(t,
		edge{status: 0x60},
		edge{status: 0x80, data: 1},
		edge{status: 0x80, data: 2},
		edge{status: 0xA0},
		edge{status: 0xA8},
		edge{status: 0xB8},
		edge{status: 0xB8},
	)
	ctrl := gomock.NewController(t)
	reporter := NewMockReporter(ctrl)

	gomock.InOrder(
		reporter.EXPECT().Report(protocol.Report{
			Kind:  protocol.KindReceive,
			Code:  protocol.CodeOK,
			Count: 2,
			Data:  []byte{1, 2},
		}),
		reporter.EXPECT().Report(protocol.Report{
			Kind:  protocol.KindRespond,
			Code:  protocol.CodeOK,
			Count: 2,
		}),
	)

	ex := &Exchange{
		Slave:     s,
		Buffer:    []byte{0xEE, 0xEE},
		Transform: TimesTen,
		Reporter:  reporter,
	}
	require.NoError(t, ex.Round(ctx))
	assert.Equal(t, []byte{10, 20}, ex.Buffer)
}

func TestExchangeReportsTransactionErrors(t *testing.T) {
	s, _, ctx := newScriptedSlave(t,
		edge{status: 0xA8}, // master reads first: wrong direction
		edge{status: 0xA8},
		edge{status: 0xC0},
	)
	ctrl := gomock.NewController(t)
	reporter := NewMockReporter(ctrl)

	gomock.InOrder(
		reporter.EXPECT().Report(protocol.Report{
			Kind:  protocol.KindReceive,
			Code:  protocol.CodeNotExpectedTransactionDirection,
			Count: 1,
		}),
		reporter.EXPECT().Report(protocol.Report{
			Kind:  protocol.KindRespond,
			Code:  protocol.CodeOK,
			Count: 1,
		}),
	)

	ex := &Exchange{Slave: s, Buffer: make([]byte, 1), Reporter: reporter}
	require.NoError(t, ex.Round(ctx))
}

func TestExchangeStopsOnReporterError(t *testing.T) {
	s, _, ctx := newScriptedSlave(t,
		edge{status: 0x60},
		edge{status: 0xA0},
	)
	ctrl := gomock.NewController(t)
	reporter := NewMockReporter(ctrl)
	boom := errors.New("uart gone")
	reporter.EXPECT().Report(gomock.Any()).Return(boom)

	ex := &Exchange{Slave: s, Buffer: make([]byte, 1), Reporter: reporter}
	assert.ErrorIs(t, ex.Run(ctx), boom)
}

func TestExchangeRunEndsWithContext(t *testing.T) {
	s, _, ctx := newScriptedSlave(t)
	ex := &Exchange{Slave: s, Buffer: make([]byte, 1)}
	assert.ErrorIs(t, ex.Run(ctx), context.Canceled)
}

func TestReceiveReportCarriesStatus(t *testing.T) {
	r := ReceiveReport([]byte{1}, &UnknownStateError{Code: 0xF8})
	assert.Equal(t, protocol.CodeUnknownState, r.Code)
	assert.Equal(t, protocol.Status(0xF8), r.Status)
	assert.Nil(t, r.Data)

	assert.Equal(t, protocol.Report{Kind: protocol.KindStartup, Count: 0x26}, StartupReport(0x26))
}
