package protocol

import "errors"

// Kind says which side of a transaction a Report describes.
type Kind uint8

const (
	KindStartup Kind = iota
	KindReceive
	KindRespond
)

func (k Kind) String() string {
	switch k {
	case KindStartup:
		return "startup"
	case KindReceive:
		return "receive"
	case KindRespond:
		return "respond"
	}
	return "kind(" + Hex8(uint8(k)) + ")"
}

// Code is the wire form of a transaction outcome.
type Code uint8

const (
	CodeOK Code = iota
	CodeBufferOverflow
	CodeArbitrationLost
	CodeNotExpectedTransactionDirection
	CodeUnknownState
	CodeNotImplemented
	CodeCanceled
	CodeOther
)

var codeNames = [...]string{
	CodeOK:                              "OK",
	CodeBufferOverflow:                  "BufferOverflow",
	CodeArbitrationLost:                 "ArbitrationLost",
	CodeNotExpectedTransactionDirection: "NotExpectedTransactionDirection",
	CodeUnknownState:                    "UnknownState",
	CodeNotImplemented:                  "NotImplemented",
	CodeCanceled:                        "Canceled",
	CodeOther:                           "Other",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "code(" + Hex8(uint8(c)) + ")"
}

// MaxReportData is the most payload bytes a Report carries; Count still
// holds the real transfer size when Data was cut.
const MaxReportData = 40

// Report is one transaction result as sent to the host.
//
// For KindStartup, Count carries the slave address. For KindReceive, Data
// holds the receive buffer. For KindRespond, Count is the number of payload
// bytes transmitted. Status is only meaningful with CodeUnknownState.
type Report struct {
	Kind   Kind
	Code   Code
	Count  uint32
	Status Status
	Data   []byte
}

var ErrTrailingData = errors.New("trailing bytes after report")

// EncodeReport frames r with sequence seq into out.
func EncodeReport(out *Output, seq uint8, r Report) error {
	data := r.Data
	if len(data) > MaxReportData {
		data = data[:MaxReportData]
	}
	return EncodeFrame(out, seq, func(out *Output) {
		EncodeUint(out, uint32(r.Kind))
		EncodeUint(out, uint32(r.Code))
		EncodeUint(out, r.Count)
		EncodeUint(out, uint32(r.Status))
		EncodeBytes(out, data)
	})
}

// DecodeReport parses a frame payload produced by EncodeReport.
func DecodeReport(payload []byte) (Report, error) {
	var r Report
	var fields [4]uint32
	for i := range fields {
		v, err := DecodeUint(&payload)
		if err != nil {
			return r, err
		}
		fields[i] = v
	}
	data, err := DecodeBytes(&payload)
	if err != nil {
		return r, err
	}
	if len(payload) != 0 {
		return r, ErrTrailingData
	}
	r.Kind = Kind(fields[0])
	r.Code = Code(fields[1])
	r.Count = fields[2]
	r.Status = Status(fields[3])
	r.Data = append([]byte(nil), data...)
	return r, nil
}
