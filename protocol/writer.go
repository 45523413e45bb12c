package protocol

import "io"

// ReportWriter frames Reports onto a byte stream, numbering them with a
// rolling 4-bit sequence.
type ReportWriter struct {
	w   io.Writer
	seq uint8
	out Output
}

// NewReportWriter returns a ReportWriter writing to w.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{w: w}
}

// Sync writes a lone sync byte so a reader that joined mid-stream drops
// whatever partial data it holds before the next frame.
func (rw *ReportWriter) Sync() error {
	_, err := rw.w.Write([]byte{FrameSync})
	return err
}

// Report encodes and writes r. The sequence number advances even when the
// write fails so the reader can count the gap.
func (rw *ReportWriter) Report(r Report) error {
	seq := rw.seq
	rw.seq = (rw.seq + 1) & FrameSeqMask
	if err := EncodeReport(&rw.out, seq, r); err != nil {
		return err
	}
	_, err := rw.w.Write(rw.out.Bytes())
	return err
}
