package resp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Writer buffers RESP2 replies; call Flush to send them.
type Writer struct {
	wr  *bufio.Writer
	num []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{wr: bufio.NewWriter(w), num: make([]byte, 0, 20)}
}

func (w *Writer) writeHeader(prefix byte, n int64) error {
	w.num = strconv.AppendInt(w.num[:0], n, 10)
	w.wr.WriteByte(prefix)
	w.wr.Write(w.num)
	_, err := w.wr.WriteString(CRLF)
	return err
}

// WriteSimple writes a status reply. CR and LF are replaced by spaces.
func (w *Writer) WriteSimple(s string) error {
	w.wr.WriteByte(TypeSimple)
	w.wr.WriteString(sanitize(s))
	_, err := w.wr.WriteString(CRLF)
	return err
}

func (w *Writer) WriteError(msg string) error {
	w.wr.WriteByte(TypeError)
	w.wr.WriteString(sanitize(msg))
	_, err := w.wr.WriteString(CRLF)
	return err
}

func (w *Writer) WriteInteger(n int64) error {
	return w.writeHeader(TypeInteger, n)
}

func (w *Writer) WriteBulk(b []byte) error {
	w.writeHeader(TypeBlob, int64(len(b)))
	w.wr.Write(b)
	_, err := w.wr.WriteString(CRLF)
	return err
}

func (w *Writer) WriteBulkString(s string) error {
	w.writeHeader(TypeBlob, int64(len(s)))
	w.wr.WriteString(s)
	_, err := w.wr.WriteString(CRLF)
	return err
}

// WriteNull writes the RESP2 null bulk string.
func (w *Writer) WriteNull() error {
	_, err := w.wr.WriteString("$-1" + CRLF)
	return err
}

func (w *Writer) WriteArrayHeader(n int) error {
	return w.writeHeader(TypeArray, int64(n))
}

func (w *Writer) WriteBulkStrings(items []string) error {
	w.WriteArrayHeader(len(items))
	for _, item := range items {
		w.WriteBulkString(item)
	}
	return nil
}

func (w *Writer) Flush() error {
	return w.wr.Flush()
}

func sanitize(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	}
	return s
}
