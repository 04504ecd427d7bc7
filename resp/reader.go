package resp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Reader decodes RESP values from a stream.
type Reader struct {
	rd *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{rd: br}
	}
	return &Reader{rd: bufio.NewReader(r)}
}

// readLine returns the next line without its CRLF terminator.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.rd.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		return nil, fmt.Errorf("%w: line too long", ErrProtocol)
	}
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}
	return line[:len(line)-2], nil
}

// preallocLen caps the capacity reserved for an announced element count.
func preallocLen(n int) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return n
}

func parseLen(b []byte, max int) (int, error) {
	n, err := strconv.Atoi(string(b))
	if err != nil || n < -1 || n > max {
		return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, b)
	}
	return n, nil
}

// ReadValue reads one complete value. Nested arrays are read recursively.
func (r *Reader) ReadValue() (Node, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrProtocol)
	}

	body := line[1:]
	switch line[0] {
	case TypeSimple:
		return SimpleString{Value: string(body)}, nil
	case TypeError:
		return Error{Message: string(body)}, nil
	case TypeInteger:
		n, err := strconv.ParseInt(string(body), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrProtocol, body)
		}
		return Integer{Value: n}, nil
	case TypeBlob:
		n, err := parseLen(body, MaxBulkLen)
		if err != nil {
			return nil, err
		}
		if n == -1 {
			return Null{}, nil
		}
		b, err := r.readBulk(n)
		if err != nil {
			return nil, err
		}
		return BlobString{Value: string(b)}, nil
	case TypeArray:
		n, err := parseLen(body, MaxArrayLen)
		if err != nil {
			return nil, err
		}
		if n == -1 {
			return Null{}, nil
		}
		array := Array{Elements: make([]Node, 0, preallocLen(n))}
		for i := 0; i < n; i++ {
			elem, err := r.ReadValue()
			if err != nil {
				return nil, err
			}
			array.Elements = append(array.Elements, elem)
		}
		return array, nil
	case TypeNull:
		return Null{}, nil
	case TypeDouble:
		f, err := strconv.ParseFloat(string(body), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid double %q", ErrProtocol, body)
		}
		return Double{Value: f}, nil
	case TypeBoolean:
		switch string(body) {
		case "t":
			return Boolean{Value: true}, nil
		case "f":
			return Boolean{Value: false}, nil
		}
		return nil, fmt.Errorf("%w: invalid boolean %q", ErrProtocol, body)
	case TypeBignum:
		return BigNum{Value: string(body)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type byte %q", ErrProtocol, line[0])
	}
}

// readBulk reads n payload bytes plus the trailing CRLF. Large payloads are
// read in chunks so memory grows with the bytes actually received, not with
// the announced length.
func (r *Reader) readBulk(n int) ([]byte, error) {
	var buf []byte
	if n+2 <= bulkChunk {
		buf = make([]byte, n+2)
		if _, err := io.ReadFull(r.rd, buf); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	} else {
		var b bytes.Buffer
		b.Grow(bulkChunk)
		if _, err := io.CopyN(&b, r.rd, int64(n+2)); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		buf = b.Bytes()
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return nil, fmt.Errorf("%w: bulk string not terminated by CRLF", ErrProtocol)
	}
	return buf[:n], nil
}

// readInlineLine returns the next line without its terminator, which may be
// CRLF or a bare LF.
func (r *Reader) readInlineLine() ([]byte, error) {
	line, err := r.rd.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		return nil, fmt.Errorf("%w: line too long", ErrProtocol)
	}
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	line = line[:len(line)-1]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line, nil
}

// ReadCommand reads a request: either a multibulk array of bulk strings or
// an inline command line split on whitespace. An empty inline line yields an
// empty, non-nil slice.
func (r *Reader) ReadCommand() ([]string, error) {
	first, err := r.rd.Peek(1)
	if err != nil {
		return nil, err
	}
	if first[0] != TypeArray {
		line, err := r.readInlineLine()
		if err != nil {
			return nil, err
		}
		fields := bytes.Fields(line)
		argv := make([]string, len(fields))
		for i, f := range fields {
			argv[i] = string(f)
		}
		return argv, nil
	}

	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	n, err := parseLen(line[1:], MaxArrayLen)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}

	argv := make([]string, 0, preallocLen(n))
	for i := 0; i < n; i++ {
		header, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if len(header) == 0 || header[0] != TypeBlob {
			return nil, fmt.Errorf("%w: expected '$', got %q", ErrProtocol, header)
		}
		size, err := parseLen(header[1:], MaxBulkLen)
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: null bulk in request", ErrProtocol)
		}
		b, err := r.readBulk(size)
		if err != nil {
			return nil, err
		}
		argv = append(argv, string(b))
	}
	return argv, nil
}

// Buffered returns the number of bytes already read from the stream but not
// yet consumed, so a server can flush only once a pipeline is drained.
func (r *Reader) Buffered() int {
	return r.rd.Buffered()
}
