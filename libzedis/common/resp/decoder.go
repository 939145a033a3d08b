package resp

import (
	"bytes"
	"fmt"
	"strconv"
)

// Decoder incrementally parses reply frames out of an append-only byte
// buffer. Feed appends bytes as they arrive from the transport; Decode
// either returns exactly one complete Value or ErrIncompleteMessage
// without consuming anything, so parsing resumes cleanly across
// successive socket reads.
//
// Any other error is a protocol fault: the buffer position is
// unrecoverable and the owning connection must be discarded.
type Decoder struct {
	buf []byte
	pos int // cursor of the in-progress decode attempt
}

// NewDecoder creates an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends raw bytes from the transport.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of undecoded bytes held.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Decode extracts the next complete reply. It returns
// ErrIncompleteMessage when the buffer does not yet hold a full frame;
// in that case no input is consumed.
func (d *Decoder) Decode() (Value, error) {
	d.pos = 0
	v, err := d.decodeValue()
	if err != nil {
		return Value{}, err
	}
	// Commit: drop the consumed frame.
	d.buf = d.buf[:copy(d.buf, d.buf[d.pos:])]
	return v, nil
}

func (d *Decoder) decodeValue() (Value, error) {
	if d.pos >= len(d.buf) {
		return Value{}, ErrIncompleteMessage
	}
	typeByte := d.buf[d.pos]
	d.pos++

	switch typeByte {
	// RESP2 types
	case TypeSimpleString:
		return d.decodeSimpleString()
	case TypeError:
		return d.decodeError()
	case TypeInteger:
		return d.decodeInteger()
	case TypeBulkString:
		return d.decodeBulkString()
	case TypeArray:
		return d.decodeArray()

	// RESP3 types
	case TypeNull:
		return d.decodeNull()
	case TypeDouble:
		return d.decodeDouble()
	case TypeBoolean:
		return d.decodeBoolean()
	case TypeBlobError:
		return d.decodeBlobError()
	case TypeVerbatimString:
		return d.decodeVerbatimString()
	case TypeMap:
		return d.decodeMap()
	case TypeSet:
		return d.decodeSet()
	case TypeAttribute:
		return d.decodeAttribute()
	case TypePush:
		return d.decodePush()
	case TypeBigNumber:
		return d.decodeBigNumber()
	default:
		return Value{}, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, typeByte)
	}
}

// readLine consumes up to the next CRLF and returns the line without
// the terminator.
func (d *Decoder) readLine() ([]byte, error) {
	i := bytes.IndexByte(d.buf[d.pos:], '\n')
	if i < 0 {
		return nil, ErrIncompleteMessage
	}
	end := d.pos + i
	if end == d.pos || d.buf[end-1] != '\r' {
		return nil, fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}
	line := d.buf[d.pos : end-1]
	d.pos = end + 1
	return line, nil
}

// readBody consumes a length-prefixed payload plus its trailing CRLF.
func (d *Decoder) readBody(length int) ([]byte, error) {
	if len(d.buf)-d.pos < length+2 {
		return nil, ErrIncompleteMessage
	}
	body := d.buf[d.pos : d.pos+length]
	if d.buf[d.pos+length] != '\r' || d.buf[d.pos+length+1] != '\n' {
		return nil, fmt.Errorf("%w: payload not terminated by CRLF", ErrProtocol)
	}
	d.pos += length + 2
	// Copy out: the backing buffer is compacted after commit.
	out := make([]byte, length)
	copy(out, body)
	return out, nil
}

// readLength parses a declared element or byte count. allowNull admits
// the legacy -1 null marker.
func (d *Decoder) readLength(allowNull bool) (n int, null bool, err error) {
	line, err := d.readLine()
	if err != nil {
		return 0, false, err
	}
	n, err = strconv.Atoi(string(line))
	if err != nil {
		return 0, false, fmt.Errorf("%w: invalid length %q", ErrProtocol, line)
	}
	if n == -1 && allowNull {
		return 0, true, nil
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%w: negative length %d", ErrProtocol, n)
	}
	return n, false, nil
}

func (d *Decoder) decodeSimpleString() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	return NewSimpleString(string(line)), nil
}

func (d *Decoder) decodeError() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	return NewError(string(line)), nil
}

func (d *Decoder) decodeInteger() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
	}
	return NewInteger(n), nil
}

func (d *Decoder) decodeBulkString() (Value, error) {
	length, null, err := d.readLength(true)
	if err != nil {
		return Value{}, err
	}
	if null {
		return NewBulkString(nil), nil
	}
	body, err := d.readBody(length)
	if err != nil {
		return Value{}, err
	}
	return NewBulkString(body), nil
}

func (d *Decoder) decodeArray() (Value, error) {
	length, null, err := d.readLength(true)
	if err != nil {
		return Value{}, err
	}
	if null {
		return NewArray(nil), nil
	}
	elems := make([]Value, length)
	for i := 0; i < length; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		elems[i] = v
	}
	return NewArray(elems), nil
}

func (d *Decoder) decodeNull() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	if len(line) != 0 {
		return Value{}, fmt.Errorf("%w: unexpected payload after null", ErrProtocol)
	}
	return NewNull(), nil
}

func (d *Decoder) decodeDouble() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	f, ok := ParseDouble(string(line))
	if !ok {
		return Value{}, fmt.Errorf("%w: invalid double %q", ErrProtocol, line)
	}
	return NewDouble(f), nil
}

func (d *Decoder) decodeBoolean() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	if len(line) != 1 {
		return Value{}, fmt.Errorf("%w: invalid boolean %q", ErrProtocol, line)
	}
	switch line[0] {
	case 't':
		return NewBoolean(true), nil
	case 'f':
		return NewBoolean(false), nil
	default:
		return Value{}, fmt.Errorf("%w: invalid boolean %q", ErrProtocol, line)
	}
}

func (d *Decoder) decodeBlobError() (Value, error) {
	length, _, err := d.readLength(false)
	if err != nil {
		return Value{}, err
	}
	body, err := d.readBody(length)
	if err != nil {
		return Value{}, err
	}
	return NewBlobError(body), nil
}

func (d *Decoder) decodeVerbatimString() (Value, error) {
	length, _, err := d.readLength(false)
	if err != nil {
		return Value{}, err
	}
	body, err := d.readBody(length)
	if err != nil {
		return Value{}, err
	}
	// Payload is "fmt:content" with a three byte format tag.
	if len(body) < 4 || body[3] != ':' {
		return Value{}, fmt.Errorf("%w: malformed verbatim string", ErrProtocol)
	}
	return NewVerbatimString(string(body[:3]), string(body[4:])), nil
}

func (d *Decoder) decodeMap() (Value, error) {
	items, err := d.decodePairs()
	if err != nil {
		return Value{}, err
	}
	return NewMap(items), nil
}

func (d *Decoder) decodeAttribute() (Value, error) {
	items, err := d.decodePairs()
	if err != nil {
		return Value{}, err
	}
	return NewAttribute(items), nil
}

func (d *Decoder) decodePairs() ([]MapItem, error) {
	length, _, err := d.readLength(false)
	if err != nil {
		return nil, err
	}
	items := make([]MapItem, length)
	for i := 0; i < length; i++ {
		key, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		items[i] = MapItem{Key: key, Value: val}
	}
	return items, nil
}

func (d *Decoder) decodeSet() (Value, error) {
	elems, err := d.decodeElems()
	if err != nil {
		return Value{}, err
	}
	return NewSet(elems), nil
}

func (d *Decoder) decodePush() (Value, error) {
	elems, err := d.decodeElems()
	if err != nil {
		return Value{}, err
	}
	return NewPush(elems), nil
}

func (d *Decoder) decodeElems() ([]Value, error) {
	length, _, err := d.readLength(false)
	if err != nil {
		return nil, err
	}
	elems := make([]Value, length)
	for i := 0; i < length; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return elems, nil
}

func (d *Decoder) decodeBigNumber() (Value, error) {
	line, err := d.readLine()
	if err != nil {
		return Value{}, err
	}
	return NewBigNumber(string(line)), nil
}

// DecodeBytes parses a single complete reply from a byte slice.
func DecodeBytes(data []byte) (Value, error) {
	d := NewDecoder()
	d.Feed(data)
	return d.Decode()
}
