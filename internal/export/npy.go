package export

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NumPy .npy layout: magic, version, header length, a Python dict literal
// padded so the payload starts on a 64 byte boundary, then raw values.
const (
	npyMagic     = "\x93NUMPY"
	npyAlignment = 64
)

var (
	descrPattern   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranPattern = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapePattern   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// npyArray is a decoded integer array in C order.
type npyArray struct {
	shape []int
	data  []int64
}

// size returns the element count, or false if it overflows int.
func (a npyArray) size() (int, bool) {
	n := 1
	for _, d := range a.shape {
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// writeNpy encodes data as a little-endian int64 array of the given shape.
func writeNpy(w io.Writer, shape []int, data []int64) error {
	header := fmt.Sprintf("{'descr': '<i8', 'fortran_order': False, 'shape': %s, }", shapeLiteral(shape))
	// 10 bytes of preamble plus the header and its trailing newline.
	pad := npyAlignment - (10+len(header)+1)%npyAlignment
	if pad == npyAlignment {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"
	if len(header) > 0xffff {
		return fmt.Errorf("%w: header too long", ErrUnsupportedArray)
	}

	bw := bufio.NewWriter(w)
	var pre [10]byte
	copy(pre[:], npyMagic)
	pre[6], pre[7] = 1, 0
	binary.LittleEndian.PutUint16(pre[8:], uint16(len(header)))
	if _, err := bw.Write(pre[:]); err != nil {
		return err
	}
	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	var buf [8]byte
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func shapeLiteral(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// readNpy decodes a signed integer array of 1, 2, 4 or 8 bytes per item.
// total is the size of the whole .npy stream; the shape must fit in it.
func readNpy(r io.Reader, total int64) (npyArray, error) {
	var arr npyArray
	br := bufio.NewReader(r)

	var pre [8]byte
	if _, err := io.ReadFull(br, pre[:]); err != nil {
		return arr, fmt.Errorf("%w: %v", ErrMalformedArray, err)
	}
	if string(pre[:6]) != npyMagic {
		return arr, fmt.Errorf("%w: bad magic", ErrMalformedArray)
	}

	var hlen int
	consumed := int64(len(pre))
	switch pre[6] {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return arr, fmt.Errorf("%w: %v", ErrMalformedArray, err)
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
		consumed += 2
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(br, b[:]); err != nil {
			return arr, fmt.Errorf("%w: %v", ErrMalformedArray, err)
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
		consumed += 4
	default:
		return arr, fmt.Errorf("%w: format version %d.%d", ErrUnsupportedArray, pre[6], pre[7])
	}
	if int64(hlen) > total-consumed {
		return arr, fmt.Errorf("%w: header length %d exceeds stream", ErrMalformedArray, hlen)
	}
	consumed += int64(hlen)

	header := make([]byte, hlen)
	if _, err := io.ReadFull(br, header); err != nil {
		return arr, fmt.Errorf("%w: %v", ErrMalformedArray, err)
	}

	descr, shape, err := parseHeader(header)
	if err != nil {
		return arr, err
	}
	arr.shape = shape

	order, itemSize, err := parseDescr(descr)
	if err != nil {
		return arr, err
	}

	n, ok := arr.size()
	if !ok || n > math.MaxInt/itemSize {
		return arr, fmt.Errorf("%w: shape %v overflows", ErrMalformedArray, arr.shape)
	}
	if int64(n*itemSize) > total-consumed {
		return arr, fmt.Errorf("%w: shape %v needs %d bytes, stream has %d",
			ErrMalformedArray, arr.shape, n*itemSize, total-consumed)
	}
	raw := make([]byte, n*itemSize)
	if _, err := io.ReadFull(br, raw); err != nil {
		return arr, fmt.Errorf("%w: short payload: %v", ErrMalformedArray, err)
	}

	arr.data = make([]int64, n)
	for i := range arr.data {
		b := raw[i*itemSize : (i+1)*itemSize]
		switch itemSize {
		case 1:
			arr.data[i] = int64(int8(b[0]))
		case 2:
			arr.data[i] = int64(int16(order.Uint16(b)))
		case 4:
			arr.data[i] = int64(int32(order.Uint32(b)))
		case 8:
			arr.data[i] = int64(order.Uint64(b))
		}
	}
	return arr, nil
}

func parseHeader(header []byte) (string, []int, error) {
	header = bytes.TrimSpace(header)

	m := descrPattern.FindSubmatch(header)
	if m == nil {
		return "", nil, fmt.Errorf("%w: header has no descr", ErrMalformedArray)
	}
	descr := string(m[1])

	if f := fortranPattern.FindSubmatch(header); f == nil {
		return "", nil, fmt.Errorf("%w: header has no fortran_order", ErrMalformedArray)
	} else if string(f[1]) == "True" {
		return "", nil, fmt.Errorf("%w: fortran order", ErrUnsupportedArray)
	}

	s := shapePattern.FindSubmatch(header)
	if s == nil {
		return "", nil, fmt.Errorf("%w: header has no shape", ErrMalformedArray)
	}
	var shape []int
	for _, part := range strings.Split(string(s[1]), ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "L"))
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 {
			return "", nil, fmt.Errorf("%w: shape entry %q", ErrMalformedArray, part)
		}
		shape = append(shape, d)
	}
	return descr, shape, nil
}

func parseDescr(descr string) (binary.ByteOrder, int, error) {
	if len(descr) != 3 || descr[1] != 'i' {
		return nil, 0, fmt.Errorf("%w: dtype %q", ErrUnsupportedArray, descr)
	}
	var order binary.ByteOrder
	switch descr[0] {
	case '<', '|', '=':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return nil, 0, fmt.Errorf("%w: dtype %q", ErrUnsupportedArray, descr)
	}
	switch size := int(descr[2] - '0'); size {
	case 1, 2, 4, 8:
		return order, size, nil
	}
	return nil, 0, fmt.Errorf("%w: dtype %q", ErrUnsupportedArray, descr)
}
