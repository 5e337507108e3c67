package zarr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dtype is a primitive zarr data type, encoded on the wire as a string
// following the NumPy array protocol type string (typestr) format. The
// format consists of 3 parts:
//   - One character describing the byteorder of the data:
//     "<": little-endian; ">": big-endian; "|": not-relevant
//   - One character code giving the basic type of the array:
//     "b": boolean, "i": integer, "u": unsigned integer, "f": floating
//     point, "c": complex floating point, "m": timedelta, "M": datetime,
//     "S": string, "U": unicode, "V": other
//   - An integer specifying the number of bytes the type uses.
//
// Byte order is optional in some circumstances, within the zarr format
// byte order MUST be specified.
type Dtype struct {
	ByteOrder ByteOrder
	BasicType BasicType
	ByteSize  int
}

var (
	_ json.Unmarshaler = (*Dtype)(nil)
	_ json.Marshaler   = (*Dtype)(nil)
)

// ParseDtype reads a numpy typestr like "<i4" or "|b1"
func ParseDtype(s string) (dt Dtype, err error) {
	// bug in python implementation uses HTML escape sequences when
	// serializing JSON
	s = strings.Replace(s, "&lt;", "<", 1)
	s = strings.Replace(s, "&gt;", ">", 1)

	if len(s) < 3 {
		return dt, fmt.Errorf("invalid Dtype string. %q is too short", s)
	}

	boByte, s := s[0], s[1:]
	dt.ByteOrder, err = ParseByteOrder(rune(boByte))
	if err != nil {
		return dt, err
	}

	typeByte, s := s[0], s[1:]
	dt.BasicType, err = ParseBasicType(rune(typeByte))
	if err != nil {
		return dt, err
	}

	size, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return dt, err
	}
	if size <= 0 {
		return dt, fmt.Errorf("invalid Dtype size: %d", size)
	}
	dt.ByteSize = int(size)

	return dt, nil
}

// String gives the canonical wire encoding, e.g. "<f8"
func (dt Dtype) String() string {
	return fmt.Sprintf("%s%s%d", string(dt.ByteOrder), string(dt.BasicType), dt.ByteSize)
}

func (dt Dtype) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.String() + `"`), nil
}

func (dt *Dtype) UnmarshalJSON(d []byte) error {
	var s string
	if err := json.Unmarshal(d, &s); err != nil {
		return err
	}
	t, err := ParseDtype(s)
	if err != nil {
		return err
	}

	*dt = t
	return nil
}

type ByteOrder rune

func ParseByteOrder(r rune) (ByteOrder, error) {
	o := ByteOrder(r)
	if _, ok := byteOrders[o]; !ok {
		return o, fmt.Errorf("unsupported byte order format: %q", r)
	}
	return o, nil
}

const (
	BONotRelevant  ByteOrder = '|'
	BOLittleEndian ByteOrder = '<'
	BOBigEndian    ByteOrder = '>'
)

var byteOrders = map[ByteOrder]struct{}{
	BONotRelevant:  {},
	BOLittleEndian: {},
	BOBigEndian:    {},
}

type BasicType rune

func ParseBasicType(r rune) (BasicType, error) {
	t := BasicType(r)
	if _, ok := supportedBasicTypes[t]; !ok {
		return t, fmt.Errorf("unsupported basic type: %q", r)
	}
	return t, nil
}

func (bt BasicType) Human() string {
	return supportedBasicTypes[bt]
}

const (
	BTBoolean       BasicType = 'b'
	BTInteger       BasicType = 'i'
	BTUnsigned      BasicType = 'u'
	BTFloatingPoint BasicType = 'f'
	BTComplex       BasicType = 'c'
	BTTimedelta     BasicType = 'm'
	BTDatetime      BasicType = 'M'
	BTString        BasicType = 'S'
	BTUnicode       BasicType = 'U'
	BTOther         BasicType = 'V'
)

var supportedBasicTypes = map[BasicType]string{
	BTBoolean:       "bool",
	BTInteger:       "int",
	BTUnsigned:      "uint",
	BTFloatingPoint: "float",
	BTComplex:       "complex",
	BTTimedelta:     "timeDelta",
	BTDatetime:      "dateTime",
	BTString:        "string",
	BTUnicode:       "unicode",
	BTOther:         "other",
}

// Field is one named sub-field of a structured (record) data type.
type Field struct {
	Name   string
	Dtype  Dtype
	Offset int
}

// DataType describes an entry's element type: either a primitive Dtype, or
// a structured type with an ordered list of named sub-fields. Structured
// entries are exposed to the protocol as virtual groups whose children are
// the single-field arrays.
type DataType struct {
	Dtype  Dtype
	Fields []Field
}

// IsStruct reports whether the type is a structured (record) type.
func (dt DataType) IsStruct() bool { return len(dt.Fields) > 0 }

// FieldNames lists sub-field names in declared order.
func (dt DataType) FieldNames() []string {
	names := make([]string, 0, len(dt.Fields))
	for _, f := range dt.Fields {
		names = append(names, f.Name)
	}
	return names
}
