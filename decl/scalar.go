package decl

type ScalarKind int

const (
	ScalarVoid ScalarKind = iota
	ScalarBool
	ScalarChar
	ScalarSChar
	ScalarUChar
	ScalarShort
	ScalarUShort
	ScalarInt
	ScalarUInt
	ScalarLong
	ScalarULong
	ScalarLongLong
	ScalarULongLong
	ScalarInt8
	ScalarUInt8
	ScalarInt16
	ScalarUInt16
	ScalarInt32
	ScalarUInt32
	ScalarInt64
	ScalarUInt64
	ScalarSize
	ScalarSSize
	ScalarFloat
	ScalarDouble
	ScalarLongDouble
	ScalarString
)

type scalarInfo struct {
	spelling string
	host     string
	integer  bool
	unsigned bool
	float    bool
	bytes    int
}

var scalars = [...]scalarInfo{
	ScalarVoid:       {spelling: "void", host: "None"},
	ScalarBool:       {spelling: "bool", host: "bool", bytes: 1},
	ScalarChar:       {spelling: "char", host: "int", integer: true, bytes: 1},
	ScalarSChar:      {spelling: "signed char", host: "int", integer: true, bytes: 1},
	ScalarUChar:      {spelling: "unsigned char", host: "int", integer: true, unsigned: true, bytes: 1},
	ScalarShort:      {spelling: "short", host: "int", integer: true, bytes: 2},
	ScalarUShort:     {spelling: "unsigned short", host: "int", integer: true, unsigned: true, bytes: 2},
	ScalarInt:        {spelling: "int", host: "int", integer: true, bytes: 4},
	ScalarUInt:       {spelling: "unsigned int", host: "int", integer: true, unsigned: true, bytes: 4},
	ScalarLong:       {spelling: "long", host: "int", integer: true, bytes: 8},
	ScalarULong:      {spelling: "unsigned long", host: "int", integer: true, unsigned: true, bytes: 8},
	ScalarLongLong:   {spelling: "long long", host: "int", integer: true, bytes: 8},
	ScalarULongLong:  {spelling: "unsigned long long", host: "int", integer: true, unsigned: true, bytes: 8},
	ScalarInt8:       {spelling: "int8_t", host: "int", integer: true, bytes: 1},
	ScalarUInt8:      {spelling: "uint8_t", host: "int", integer: true, unsigned: true, bytes: 1},
	ScalarInt16:      {spelling: "int16_t", host: "int", integer: true, bytes: 2},
	ScalarUInt16:     {spelling: "uint16_t", host: "int", integer: true, unsigned: true, bytes: 2},
	ScalarInt32:      {spelling: "int32_t", host: "int", integer: true, bytes: 4},
	ScalarUInt32:     {spelling: "uint32_t", host: "int", integer: true, unsigned: true, bytes: 4},
	ScalarInt64:      {spelling: "int64_t", host: "int", integer: true, bytes: 8},
	ScalarUInt64:     {spelling: "uint64_t", host: "int", integer: true, unsigned: true, bytes: 8},
	ScalarSize:       {spelling: "size_t", host: "int", integer: true, unsigned: true, bytes: 8},
	ScalarSSize:      {spelling: "ssize_t", host: "int", integer: true, bytes: 8},
	ScalarFloat:      {spelling: "float", host: "float", float: true, bytes: 4},
	ScalarDouble:     {spelling: "double", host: "float", float: true, bytes: 8},
	ScalarLongDouble: {spelling: "long double", host: "float", float: true, bytes: 16},
	ScalarString:     {spelling: "std::string", host: "str"},
}

func (k ScalarKind) info() scalarInfo {
	if k < 0 || int(k) >= len(scalars) {
		return scalarInfo{spelling: "?", host: "Any"}
	}
	return scalars[k]
}

// Spelling is the canonical C++ spelling of the scalar.
func (k ScalarKind) Spelling() string { return k.info().spelling }

// Host is the host language type the scalar maps to.
func (k ScalarKind) Host() string { return k.info().host }

func (k ScalarKind) Integer() bool  { return k.info().integer }
func (k ScalarKind) Unsigned() bool { return k.info().unsigned }
func (k ScalarKind) Float() bool    { return k.info().float }

// Bytes is the element size used by buffer guards. Zero for void and string.
func (k ScalarKind) Bytes() int { return k.info().bytes }

// Numeric reports integer and floating point kinds. bool is not numeric.
func (k ScalarKind) Numeric() bool { return k.Integer() || k.Float() }

// ImmutableInHost reports kinds whose host values cannot be mutated in
// place: numbers, bool and strings.
func (k ScalarKind) ImmutableInHost() bool {
	return k.Numeric() || k == ScalarBool || k == ScalarString
}

// ScalarBySpelling looks a kind up by its canonical spelling.
func ScalarBySpelling(s string) (ScalarKind, bool) {
	for i, info := range scalars {
		if info.spelling == s {
			return ScalarKind(i), true
		}
	}
	return 0, false
}
