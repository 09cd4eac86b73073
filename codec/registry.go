package codec

// Default is the registry of codecs FuziotDB ships out of the box, keyed
// by the logical field type name used by registration drivers.
var Default = map[string]Codec{
	"bool":         Bool,
	"uint8":        Uint8,
	"int8":         Int8,
	"uint16":       Uint16,
	"int16":        Int16,
	"uint32":       Uint32,
	"int32":        Int32,
	"uint64":       Uint64,
	"int64":        Int64,
	"float16":      Float16,
	"float32":      Float32,
	"float64":      Float64,
	"uuid":         UUID,
	"bigint":       BigInt,
	"utf16_string": UTF16String,
	"ascii_string": ASCIIString,
	"bytes":        Bytes,
}

// Lookup returns the named default codec and whether it was found.
func Lookup(name string) (Codec, bool) {
	c, ok := Default[name]
	return c, ok
}
