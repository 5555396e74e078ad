package nlmsg

// ForEachAttr walks a TLV attribute region, calling do with each
// attribute's type and unpadded value. Malformed trailing bytes stop
// the walk.
func ForEachAttr(b []byte, do func(typ uint16, value []byte)) {
	for i := 0; i+AttrHdrLen <= len(b); {
		l := int(native.Uint16(b[i:]))
		typ := native.Uint16(b[i+2:])
		if l < AttrHdrLen || i+l > len(b) {
			return
		}
		do(typ, b[i+AttrHdrLen:i+l])
		i = Align(i + l)
	}
}

// Uint32 decodes a host-order scalar attribute value.
func Uint32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return native.Uint32(b)
}

// Int32 decodes a host-order signed scalar attribute value.
func Int32(b []byte) int32 {
	return int32(Uint32(b))
}

// Kstring decodes a NUL-terminated string attribute value.
func Kstring(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return string(b[:len(b)-1])
}
