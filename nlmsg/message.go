// Package nlmsg builds rtnetlink requests byte by byte. The kernel
// expects length-prefixed records with 4-byte aligned TLV attributes,
// host byte order, and nested attribute lengths patched in once their
// content is complete; everything here exists to get that layout exact.
package nlmsg

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// HdrLen is the size of struct nlmsghdr, already NLMSG_ALIGNTO padded.
	HdrLen = unix.NLMSG_HDRLEN
	// BodyLen is the size of struct ifinfomsg.
	BodyLen = unix.SizeofIfInfomsg
	// AttrHdrLen is the size of struct rtattr.
	AttrHdrLen = unix.SizeofRtAttr

	alignTo = unix.NLMSG_ALIGNTO
)

// DefaultSize is the default backing buffer capacity, large enough for
// any link creation request and for the kernel's ack replies.
const DefaultSize = 4096

// ErrOverflow is returned when an attribute does not fit in the
// message's fixed capacity.
var ErrOverflow = errors.New("netlink message buffer overflow")

// struct nlmsghdr field offsets
const (
	offLen   = 0
	offType  = 4
	offFlags = 6
	offSeq   = 8
	offPid   = 12
)

// struct ifinfomsg field offsets, relative to the start of the body
const (
	offFamily    = 0
	offIndex     = 4
	offLinkFlags = 8
	offChange    = 12
)

var native = nativeEndian()

// netlink scalars are encoded in host byte order, not network order.
func nativeEndian() binary.ByteOrder {
	var x uint16 = 1
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// NativeEndian returns the byte order netlink scalars are encoded with.
func NativeEndian() binary.ByteOrder {
	return native
}

// Message is a single rtnetlink request under construction: nlmsghdr,
// ifinfomsg body, then attributes. The header length field always
// covers the last fully written attribute; nested attribute lengths
// are back-patched by EndNested. The same buffer receives the kernel
// reply after the request is sent.
type Message struct {
	buf    []byte
	length int
	nested []int
}

// New returns a message with a zeroed header and link body already
// accounted for in the length. A size of 0 selects DefaultSize.
func New(size int) *Message {
	if size < HdrLen+BodyLen {
		size = DefaultSize
	}
	m := &Message{buf: make([]byte, size)}
	m.setLength(HdrLen + BodyLen)
	return m
}

func (m *Message) setLength(n int) {
	m.length = n
	native.PutUint32(m.buf[offLen:], uint32(n))
}

// Len is the current total message length, header included.
func (m *Message) Len() int {
	return m.length
}

// Bytes is the encoded message, ready to be sent.
func (m *Message) Bytes() []byte {
	return m.buf[:m.length]
}

// Buffer exposes the full backing storage, for receiving the reply.
func (m *Message) Buffer() []byte {
	return m.buf
}

// SetReceived resets the message length to the size of a received
// datagram so the reply's header and payload can be read back.
func (m *Message) SetReceived(n int) {
	if n > len(m.buf) {
		n = len(m.buf)
	}
	m.length = n
}

// SetHeader fills the message kind, flag set and sequence number.
func (m *Message) SetHeader(typ, flags uint16, seq uint32) {
	native.PutUint16(m.buf[offType:], typ)
	native.PutUint16(m.buf[offFlags:], flags)
	native.PutUint32(m.buf[offSeq:], seq)
}

// SetSeq overwrites the sequence number, which the session stamps just
// before sending.
func (m *Message) SetSeq(seq uint32) {
	native.PutUint32(m.buf[offSeq:], seq)
}

// SetLink fills the ifinfomsg body. An index of 0 means "create a new
// interface"; flags and change are only meaningful for bring-up.
func (m *Message) SetLink(family uint8, index int32, flags, change uint32) {
	b := m.buf[HdrLen:]
	b[offFamily] = family
	native.PutUint32(b[offIndex:], uint32(index))
	native.PutUint32(b[offLinkFlags:], flags)
	native.PutUint32(b[offChange:], change)
}

func (m *Message) Type() uint16 {
	return native.Uint16(m.buf[offType:])
}

func (m *Message) Flags() uint16 {
	return native.Uint16(m.buf[offFlags:])
}

func (m *Message) Seq() uint32 {
	return native.Uint32(m.buf[offSeq:])
}

func (m *Message) Pid() uint32 {
	return native.Uint32(m.buf[offPid:])
}

func (m *Message) Family() uint8 {
	return m.buf[HdrLen+offFamily]
}

func (m *Message) Index() int32 {
	return int32(native.Uint32(m.buf[HdrLen+offIndex:]))
}

func (m *Message) LinkFlags() uint32 {
	return native.Uint32(m.buf[HdrLen+offLinkFlags:])
}

func (m *Message) ChangeMask() uint32 {
	return native.Uint32(m.buf[HdrLen+offChange:])
}

// ErrCode is the signed error of an NLMSG_ERROR reply, 0 on ack.
func (m *Message) ErrCode() int32 {
	if m.length < HdrLen+4 {
		return 0
	}
	return int32(native.Uint32(m.buf[HdrLen:]))
}

// AttrBytes is the attribute region written so far.
func (m *Message) AttrBytes() []byte {
	return m.buf[HdrLen+BodyLen : m.length]
}

// Align rounds n up to the netlink alignment boundary.
func Align(n int) int {
	return (n + alignTo - 1) &^ (alignTo - 1)
}

// AppendAttr writes one attribute: rtattr header, value, zero padding
// up to the alignment boundary. The stored length field covers header
// and value but not the padding.
func (m *Message) AppendAttr(typ uint16, value []byte) error {
	alen := AttrHdrLen + len(value)
	start := Align(m.length)
	end := start + Align(alen)
	if end > len(m.buf) {
		return errors.Wrapf(ErrOverflow, "attribute %d of %d bytes", typ, len(value))
	}
	for i := m.length; i < end; i++ {
		m.buf[i] = 0
	}
	native.PutUint16(m.buf[start:], uint16(alen))
	native.PutUint16(m.buf[start+2:], typ)
	copy(m.buf[start+AttrHdrLen:], value)
	m.setLength(end)
	return nil
}

// AppendUint32 appends a host-order 32-bit scalar attribute.
func (m *Message) AppendUint32(typ uint16, v uint32) error {
	var b [4]byte
	native.PutUint32(b[:], v)
	return m.AppendAttr(typ, b[:])
}

// AppendInt32 appends a host-order signed 32-bit scalar attribute.
func (m *Message) AppendInt32(typ uint16, v int32) error {
	return m.AppendUint32(typ, uint32(v))
}

// AppendString appends a NUL-terminated string attribute.
func (m *Message) AppendString(typ uint16, s string) error {
	return m.AppendAttr(typ, append([]byte(s), 0))
}

// BeginNested opens a container attribute and returns a cursor to it.
// Its length field stays 0 until EndNested patches it; attributes
// appended in between become its payload.
func (m *Message) BeginNested(typ uint16) (int, error) {
	cursor := Align(m.length)
	if err := m.AppendAttr(typ, nil); err != nil {
		return 0, err
	}
	m.nested = append(m.nested, cursor)
	return cursor, nil
}

// EndNested closes the container at cursor, writing the byte span from
// the container's start to the current end of the message into its
// length field. Containers must be closed in LIFO order; closing them
// out of order is a bug in the caller, not a runtime condition.
func (m *Message) EndNested(cursor int) {
	n := len(m.nested)
	if n == 0 || m.nested[n-1] != cursor {
		panic("nlmsg: EndNested called out of order")
	}
	m.nested = m.nested[:n-1]
	native.PutUint16(m.buf[cursor:], uint16(Align(m.length)-cursor))
}

// EmbedLinkBody reserves a zeroed ifinfomsg inside the attribute
// region. The veth peer attribute carries a full link body before its
// own attributes, as if it opened a second link request one level
// down; the enclosing nested lengths must cover it.
func (m *Message) EmbedLinkBody(family uint8) error {
	start := Align(m.length)
	end := start + BodyLen
	if end > len(m.buf) {
		return errors.Wrap(ErrOverflow, "embedded link body")
	}
	for i := m.length; i < end; i++ {
		m.buf[i] = 0
	}
	m.buf[start+offFamily] = family
	m.setLength(end)
	return nil
}
