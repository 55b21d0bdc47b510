package detect

import (
	"github.com/coregx/protodetect/pattern"
	"github.com/coregx/protodetect/protocol"
)

// InspectBytes is the default minimum/maximum inspection window: the
// reassembler is asked to wait for at least this many bytes (capped down by
// any pattern with a smaller depth), and no pattern may push max_len below
// it either, since every direction starts at this value.
const InspectBytes = 32

// Signature is a (ip_proto, app_proto, pattern) record. When its pattern is
// located within [pattern.Offset, pattern.Depth) of a correctly directed
// buffer and the transport protocol agrees, the flow is identified as
// AppProto.
type Signature struct {
	IPProto   protocol.IPProto
	AppProto  protocol.AppProto
	Direction protocol.Direction
	Pattern   pattern.Pattern
	PatternID uint32
}
