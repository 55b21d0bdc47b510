package detect

import "github.com/coregx/protodetect/protocol"

// builtin is one row of the built-in pattern table.
type builtin struct {
	ipProto   protocol.IPProto
	appProto  protocol.AppProto
	notation  string
	depth     uint16
	offset    uint16
	direction protocol.Direction
}

// bothDirections expands a builtin entry that should be registered for both
// to_server and to_client into the two concrete rows.
func bothDirections(ipProto protocol.IPProto, appProto protocol.AppProto, notation string, depth, offset uint16) []builtin {
	return []builtin{
		{ipProto, appProto, notation, depth, offset, protocol.ToServer},
		{ipProto, appProto, notation, depth, offset, protocol.ToClient},
	}
}

// builtinSignatures is the full built-in pattern set registered at startup,
// grounded on the original app-layer-detect-proto.c table.
func builtinSignatures() []builtin {
	var b []builtin

	// HTTP: request-line verbs to_server, status-line prefix to_client.
	// Each verb is registered with both the SP (0x20) and historical HT
	// (0x09) terminator variant, matching the original table.
	type httpVerb struct {
		verb  string
		depth uint16
	}
	verbs := []httpVerb{
		{"GET", 4}, {"PUT", 4}, {"POST", 5}, {"HEAD", 5},
		{"TRACE", 6}, {"OPTIONS", 8}, {"CONNECT", 8},
	}
	for _, v := range verbs {
		b = append(b,
			builtin{protocol.TCP, protocol.HTTP, v.verb + "|20|", v.depth, 0, protocol.ToServer},
			builtin{protocol.TCP, protocol.HTTP, v.verb + "|09|", v.depth, 0, protocol.ToServer},
		)
	}
	b = append(b, builtin{protocol.TCP, protocol.HTTP, "HTTP/", 5, 0, protocol.ToClient})

	// SSH: greeting banner appears in both directions.
	b = append(b, bothDirections(protocol.TCP, protocol.SSH, "SSH-", 4, 0)...)

	// SSLv2 handshake.
	b = append(b,
		builtin{protocol.TCP, protocol.SSL, "|01 00 02|", 5, 2, protocol.ToServer},
		builtin{protocol.TCP, protocol.SSL, "|00 02|", 7, 5, protocol.ToClient},
	)

	// SSLv3/TLS 1.0/1.1/1.2: client hello ("|01 03 0X|" to_server only, the
	// legacy SSLv3-style framing) and the record-layer handshake prefix
	// ("|16 03 0X|") in both directions.
	tlsMinors := []string{"00", "01", "02", "03"}
	for _, minor := range tlsMinors {
		b = append(b, builtin{protocol.TCP, protocol.TLS, "|01 03 " + minor + "|", 3, 0, protocol.ToServer})
		b = append(b, bothDirections(protocol.TCP, protocol.TLS, "|16 03 "+minor+"|", 3, 0)...)
	}

	// IMAP.
	b = append(b,
		builtin{protocol.TCP, protocol.IMAP, "|2A 20|OK|20|", 5, 0, protocol.ToClient},
		builtin{protocol.TCP, protocol.IMAP, "1|20|capability", 12, 0, protocol.ToServer},
	)

	// SMTP: greeting-response verbs preserved verbatim from the original
	// table, including its to_client placement for EHLO/HELO.
	b = append(b,
		builtin{protocol.TCP, protocol.SMTP, "EHLO ", 5, 0, protocol.ToClient},
		builtin{protocol.TCP, protocol.SMTP, "HELO ", 5, 0, protocol.ToClient},
		builtin{protocol.TCP, protocol.SMTP, "ESMTP ", 64, 4, protocol.ToServer},
		builtin{protocol.TCP, protocol.SMTP, "SMTP ", 64, 4, protocol.ToServer},
	)

	// FTP.
	b = append(b,
		builtin{protocol.TCP, protocol.FTP, "USER ", 5, 0, protocol.ToServer},
		builtin{protocol.TCP, protocol.FTP, "PASS ", 5, 0, protocol.ToServer},
		builtin{protocol.TCP, protocol.FTP, "PORT ", 5, 0, protocol.ToServer},
		builtin{protocol.TCP, protocol.FTP, "AUTH SSL", 8, 0, protocol.ToClient},
	)

	// MSN Messenger.
	b = append(b, bothDirections(protocol.TCP, protocol.MSN, "MSNP", 10, 6)...)

	// SMB / SMB2.
	b = append(b, bothDirections(protocol.TCP, protocol.SMB, "|ff|SMB", 8, 4)...)
	b = append(b, bothDirections(protocol.TCP, protocol.SMB2, "|fe|SMB", 8, 4)...)

	// DCERPC over TCP and UDP.
	b = append(b, bothDirections(protocol.TCP, protocol.DCERPC, "|05 00|", 2, 0)...)
	b = append(b, bothDirections(protocol.UDP, protocol.DCERPCUDP, "|04 00|", 2, 0)...)

	return b
}

// RegisterBuiltins adds the full built-in pattern set to ctx. It is
// typically called once, immediately after NewDetectionContext and before
// any caller-supplied signatures, so that built-in registration order is
// part of the stable, observable first-match-wins contract.
func RegisterBuiltins(ctx *DetectionContext) error {
	for _, e := range builtinSignatures() {
		if err := ctx.Add(e.ipProto, e.appProto, e.notation, e.depth, e.offset, e.direction, false); err != nil {
			return err
		}
	}
	return nil
}
