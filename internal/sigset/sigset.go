// Package sigset loads a YAML signature-set file and registers its entries
// into a detect.DetectionContext, for the protodetect CLI's validate and
// detect subcommands.
package sigset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coregx/protodetect/detect"
	"github.com/coregx/protodetect/internal/conv"
	"github.com/coregx/protodetect/protocol"
)

// Entry is one signature row as it appears in a signature-set file.
type Entry struct {
	IPProto   string `yaml:"ip_proto"`
	AppProto  string `yaml:"app_proto"`
	Pattern   string `yaml:"pattern"`
	Depth     int    `yaml:"depth"`
	Offset    int    `yaml:"offset"`
	Direction string `yaml:"direction"`
	NoCase    bool   `yaml:"nocase"`
}

// File is the top-level shape of a signature-set document.
type File struct {
	Signatures []Entry `yaml:"signatures"`
}

var ipProtoNames = map[string]protocol.IPProto{
	"tcp": protocol.TCP,
	"udp": protocol.UDP,
}

var appProtoNames = map[string]protocol.AppProto{
	"http": protocol.HTTP, "tls": protocol.TLS, "ssl": protocol.SSL,
	"ssh": protocol.SSH, "ftp": protocol.FTP, "smtp": protocol.SMTP,
	"imap": protocol.IMAP, "msn": protocol.MSN, "smb": protocol.SMB,
	"smb2": protocol.SMB2, "dcerpc": protocol.DCERPC, "dcerpc_udp": protocol.DCERPCUDP,
}

var directionNames = map[string]protocol.Direction{
	"to_server": protocol.ToServer,
	"to_client": protocol.ToClient,
}

// Load reads and parses a signature-set file at path without registering it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sigset: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("sigset: parse %s: %w", path, err)
	}
	return &f, nil
}

// LoadInto reads the signature-set file at path and registers every entry
// into ctx via Add. It does not call Finalize; the caller decides when the
// context's build phase ends.
func LoadInto(ctx *detect.DetectionContext, path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	for i, e := range f.Signatures {
		ipProto, ok := ipProtoNames[e.IPProto]
		if !ok {
			return fmt.Errorf("sigset: entry %d: unknown ip_proto %q", i, e.IPProto)
		}
		appProto, ok := appProtoNames[e.AppProto]
		if !ok {
			return fmt.Errorf("sigset: entry %d: unknown app_proto %q", i, e.AppProto)
		}
		direction, ok := directionNames[e.Direction]
		if !ok {
			return fmt.Errorf("sigset: entry %d: unknown direction %q", i, e.Direction)
		}

		depth := conv.IntToUint16(e.Depth)
		offset := conv.IntToUint16(e.Offset)

		if err := ctx.Add(ipProto, appProto, e.Pattern, depth, offset, direction, e.NoCase); err != nil {
			return fmt.Errorf("sigset: entry %d: %w", i, err)
		}
	}
	return nil
}
