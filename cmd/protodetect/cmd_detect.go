package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coregx/protodetect/engine"
	"github.com/coregx/protodetect/protocol"
)

var (
	detectDirection string
	detectIPProto   string
	detectHex       bool
	detectInputFile string
)

var detectCmd = &cobra.Command{
	Use:   "detect [buffer]",
	Short: "Identify the application protocol of a sample buffer",
	Long:  `detect builds a DetectionContext (built-ins plus any --sigset file) and runs identify against a buffer supplied as an argument, via --input, or as hex with --hex.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectDirection, "direction", "to_server", "direction: to_server or to_client")
	detectCmd.Flags().StringVar(&detectIPProto, "ip-proto", "tcp", "transport protocol: tcp or udp")
	detectCmd.Flags().BoolVar(&detectHex, "hex", false, "interpret the buffer as space-separated hex bytes")
	detectCmd.Flags().StringVar(&detectInputFile, "input", "", "read the buffer from a file instead of the argument")
}

func runDetect(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	ctx, err := buildContext(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "detect failed: %v\n", err)
		os.Exit(1)
	}

	buffer, err := readBuffer(args)
	if err != nil {
		return err
	}

	direction, err := parseDirectionFlag(detectDirection)
	if err != nil {
		return err
	}
	ipProto, err := parseIPProtoFlag(detectIPProto)
	if err != nil {
		return err
	}

	eng, err := engine.New(ctx)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	ts, err := engine.NewPerThreadState(ctx)
	if err != nil {
		return fmt.Errorf("build per-thread state: %w", err)
	}
	defer ts.Close()

	proto := eng.Identify(ts, direction, buffer, ipProto)
	fmt.Println(proto)
	return nil
}

func readBuffer(args []string) ([]byte, error) {
	var raw string
	switch {
	case detectInputFile != "":
		data, err := os.ReadFile(detectInputFile)
		if err != nil {
			return nil, fmt.Errorf("read --input: %w", err)
		}
		return decodeBuffer(string(data))
	case len(args) == 1:
		raw = args[0]
	default:
		return nil, fmt.Errorf("provide a buffer argument, --input, or pipe is not supported")
	}
	return decodeBuffer(raw)
}

func decodeBuffer(raw string) ([]byte, error) {
	if !detectHex {
		return []byte(raw), nil
	}
	fields := strings.Fields(raw)
	joined := strings.Join(fields, "")
	b, err := hex.DecodeString(joined)
	if err != nil {
		return nil, fmt.Errorf("decode --hex buffer: %w", err)
	}
	return b, nil
}

func parseDirectionFlag(s string) (protocol.Direction, error) {
	switch s {
	case "to_server":
		return protocol.ToServer, nil
	case "to_client":
		return protocol.ToClient, nil
	default:
		return 0, fmt.Errorf("unknown --direction %q: want to_server or to_client", s)
	}
}

func parseIPProtoFlag(s string) (protocol.IPProto, error) {
	switch strings.ToLower(s) {
	case "tcp":
		return protocol.TCP, nil
	case "udp":
		return protocol.UDP, nil
	default:
		return 0, fmt.Errorf("unknown --ip-proto %q: want tcp or udp", s)
	}
}
