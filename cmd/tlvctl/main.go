package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/danmuck/tlvf/internal/config"
	"github.com/danmuck/tlvf/internal/logging"
	"github.com/danmuck/tlvf/internal/observability"
	"github.com/danmuck/tlvf/internal/protocol/cmdu"
	"github.com/danmuck/tlvf/internal/protocol/ieee1905"
	"github.com/danmuck/tlvf/internal/protocol/tlvf"
	"github.com/danmuck/tlvf/internal/protocol/wfamap"
	"github.com/rs/zerolog/log"
)

var errNoMode = errors.New("tlvctl: one of -decode, -encode-wsc, -init or -validate is required")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("tlvctl failed")
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tlvctl", flag.ContinueOnError)
	configPath := fs.String("config", "", "config path (defaults apply when empty)")
	decode := fs.String("decode", "", "hex CMDU to parse and print")
	encodeWsc := fs.String("encode-wsc", "", "hex WSC frame to wrap in an AP-autoconfiguration WSC CMDU")
	mid := fs.Uint("mid", 1, "message id for -encode-wsc")
	initPath := fs.String("init", "", "write a config template to this path")
	validate := fs.String("validate", "", "strictly validate an existing config file")
	force := fs.Bool("force", false, "overwrite an existing config with -init")
	metrics := fs.Bool("metrics", false, "print codec counters before exiting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logging.Configure(logging.ProfileRuntime, cfg.ApplyLogging)

	var err error
	switch {
	case *initPath != "":
		if err = config.WriteTemplate(*initPath, *force); err == nil {
			log.Info().Str("path", *initPath).Msg("wrote config template")
		}
	case *validate != "":
		err = validateConfig(*validate)
		if err == nil {
			fmt.Fprintf(out, "%s: ok\n", *validate)
		}
	case *decode != "":
		err = decodeCMDU(out, *decode, cfg)
	case *encodeWsc != "":
		if *mid > 0xFFFF {
			return fmt.Errorf("tlvctl: -mid %d does not fit 16 bits", *mid)
		}
		err = encodeWscCMDU(out, *encodeWsc, uint16(*mid), cfg)
	default:
		fs.Usage()
		return errNoMode
	}
	if err != nil {
		return err
	}
	if *metrics || cfg.Metrics.Enabled {
		return printMetrics(out)
	}
	return nil
}

func registry(cfg config.Config) (*tlvf.Registry, error) {
	reg := ieee1905.NewRegistry()
	if err := wfamap.Register(reg); err != nil {
		return nil, err
	}
	reg.SetStrict(cfg.Codec.StrictTypes)
	return reg, nil
}

func decodeHex(raw string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(raw)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("tlvctl: bad hex: %w", err)
	}
	return b, nil
}

func decodeCMDU(out io.Writer, raw string, cfg config.Config) error {
	buf, err := decodeHex(raw)
	if err != nil {
		return err
	}
	reg, err := registry(cfg)
	if err != nil {
		return err
	}
	msg, err := cmdu.Parse(buf, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s mid=%d fragment=%d flags=0x%02x\n",
		msg.MessageType(), msg.MessageID(), msg.FragmentID(), msg.Flags())
	for i, c := range msg.TLVs() {
		name := ieee1905.TlvType(c.Type()).String()
		fmt.Fprintf(out, "  [%d] %s len=%d", i, name, c.Length())
		if value := c.Bytes()[ieee1905.HeaderLen:]; len(value) > 0 {
			fmt.Fprintf(out, " value=%s", hex.EncodeToString(value))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func encodeWscCMDU(out io.Writer, raw string, mid uint16, cfg config.Config) error {
	frame, err := decodeHex(raw)
	if err != nil {
		return err
	}
	msg, err := cmdu.New(cmdu.MessageApAutoconfigWsc, mid, cfg.Limits())
	if err != nil {
		return err
	}
	defer msg.Release()
	wsc, err := ieee1905.NewTlvWscIn(msg.Root())
	if err != nil {
		return err
	}
	if err := wsc.SetPayload(frame); err != nil {
		return err
	}
	wire, err := msg.Finalize()
	if err != nil {
		return err
	}
	log.Debug().Int("bytes", len(wire.Bytes)).Uint16("mid", mid).Msg("encoded wsc cmdu")
	fmt.Fprintln(out, hex.EncodeToString(wire.Bytes))
	return nil
}

func validateConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := config.CheckStrict(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func printMetrics(out io.Writer) error {
	samples, err := observability.Snapshot()
	if err != nil {
		return err
	}
	for _, s := range samples {
		keys := make([]string, 0, len(s.Labels))
		for k := range s.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%q", k, s.Labels[k]))
		}
		fmt.Fprintf(out, "%s{%s} %g\n", s.Name, strings.Join(pairs, ","), s.Value)
	}
	return nil
}
