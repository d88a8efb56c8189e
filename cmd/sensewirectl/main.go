// Command sensewirectl is the operator tool for the sensewire codec:
// it decodes packets from hex, bridges packets to and from JSON,
// inspects mesh control traffic and lists archive contents.
//
// Usage:
//
//	sensewirectl [-variants layouts.toml] [-v] <command> [args]
//
// Commands:
//
//	decode <hex>          dump a sensor packet field by field
//	json <hex>            render a sensor packet as JSON
//	encode <file.json>    encode a JSON document, print hex
//	mesh <hex>            classify a mesh control packet
//	archive <file>        list the batches in an archive file
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/nimbuslab/sensewire/archive"
	"github.com/nimbuslab/sensewire/jsonio"
	"github.com/nimbuslab/sensewire/mesh"
	"github.com/nimbuslab/sensewire/packet"
	"github.com/nimbuslab/sensewire/variant"
)

func main() {
	variants := flag.String("variants", "", "TOML file with custom variant layouts")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if *variants != "" {
		if err := variant.Default().LoadTOMLFile(*variants); err != nil {
			log.Fatal().Err(err).Str("path", *variants).Msg("variant layouts rejected")
		}
		log.Debug().Str("path", *variants).Msg("variant layouts loaded")
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "decode":
		err = runDecode(args[1:])
	case "json":
		err = runJSON(args[1:])
	case "encode":
		err = runEncode(args[1:])
	case "mesh":
		err = runMesh(log, args[1:])
	case "archive":
		err = runArchive(log, args[1:])
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("command failed")
	}
}

func hexArg(args []string) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one hex argument")
	}

	return hex.DecodeString(args[0])
}

func runDecode(args []string) error {
	data, err := hexArg(args)
	if err != nil {
		return err
	}

	p, err := packet.Decode(data)
	if err != nil {
		return err
	}
	fmt.Print(p.Dump())

	return nil
}

func runJSON(args []string) error {
	data, err := hexArg(args)
	if err != nil {
		return err
	}

	doc, err := jsonio.DecodeToJSON(data)
	if err != nil {
		return err
	}
	fmt.Println(doc)

	return nil
}

func runEncode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one json file argument")
	}

	doc, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	buf := make([]byte, 256)
	n, err := jsonio.EncodeFromJSON(string(doc), buf)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(buf[:n]))

	return nil
}

func runMesh(log zerolog.Logger, args []string) error {
	data, err := hexArg(args)
	if err != nil {
		return err
	}

	msg, err := mesh.Decode(data)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case *mesh.Beacon:
		fmt.Printf("beacon: gateway=%d hop_cost=%d generation=%d from station %d\n",
			m.Gateway, m.HopCost, m.Generation, m.Station)
	case *mesh.Forward:
		station, sequence, err := m.Origin()
		if err != nil {
			return err
		}
		fmt.Printf("forward: ttl=%d origin station=%d sequence=%d via station %d\n",
			m.TTL, station, sequence, m.Station)
		inner, err := packet.Decode(m.Inner)
		if err != nil {
			log.Warn().Err(err).Msg("embedded packet undecodable")

			return nil
		}
		fmt.Print(inner.Dump())
	case *mesh.Ack:
		fmt.Printf("ack: origin station=%d sequence=%d\n", m.OriginStation, m.OriginSequence)
	case *mesh.RouteError:
		fmt.Printf("route error: reason=%d from station %d\n", m.Reason, m.Station)
	case *mesh.NeighbourReport:
		fmt.Printf("neighbour report: %d neighbours from station %d\n", len(m.Neighbours), m.Station)
		for _, nb := range m.Neighbours {
			fmt.Printf("  station=%d rssi=%ddBm\n", nb.Station, mesh.UnpackLinkRSSI(nb.RSSI))
		}
	case *mesh.Echo:
		fmt.Printf("%s: token=%d from station %d\n", m.Kind, m.Token, m.Station)
	}

	return nil
}

func runArchive(log zerolog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one archive file argument")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r := archive.NewReader(f)
	for batch := 0; ; batch++ {
		packets, err := r.ReadBatch()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("batch %d: %w", batch, err)
		}

		fmt.Printf("batch %d: %d packets\n", batch, len(packets))
		for i, data := range packets {
			p, err := packet.Decode(data)
			if err != nil {
				log.Warn().Err(err).Int("batch", batch).Int("index", i).Msg("undecodable packet")
				continue
			}
			fmt.Printf("  [%d] %s\n", i, p)
		}
	}
}
