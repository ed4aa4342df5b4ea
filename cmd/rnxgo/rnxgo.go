// Command rnxgo is a command-line toolkit for RINEX, IONEX, DORIS, BINEX
// and SP3 files: comparing and summarising observation files, converting
// between CRINEX and plain RINEX, inspecting a BINEX stream, and printing
// quick summaries of navigation, meteo, ionosphere, DORIS and precise-orbit
// products.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/de-bkg/gognss/pkg/binex"
	"github.com/de-bkg/gognss/pkg/rinex"
	"github.com/de-bkg/gognss/pkg/sp3"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Version:  "v0.1.0",
		Compiled: time.Now(),
		Authors: []*cli.Author{
			{
				Name:  "Erwin Wiesensarter",
				Email: "Erwin.Wiesensarter@bkg.bund.de",
			},
		},
		Copyright: "(c) 2020 BKG Frankfurt",
		HelpName:  "rnxgo",
		Usage:     "a RINEX/IONEX/DORIS/SP3 toolkit",
		Commands: []*cli.Command{
			diffCommand,
			metaCommand,
			crxCommand,
			crx2rnxCommand,
			bnx2rnxCommand,
			navCommand,
			meteoCommand,
			ionexCommand,
			dorisCommand,
			sp3Command,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var diffCommand = &cli.Command{
	Name:      "diff",
	Usage:     "compare two RINEX observation files",
	ArgsUsage: "<file1> <file2>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.Exit("diff needs exactly two files to compare", 1)
		}

		obs1, err := rinex.NewObsFile(c.Args().Get(0))
		if err != nil {
			return err
		}
		obs2, err := rinex.NewObsFile(c.Args().Get(1))
		if err != nil {
			return err
		}
		return obs1.Diff(obs2)
	},
}

var metaCommand = &cli.Command{
	Name:      "meta",
	Usage:     "print metadata (epoch count, sampling, time span, obs stats) for a RINEX observation file",
	ArgsUsage: "<obs-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("meta needs exactly one file", 1)
		}

		obsFil, err := rinex.NewObsFile(c.Args().Get(0))
		if err != nil {
			return err
		}
		stat, err := obsFil.Meta()
		if err != nil {
			return err
		}

		fmt.Printf("epochs:     %d\n", stat.NumEpochs)
		fmt.Printf("satellites: %d\n", stat.NumSatellites)
		fmt.Printf("sampling:   %s\n", stat.Sampling)
		fmt.Printf("time span:  %s .. %s\n", stat.TimeOfFirstObs, stat.TimeOfLastObs)
		return nil
	},
}

var crxCommand = &cli.Command{
	Name:      "crx",
	Usage:     "Hatanaka-compress a RINEX observation file to CRINEX, written to stdout",
	ArgsUsage: "<obs-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("crx needs exactly one input file", 1)
		}
		path := c.Args().Get(0)

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		crx, err := rinex.CompressObs(in)
		if err != nil {
			return fmt.Errorf("compress %s: %v", path, err)
		}
		if _, err := os.Stdout.ReadFrom(crx); err != nil {
			return fmt.Errorf("write compressed output: %v", err)
		}
		return nil
	},
}

var crx2rnxCommand = &cli.Command{
	Name:      "crx2rnx",
	Usage:     "Hatanaka-decompress a CRINEX file to plain RINEX, written to stdout",
	ArgsUsage: "<crx-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("crx2rnx needs exactly one input file", 1)
		}
		path := c.Args().Get(0)

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		rnx, err := rinex.DecompressObs(in)
		if err != nil {
			return fmt.Errorf("decompress %s: %v", path, err)
		}
		if _, err := os.Stdout.ReadFrom(rnx); err != nil {
			return fmt.Errorf("write decompressed output: %v", err)
		}
		return nil
	},
}

var bnx2rnxCommand = &cli.Command{
	Name:      "bnx2rnx",
	Usage:     "summarise a BINEX stream (geodetic marker, ephemeris and solution records)",
	ArgsUsage: "<binex-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("bnx2rnx needs exactly one input file", 1)
		}
		path := c.Args().Get(0)

		in, err := binex.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		dec := binex.NewDecoder(in)

		var markers, ephemerides, solutions, other int
		for {
			msg, err := dec.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read %s: %v", path, err)
			}

			switch msg.RecordID {
			case binex.RecordGeodeticMarker:
				rec, err := binex.DecodeMonumentGeoRecord(msg.Payload)
				if err != nil {
					return fmt.Errorf("decode geodetic marker: %v", err)
				}
				markers++
				fmt.Printf("marker: epoch=%s meta=%v frames=%d\n", rec.Epoch, rec.Meta, len(rec.Frames))
			case binex.RecordEphemeris:
				ephemerides++
			case binex.RecordSolutions:
				rec, err := binex.DecodeSolutionRecord(msg.Payload)
				if err != nil {
					return fmt.Errorf("decode solution record: %v", err)
				}
				solutions++
				fmt.Printf("solution: %d fields\n", len(rec.Fields))
			default:
				other++
			}
		}
		if dec.Discarded > 0 {
			fmt.Printf("discarded %d bytes re-synchronising\n", dec.Discarded)
		}

		fmt.Printf("markers:     %d\n", markers)
		fmt.Printf("ephemerides: %d (raw subframes only; Keplerian decode is not implemented)\n", ephemerides)
		fmt.Printf("solutions:   %d\n", solutions)
		fmt.Printf("other:       %d\n", other)
		return nil
	},
}

var navCommand = &cli.Command{
	Name:      "nav",
	Usage:     "print a summary of a RINEX navigation file",
	ArgsUsage: "<nav-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("nav needs exactly one file", 1)
		}

		navFil, err := rinex.NewNavFile(c.Args().Get(0))
		if err != nil {
			return err
		}
		stats, err := navFil.GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("systems:    %v\n", stats.SatSystems)
		fmt.Printf("satellites: %d\n", len(stats.Satellites))
		fmt.Printf("ephemeris:  %d\n", stats.NumEphemeris)
		if !stats.EarliestEphTime.IsZero() {
			fmt.Printf("time span:  %s .. %s\n", stats.EarliestEphTime, stats.LatestEphTime)
		}
		return nil
	},
}

var meteoCommand = &cli.Command{
	Name:      "meteo",
	Usage:     "print the header of a RINEX meteorological file",
	ArgsUsage: "<met-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("meteo needs exactly one file", 1)
		}

		metFil, err := rinex.NewMeteoFile(c.Args().Get(0))
		if err != nil {
			return err
		}
		hdr, err := metFil.ReadHeader()
		if err != nil {
			return err
		}

		fmt.Printf("marker:      %s\n", hdr.MarkerName)
		fmt.Printf("obs types:   %v\n", hdr.ObsTypes)
		fmt.Printf("sensors:     %d\n", len(hdr.Sensors))
		return nil
	},
}

var ionexCommand = &cli.Command{
	Name:      "ionex",
	Usage:     "count the TEC maps in an IONEX file",
	ArgsUsage: "<ionex-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("ionex needs exactly one file", 1)
		}

		r, err := os.Open(c.Args().Get(0))
		if err != nil {
			return err
		}
		defer r.Close()

		dec, err := rinex.NewIonexDecoder(r)
		if err != nil {
			return err
		}

		fmt.Printf("grid:       %d x %d\n", dec.Header.Lat.N(), dec.Header.Lon.N())
		fmt.Printf("declared:   %d maps\n", dec.Header.NumMaps)

		n := 0
		for dec.NextMap() {
			n++
		}
		if err := dec.Err(); err != nil {
			return err
		}
		fmt.Printf("read:       %d maps\n", n)
		return nil
	},
}

var dorisCommand = &cli.Command{
	Name:      "doris",
	Usage:     "print a summary of a RINEX DORIS observation file",
	ArgsUsage: "<doris-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("doris needs exactly one file", 1)
		}

		r, err := os.Open(c.Args().Get(0))
		if err != nil {
			return err
		}
		defer r.Close()

		dec, err := rinex.NewDorisDecoder(r)
		if err != nil {
			return err
		}

		fmt.Printf("marker:     %s\n", dec.Header.MarkerName)
		fmt.Printf("stations:   %d\n", len(dec.Header.Stations))
		fmt.Printf("obs types:  %v\n", dec.Header.ObsTypes)

		n := 0
		for dec.NextEpoch() {
			n++
		}
		if err := dec.Err(); err != nil {
			return err
		}
		fmt.Printf("epochs:     %d\n", n)
		return nil
	},
}

var sp3Command = &cli.Command{
	Name:      "sp3",
	Usage:     "print a summary of an SP3 precise orbit/clock file",
	ArgsUsage: "<sp3-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("sp3 needs exactly one file", 1)
		}

		r, err := os.Open(c.Args().Get(0))
		if err != nil {
			return err
		}
		defer r.Close()

		dec, err := sp3.NewDecoder(r)
		if err != nil {
			return err
		}

		fmt.Printf("agency:     %s\n", dec.Header.Agency)
		fmt.Printf("satellites: %d\n", len(dec.Header.Satellites))
		fmt.Printf("interval:   %gs\n", dec.Header.Interval)

		n := 0
		for dec.NextEpoch() {
			n++
		}
		if err := dec.Err(); err != nil {
			return err
		}
		fmt.Printf("epochs:     %d\n", n)
		return nil
	},
}
