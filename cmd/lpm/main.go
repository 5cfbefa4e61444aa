// Command lpm loads a file of CIDR prefixes and their associated values,
// then answers longest-prefix-match queries read from stdin, one address
// per line, until EOF.
package main

import (
	"bufio"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/cidrkit/iptrie"
)

func main() {
	var (
		flagFile     string
		flagV4       bool
		flagV6       bool
		flagCompress bool
		flagLogLevel string
	)

	pflag.StringVarP(&flagFile, "file", "f", "", "path to the lpm prefix file")
	pflag.BoolVarP(&flagV4, "v4", "4", false, "keep only IPv4 prefixes, skipping other lines")
	pflag.BoolVarP(&flagV6, "v6", "6", false, "keep only IPv6 prefixes, skipping other lines")
	pflag.BoolVarP(&flagCompress, "compress", "c", false, "build the LC-trie before the query loop")
	pflag.StringVarP(&flagLogLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
	pflag.Parse()

	zerolog.TimestampFunc = time.Now
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", flagLogLevel).Msg("invalid log level")
	}
	log = log.Level(level)

	if flagFile == "" {
		log.Fatal().Msg("missing required --file")
	}
	if flagV4 && flagV6 {
		log.Fatal().Msg("--v4 and --v6 are mutually exclusive")
	}

	var force *iptrie.Family
	switch {
	case flagV4:
		f := iptrie.FamilyV4
		force = &f
	case flagV6:
		f := iptrie.FamilyV6
		force = &f
	}

	start := time.Now()
	table, err := LoadFile(log, flagFile, force)
	if err != nil {
		log.Warn().Err(err).Msg("some lines were skipped while loading")
	}
	log.Info().Dur("elapsed", time.Since(start)).Int("prefixes", table.Len()).Msg("loaded lpm file")

	lookup := table.Lookup
	if flagCompress {
		start = time.Now()
		compressed := table.Compress()
		log.Info().Dur("elapsed", time.Since(start)).Msg("compressed to LC-trie")
		lookup = compressed.Lookup
	}

	repl(lookup)
}

func repl(lookup func(netip.Addr) iptrie.LookupResult[string]) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		addr, err := netip.ParseAddr(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid address %q: %v\n", text, err)
			continue
		}
		res := lookup(addr)
		matched := res.V6.String()
		if res.Family == iptrie.FamilyV4 {
			matched = res.V4.String()
		}
		fmt.Printf("%s -> %s: %s\n", text, matched, res.Value)
	}
}
