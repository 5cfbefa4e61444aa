package main

import (
	"bufio"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/cidrkit/iptrie"
)

// LoadFile reads path line by line. Empty lines and lines starting with
// '#' are ignored; every other line's first whitespace-separated token is
// parsed as a CIDR prefix and the whole line becomes its associated value.
// A line whose prefix fails to parse, or whose family doesn't match force
// (when force is non-nil), is skipped: logged as a warning and folded into
// the returned error instead of aborting the load.
func LoadFile(log zerolog.Logger, path string, force *iptrie.Family) (*iptrie.IpRTrieMap[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open lpm file: %w", err)
	}
	defer f.Close()

	table := iptrie.NewIpRTrieMap[string]()
	var errs *multierror.Error

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Fields(trimmed)
		prefixText := fields[0]

		p, err := netip.ParsePrefix(prefixText)
		if err != nil {
			log.Warn().Int("line", lineNo).Str("text", prefixText).Err(err).Msg("skipping malformed prefix")
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}

		if force != nil {
			isV4 := p.Addr().Is4()
			if (*force == iptrie.FamilyV4) != isV4 {
				log.Warn().Int("line", lineNo).Str("text", prefixText).Msg("skipping prefix of the wrong address family")
				errs = multierror.Append(errs, fmt.Errorf("line %d: %s is not %s", lineNo, prefixText, *force))
				continue
			}
		}

		table.Insert(p, line)
	}
	if err := scanner.Err(); err != nil {
		return table, fmt.Errorf("error reading lpm file: %w", err)
	}

	return table, errs.ErrorOrNil()
}
