// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dnslog

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/miekg/dns"

	"grimm.is/dnsadvisor/internal/errors"
)

// Example lines:
//   Feb 20 14:21:33 gw dnsmasq[1234]: query[A] example.com from 192.168.1.50
//   Feb  3 09:00:01 dnsmasq[987]: query[AAAA] cdn.example.net from 10.0.0.4
//   Mar  1 00:00:00 pi pihole-FTL[55]: query[HTTPS] x.example from 10.0.0.9
var queryRe = regexp.MustCompile(
	`^(\w{3}\s+\d{1,2}\s+\d{1,2}:\d{2}:\d{2})\s+(?:\S+\s+)?(?:dnsmasq|pihole-FTL)\[\d+\]:\s+query\[([^\]]+)\]\s+(\S+)\s+from\s+(\S+)`)

const maxLineSize = 1 << 20

// Stats counts what a parse pass saw.
type Stats struct {
	Lines   int
	Queries int
	// Unmatched lines are not query records (replies, forwards, noise).
	Unmatched int
	// Invalid lines matched but carried an unusable name.
	Invalid int
}

// Parser converts dnsmasq-style log lines into Query records. dnsmasq omits
// the year, so timestamps are placed in the year of Reference; a timestamp
// more than a day past Reference is assumed to belong to the previous year.
type Parser struct {
	Reference time.Time
	Location  *time.Location
}

// NewParser returns a Parser anchored at ref in ref's location.
func NewParser(ref time.Time) *Parser {
	return &Parser{Reference: ref, Location: ref.Location()}
}

// ParseLine returns the query on line. ok is false for lines that are not
// query records or that carry an invalid name.
func (p *Parser) ParseLine(line string) (q Query, ok bool, invalid bool) {
	line = strings.TrimSpace(line)
	m := queryRe.FindStringSubmatch(line)
	if m == nil {
		return Query{}, false, false
	}

	domain := strings.TrimSuffix(m[3], ".")
	if domain == "" {
		return Query{}, false, true
	}
	if _, valid := dns.IsDomainName(domain); !valid {
		return Query{}, false, true
	}

	return Query{
		Timestamp: p.timestamp(m[1]),
		Client:    m[4],
		Domain:    domain,
		QType:     normalizeType(m[2]),
		Raw:       line,
	}, true, false
}

// Parse reads every line of r. Lines that are not queries are skipped.
func (p *Parser) Parse(r io.Reader) ([]Query, Stats, error) {
	var (
		out   []Query
		stats Stats
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		stats.Lines++
		q, ok, invalid := p.ParseLine(sc.Text())
		switch {
		case ok:
			out = append(out, q)
			stats.Queries++
		case invalid:
			stats.Invalid++
		default:
			stats.Unmatched++
		}
	}
	if err := sc.Err(); err != nil {
		return out, stats, errors.Wrap(err, errors.KindIO, "read dns log")
	}
	return out, stats, nil
}

// ParseFile parses the log at path. A path of "-" reads stdin.
func (p *Parser) ParseFile(path string) ([]Query, Stats, error) {
	if path == "-" {
		return p.Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		kind := errors.KindIO
		if os.IsNotExist(err) {
			kind = errors.KindNotFound
		}
		return nil, Stats{}, errors.Attr(errors.Wrap(err, kind, "open dns log"), "path", path)
	}
	defer f.Close()

	qs, stats, err := p.Parse(f)
	return qs, stats, errors.Attr(err, "path", path)
}

func (p *Parser) timestamp(prefix string) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	ref := p.Reference
	if ref.IsZero() {
		ref = time.Now()
	}

	t, err := time.ParseInLocation("Jan 2 15:04:05", strings.Join(strings.Fields(prefix), " "), loc)
	if err != nil {
		return ref
	}
	ts := time.Date(ref.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	if ts.Sub(ref) > 24*time.Hour {
		ts = ts.AddDate(-1, 0, 0)
	}
	return ts
}

func normalizeType(raw string) string {
	upper := strings.ToUpper(raw)
	if t, ok := dns.StringToType[upper]; ok {
		return dns.TypeToString[t]
	}
	return raw
}
