package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const defaultPostgresPort = 5432

// ParsedDatabaseURL is a postgres connection URL split into libpq keywords.
type ParsedDatabaseURL struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Options  map[string]string
}

// ParseDatabaseURL accepts postgres:// and postgresql:// URLs. Missing port
// and sslmode fall back to 5432 and disable.
func ParseDatabaseURL(rawURL string) (*ParsedDatabaseURL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid database URL scheme: %s (expected postgres or postgresql)", u.Scheme)
	}

	p := &ParsedDatabaseURL{
		Host:     u.Hostname(),
		Port:     defaultPostgresPort,
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  "disable",
		Options:  map[string]string{},
	}

	if raw := u.Port(); raw != "" {
		if p.Port, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid port in database URL: %w", err)
		}
	}

	if u.User != nil {
		p.User = u.User.Username()
		p.Password, _ = u.User.Password()
	}

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "sslmode" {
			p.SSLMode = values[0]
			continue
		}
		p.Options[key] = values[0]
	}

	return p, nil
}

// ToDSN renders the keyword/value form lib/pq accepts. Extra options follow
// the fixed keywords in key order.
func (p *ParsedDatabaseURL) ToDSN() string {
	pairs := []string{
		"host=" + dsnValue(p.Host),
		"port=" + strconv.Itoa(p.Port),
		"user=" + dsnValue(p.User),
		"password=" + dsnValue(p.Password),
		"dbname=" + dsnValue(p.Database),
		"sslmode=" + dsnValue(p.SSLMode),
	}

	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k+"="+dsnValue(p.Options[k]))
	}

	return strings.Join(pairs, " ")
}

// dsnValue quotes values containing spaces, quotes or backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
