// Package config resolves Neo4j connection profiles from catalog option lists.
package config

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// DefaultURL is used when no url= entry is present.
	DefaultURL = "bolt://localhost"
	// DefaultDatabase is used when neither a database= entry nor the URL names a database.
	DefaultDatabase = "neo4j"
)

// Recognised option keys.
const (
	KeyURL      = "url"
	KeyDatabase = "database"
	KeyUser     = "user"
	KeyPassword = "password"
)

var urlDatabasePattern = regexp.MustCompile(`[?&]database=([^&#]*)`)

// Profile holds the resolved connection parameters for one query invocation.
type Profile struct {
	URL      string
	Database string
	Login    string
	Password string
}

// Resolve builds a Profile from key=value option entries.
// Unrecognised or malformed entries are ignored; later entries overwrite earlier ones.
// An explicit database= entry takes precedence over a database named in the URL,
// which takes precedence over DefaultDatabase.
func Resolve(entries []string) Profile {
	p := Profile{URL: DefaultURL}
	explicitDB := ""

	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		switch key {
		case KeyURL:
			p.URL = value
		case KeyDatabase:
			explicitDB = value
		case KeyUser:
			p.Login = value
		case KeyPassword:
			p.Password = value
		}
	}

	switch {
	case explicitDB != "":
		p.Database = explicitDB
	default:
		p.Database = DatabaseFromURL(p.URL)
		if p.Database == "" {
			p.Database = DefaultDatabase
		}
	}

	return p
}

// DatabaseFromURL extracts the value of a database query parameter embedded in
// rawURL. It returns "" when none is present.
func DatabaseFromURL(rawURL string) string {
	m := urlDatabasePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	if name, err := url.QueryUnescape(m[1]); err == nil {
		return name
	}
	return m[1]
}

// Entry formats a single key=value option entry.
func Entry(key, value string) string {
	return key + "=" + value
}

// DriverURL returns the endpoint URL without the database query parameter,
// which the driver would otherwise treat as routing context.
func (p Profile) DriverURL() string {
	u, err := url.Parse(p.URL)
	if err != nil || u.RawQuery == "" {
		return p.URL
	}
	q := u.Query()
	if !q.Has(KeyDatabase) {
		return p.URL
	}
	q.Del(KeyDatabase)
	u.RawQuery = q.Encode()
	return u.String()
}

// String renders the profile with the password redacted.
func (p Profile) String() string {
	pw := ""
	if p.Password != "" {
		pw = "****"
	}
	return "url=" + p.URL + " database=" + p.Database + " user=" + p.Login + " password=" + pw
}
