package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    Profile
	}{
		{
			name:    "empty uses defaults",
			entries: nil,
			want:    Profile{URL: DefaultURL, Database: DefaultDatabase},
		},
		{
			name:    "explicit database wins over url",
			entries: []string{"url=bolt://graph:7687?database=fromurl", "database=explicit"},
			want:    Profile{URL: "bolt://graph:7687?database=fromurl", Database: "explicit"},
		},
		{
			name:    "explicit database wins when listed before url",
			entries: []string{"database=explicit", "url=bolt://graph:7687?database=fromurl"},
			want:    Profile{URL: "bolt://graph:7687?database=fromurl", Database: "explicit"},
		},
		{
			name:    "database from url",
			entries: []string{"url=bolt://graph:7687?database=movies"},
			want:    Profile{URL: "bolt://graph:7687?database=movies", Database: "movies"},
		},
		{
			name:    "database from url among other params",
			entries: []string{"url=neo4j://graph?policy=eu&database=movies&x=1"},
			want:    Profile{URL: "neo4j://graph?policy=eu&database=movies&x=1", Database: "movies"},
		},
		{
			name:    "url without database falls back",
			entries: []string{"url=bolt://graph:7687"},
			want:    Profile{URL: "bolt://graph:7687", Database: DefaultDatabase},
		},
		{
			name:    "credentials",
			entries: []string{"user=neo4j", "password=s3cret"},
			want:    Profile{URL: DefaultURL, Database: DefaultDatabase, Login: "neo4j", Password: "s3cret"},
		},
		{
			name:    "values may contain equals signs",
			entries: []string{"password=a=b=c", "url=bolt://h?database=x=y"},
			want:    Profile{URL: "bolt://h?database=x=y", Database: "x=y", Password: "a=b=c"},
		},
		{
			name:    "malformed and unknown entries are ignored",
			entries: []string{"garbage", "port=7687", "", "=value", "URL=bolt://upper"},
			want:    Profile{URL: DefaultURL, Database: DefaultDatabase},
		},
		{
			name:    "later entries overwrite earlier ones",
			entries: []string{"user=a", "user=b", "url=bolt://one", "url=bolt://two"},
			want:    Profile{URL: "bolt://two", Database: DefaultDatabase, Login: "b"},
		},
		{
			name:    "empty explicit database counts as absent",
			entries: []string{"database=", "url=bolt://h?database=movies"},
			want:    Profile{URL: "bolt://h?database=movies", Database: "movies"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.entries)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.Database)
		})
	}
}

func TestDatabaseFromURL(t *testing.T) {
	assert.Equal(t, "movies", DatabaseFromURL("bolt://h?database=movies"))
	assert.Equal(t, "my db", DatabaseFromURL("bolt://h?database=my%20db"))
	assert.Equal(t, "movies", DatabaseFromURL("bolt://h?database=movies#frag"))
	assert.Empty(t, DatabaseFromURL("bolt://h"))
	assert.Empty(t, DatabaseFromURL("bolt://h?mydatabase=movies"))
}

func TestProfile_DriverURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"bolt://localhost", "bolt://localhost"},
		{"bolt://h:7687?database=movies", "bolt://h:7687"},
		{"neo4j://h?policy=eu&database=movies", "neo4j://h?policy=eu"},
		{"neo4j://h?policy=eu", "neo4j://h?policy=eu"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Profile{URL: tt.url}.DriverURL())
		})
	}
}

func TestProfile_StringRedactsPassword(t *testing.T) {
	p := Resolve([]string{"user=neo4j", "password=s3cret"})
	s := p.String()
	require.NotContains(t, s, "s3cret")
	assert.Contains(t, s, "user=neo4j")
	assert.Contains(t, s, "database=neo4j")
}

func TestEntry(t *testing.T) {
	p := Resolve([]string{Entry(KeyURL, "bolt://x"), Entry(KeyDatabase, "d")})
	assert.Equal(t, "bolt://x", p.URL)
	assert.Equal(t, "d", p.Database)
}
