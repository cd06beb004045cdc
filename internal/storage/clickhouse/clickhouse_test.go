package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		dsn      string
		addr     string
		user     string
		password string
		database string
	}{
		{"full", "clickhouse://u:p@db:9440/art", "db:9440", "u", "p", "art"},
		{"default port", "clickhouse://db/art", "db:9000", "", "", "art"},
		{"no database", "clickhouse://db:9000", "db:9000", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseDSN(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.addr}, opts.Addr)
			assert.Equal(t, tt.user, opts.Auth.Username)
			assert.Equal(t, tt.password, opts.Auth.Password)
			assert.Equal(t, tt.database, opts.Auth.Database)
		})
	}

	_, err := parseDSN("not a dsn")
	assert.Error(t, err)
}
