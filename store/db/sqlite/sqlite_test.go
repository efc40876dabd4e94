package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"/data/todoassist_dev.db", "/data/todoassist_dev.db?" + pragmas},
		{"file:/data/t.db?mode=rwc", "file:/data/t.db?mode=rwc&" + pragmas},
		{"file:/data/t.db?mode=rwc&", "file:/data/t.db?mode=rwc&" + pragmas},
		{"/data/t.db?", "/data/t.db?" + pragmas},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, withPragmas(tt.dsn))
		})
	}
}

func TestDSNPath(t *testing.T) {
	assert.Equal(t, "/data/t.db", dsnPath("file:/data/t.db?mode=rwc"))
	assert.Equal(t, "/data/t.db", dsnPath("/data/t.db"))
}
