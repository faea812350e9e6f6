package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/matryer/is"
)

func TestGoodNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		config.DefaultConfig(),
		{},
		{Log: config.LogConfig{Path: filepath.Join(t.TempDir(), "logfile.txt")}},
		{Log: config.LogConfig{Format: "json"}},
	} {
		_, f, err := NewLogger(c)
		if err != nil {
			t.Errorf("NewLogger(%v) => _, _, %v, want _, _, nil", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestBadNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		nil,
		{Log: config.LogConfig{Path: "\x00"}},
	} {
		_, f, err := NewLogger(c)
		if err == nil {
			t.Errorf("NewLogger(%v) => _, _, nil, want _, _, %v", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestLogfmtToFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "soft-mail.log")
	logger, f, err := NewLogger(&config.Config{
		Log: config.LogConfig{Path: path, Format: "logfmt"},
	})
	is.NoErr(err)
	logger.Info("confirmation sent", "email", "jane@example.com")
	is.NoErr(f.Close())

	bts, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(bts), "email=jane@example.com"))
}
