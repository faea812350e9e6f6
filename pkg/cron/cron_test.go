package cron

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
)

func TestCronLogger(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	clogger := cronLogger{logger}
	clogger.Info("foo")
	clogger.Error(fmt.Errorf("bar"), "test")
	is.Equal(buf.String(), "DEBU foo\nERRO test err=bar\n")
}

func TestSchedulerAddRemove(t *testing.T) {
	is := is.New(t)
	s := NewScheduler(context.TODO())
	id, err := s.AddFunc("test", "* * * * *", func() {})
	is.NoErr(err)
	is.True(id > 0)
	is.Equal(len(s.Entries()), 1)
	s.Remove(id)
	is.Equal(len(s.Entries()), 0)
}

func TestSchedulerDisabled(t *testing.T) {
	is := is.New(t)
	s := NewScheduler(context.TODO())
	id, err := s.AddFunc("test", "", func() {})
	is.NoErr(err)
	is.Equal(id, 0)
	is.Equal(len(s.Entries()), 0)
}

func TestSchedulerBadSpec(t *testing.T) {
	is := is.New(t)
	s := NewScheduler(context.TODO())
	_, err := s.AddFunc("test", "every now and then", func() {})
	is.True(err != nil)
}
