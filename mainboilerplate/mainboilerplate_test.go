package mainboilerplate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Bench struct {
		Files int    `long:"files" default:"256"`
		Label string `long:"label"`
	} `group:"Bench" namespace:"bench"`
}

type noopCmd struct{ ran bool }

func (c *noopCmd) Execute([]string) error { c.ran = true; return nil }

func TestCommandRegistryBuildsTree(t *testing.T) {
	var cfg testConfig
	var parser = flags.NewParser(&cfg, flags.Default)

	var list, prune = new(noopCmd), new(noopCmd)
	var reg = NewCommandRegistry()
	reg.AddCommand("", "history", "Manage history", "", &struct{}{})
	reg.AddCommand("history", "list", "List runs", "", list)
	reg.AddCommand("history", "prune", "Prune runs", "", prune)
	require.NoError(t, reg.AddCommands("", parser.Command, true))

	var history = parser.Find("history")
	require.NotNil(t, history)
	require.NotNil(t, history.Find("list"))
	require.NotNil(t, history.Find("prune"))

	var _, err = parser.ParseArgs([]string{"history", "prune", "--bench.files=3"})
	require.NoError(t, err)
	require.True(t, prune.ran)
	require.False(t, list.ran)
	require.Equal(t, 3, cfg.Bench.Files)
}

func TestIniConfigIsLayeredUnderFlags(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "fsbench.ini")
	require.NoError(t, os.WriteFile(path, []byte(
		"[Bench]\nfiles = 12\nlabel = from-ini\nunknown = ignored\n"), 0644))

	var cfg testConfig
	var parser = flags.NewParser(&cfg, flags.Default)

	require.NoError(t, parseIniConfig(parser, []string{filepath.Join(dir, "missing.ini"), path}))
	require.Equal(t, 12, cfg.Bench.Files)
	require.Equal(t, "from-ini", cfg.Bench.Label)
	// Options are restored after parsing.
	require.Equal(t, flags.Options(flags.Default), parser.Options)

	var _, err = parser.ParseArgs([]string{"--bench.label=from-flag"})
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Bench.Files)
	require.Equal(t, "from-flag", cfg.Bench.Label)
}

func TestConfigSearchPaths(t *testing.T) {
	t.Setenv("HOME", "/home/someone")
	t.Setenv("FSBENCH_CONFIG_ROOT", "/etc/fsbench")

	var paths = ConfigSearchPaths("fsbench.ini")
	require.Equal(t, "fsbench.ini", paths[0])
	require.Equal(t, "/home/someone/.config/fsbench/fsbench.ini", paths[1])
	require.Equal(t, "/etc/fsbench/fsbench.ini", paths[len(paths)-1])
}

func TestInitLogAndMust(t *testing.T) {
	var buf bytes.Buffer
	initLog(LogConfig{Level: "info", Format: "json"}, &buf)
	defer log.SetOutput(os.Stderr)

	require.Equal(t, log.InfoLevel, log.GetLevel())
	log.WithField("key", "value").Info("hello")
	require.Contains(t, buf.String(), `"key":"value"`)

	require.NotPanics(t, func() { Must(nil, "not raised") })
	require.Panics(t, func() { Must(errors.New("whoops"), "raised", "field", 1) })
	require.Contains(t, buf.String(), `"field":1`)
}
