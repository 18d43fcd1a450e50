package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	mbp "go.gazette.dev/fsbench/mainboilerplate"
	"go.gazette.dev/fsbench/results"
)

type cmdHistoryList struct {
	Limit int `long:"limit" default:"20" description:"Maximum number of runs to list. Zero lists all runs"`
}

func (cmd *cmdHistoryList) Execute([]string) error {
	mbp.InitLog(Config.Log)
	mbp.Must(cmd.list(context.Background(), os.Stdout), "failed to list history")
	return nil
}

func (cmd *cmdHistoryList) list(ctx context.Context, out io.Writer) error {
	var h, err = openHistory(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	reports, err := h.List(ctx, cmd.Limit)
	if err != nil {
		return err
	}
	return results.RenderHistory(out, Config.Output.Format, reports)
}

type cmdHistoryPrune struct {
	Keep int `long:"keep" required:"true" description:"Number of newest runs to keep"`
}

func (cmd *cmdHistoryPrune) Execute([]string) error {
	mbp.InitLog(Config.Log)
	mbp.Must(cmd.prune(context.Background(), os.Stdout), "failed to prune history")
	return nil
}

func (cmd *cmdHistoryPrune) prune(ctx context.Context, out io.Writer) error {
	var h, err = openHistory(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	removed, err := h.Prune(ctx, cmd.Keep)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"removed": removed, "kept": cmd.Keep}).Info("pruned history")
	_, err = fmt.Fprintf(out, "Removed %d runs.\n", removed)
	return err
}

func openHistory(ctx context.Context) (*results.History, error) {
	if Config.Output.History == "" {
		return nil, fmt.Errorf("expected --output.history")
	}
	return results.OpenHistory(ctx, Config.Output.History)
}
