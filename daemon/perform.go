package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	. "timestore/common"
	"timestore/db"
	"timestore/db/parse"
)

// Note, this should *NOT* be called Perform(), so that a DaemonCommand is never confused with a
// simple command.

func (dc *DaemonCommand) RunDaemon(_ io.Reader, _, stderr io.Writer) error {
	if dc.Verbose {
		Log.SetUnderlying(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	var provider db.Provider
	if dc.dbURL != "" {
		pg, err := db.OpenPgProvider(dc.dbURL, parse.NewEntityCodec())
		if err != nil {
			return err
		}
		defer pg.Close()
		provider = pg
	} else {
		reader, err := db.OpenTimelineReader(dc.Root)
		if err != nil {
			return err
		}
		provider = reader
	}

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("timestore", "0.1.0"))
	registerAPI(api, provider)

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer stop()

	// Ingest always goes to the filesystem store, one consumer goroutine per cluster, just to
	// be a little resilient.
	if dc.kafkaBroker != "" {
		if dc.dbURL != "" {
			Log.Warningf("Queries are served from Postgres but ingest writes to %s", dc.Root)
		}
		writer := db.NewTimelineWriter(dc.Root, parse.NewEntityCodec())
		for _, cluster := range dc.ingestClusters {
			go runKafka(ctx, dc.kafkaBroker, cluster, writer, dc.Verbose)
		}
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", dc.port),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	Log.Infof("Listening on port %d", dc.port)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		err = nil
	}
	db.Close()
	return err
}
