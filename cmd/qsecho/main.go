/*
Development server that echoes how query strings are translated: the
structured descriptor and the SQL it renders to.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mitranim/querystr/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const envPrefix = `QSECHO_`

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:          `qsecho`,
		Short:        `Echo translated query strings`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := loadConfig(cmd, configFile, &cfg)
			if err != nil {
				return err
			}
			err = setupLogging(cfg.Log)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, `config`, ``, `Config file (yaml, json or toml)`)
	flags.StringVar(&cfg.Addr, `addr`, cfg.Addr, `Listen address`)
	flags.IntVar(&cfg.MaxLimit, `max-limit`, cfg.MaxLimit, `Maximum and default page size`)
	flags.StringVar(&cfg.Log.Level, `log-level`, cfg.Log.Level, `Log level: debug, info, warn or error`)
	return cmd
}

/*
Layers the config file and environment on top of defaults, then reapplies
flags set explicitly on the command line.
*/
func loadConfig(cmd *cobra.Command, file string, cfg *config.Config) error {
	flagged := *cfg
	*cfg = config.Default()
	err := config.Load(envPrefix, file, cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed(`addr`) {
		cfg.Addr = flagged.Addr
	}
	if flags.Changed(`max-limit`) {
		cfg.MaxLimit = flagged.MaxLimit
	}
	if flags.Changed(`log-level`) {
		cfg.Log.Level = flagged.Log.Level
	}
	return nil
}

func setupLogging(cfg config.Log) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if cfg.Format == `json` {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Gin.Mode)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof(`Starting HTTP server on %v`, cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info(`Shutting down HTTP server`)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
