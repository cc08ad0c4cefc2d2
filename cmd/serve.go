package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"bilifeed/internal/bilibili"
	"bilifeed/internal/credential"
	"bilifeed/internal/handler"
	"bilifeed/internal/redisclient"
	"bilifeed/internal/storage"
	"bilifeed/worker"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the feed HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		// Redis client
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		timeout, err := time.ParseDuration(cfg.Bilibili.FetchTimeout)
		if err != nil {
			return err
		}
		client := bilibili.NewClient(cfg.Bilibili.APIBaseURL, cfg.Bilibili.WebAPIBaseURL, cfg.Bilibili.WebBaseURL, timeout)
		creds := credential.Map(cfg.Bilibili.Cookies)
		cache := storage.NewRedisCache(rdb, client, creds)

		uids := make([]string, 0, len(cfg.Bilibili.Cookies))
		for uid := range cfg.Bilibili.Cookies {
			uids = append(uids, uid)
		}
		sort.Strings(uids)

		refresh, err := time.ParseDuration(cfg.Bilibili.NameRefreshInterval)
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		handler.NewFeedHandler(client, creds, cache).Register(r)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		mgr := worker.NewManager(&worker.NameWarmer{
			Metadata: cache,
			UIDs:     uids,
			Interval: refresh,
		})
		workerErr := make(chan error, 1)
		go func() {
			workerErr <- mgr.Start(ctx)
		}()

		srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
		go func() {
			slog.Info("serve: listening", "addr", cfg.Server.Addr, "accounts", len(uids))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("serve: http server failed", "error", err)
				cancel()
			}
		}()

		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("serve: shutdown failed", "error", err)
		}
		return <-workerErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
