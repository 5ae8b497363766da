// Command walletd is the wallet extension's background process: it
// wires every controller via internal/core, exposes the dApp-facing
// port router over a websocket (plus a chi long-poll transport for
// headless testing), the privileged UI bridge over gin+SSE, and
// Prometheus metrics, then runs until SIGINT/SIGTERM.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"

	"github.com/walletd/core/internal/config"
	walletcore "github.com/walletd/core/internal/core"
	"github.com/walletd/core/internal/logging"
	"github.com/walletd/core/internal/obsmetrics"
	"github.com/walletd/core/internal/portrouter"
)

func main() {
	envFile := flag.String("env", ".env", "Path to .env file (optional)")
	chainsFile := flag.String("chains", "config/chains.yaml", "Path to chain seed list (optional)")
	flag.Parse()

	cfg, err := config.Load(*envFile, *chainsFile)
	if err != nil {
		logging.New("info", "text").Fatal(err.Error())
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("walletd: starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := walletcore.New(ctx, cfg, log.Entry())
	if err != nil {
		log.Fatal(err.Error())
	}
	defer c.Close()

	routerSrv := buildRouterServer(cfg, c)
	bridgeSrv := buildBridgeServer(cfg, c)
	metricsSrv := buildMetricsServer(cfg)

	go runServer(log, "router", routerSrv)
	go runServer(log, "bridge", bridgeSrv)
	go runServer(log, "metrics", metricsSrv)

	<-ctx.Done()
	log.Info("walletd: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = routerSrv.Shutdown(shutdownCtx)
	_ = bridgeSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("walletd: stopped")
}

func runServer(log *logging.Logger, name string, srv *http.Server) {
	log.WithField("addr", srv.Addr).Info("walletd: " + name + " listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("walletd: " + name + " server failed")
	}
}

// buildRouterServer mounts the dApp-facing port router: a websocket
// upgrade endpoint over gin, plus the chi long-poll transport
// (spec.md's ambient stack note: a second, headless-testable transport
// alongside the websocket one).
func buildRouterServer(cfg *config.Config, c *walletcore.Core) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/ws", func(ctx *gin.Context) {
		origin := ctx.Query("origin")
		portID, err := newPortID()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate port id"})
			return
		}
		if err := portrouter.ServeWS(ctx.Request.Context(), c.Router, portID, origin, ctx.Writer, ctx.Request, c.LogEntry()); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
	})

	chiRouter := chi.NewRouter()
	portrouter.MountHTTP(chiRouter, c.Router, "/dev/ports")
	engine.Any("/dev/ports/*any", gin.WrapH(chiRouter))

	return &http.Server{Addr: cfg.RouterListenAddr, Handler: engine}
}

// buildBridgeServer mounts the privileged UI bridge's request/response
// and SSE routes, per spec.md §4.7.
func buildBridgeServer(cfg *config.Config, c *walletcore.Core) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	secret := []byte(cfg.BridgeJWTSecret)
	c.Bridge.RegisterRoutes(engine, "/ui", secret)

	return &http.Server{Addr: cfg.BridgeListenAddr, Handler: engine}
}

func buildMetricsServer(cfg *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obsmetrics.Handler())
	return &http.Server{Addr: cfg.MetricsListenAddr, Handler: mux}
}

func newPortID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
