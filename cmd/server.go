package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecomops/devicegate/cmd/flags"
	"github.com/ecomops/devicegate/internal/bootstrap"
	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/device"
	"github.com/ecomops/devicegate/internal/remote"
	"github.com/ecomops/devicegate/internal/session"
	"github.com/ecomops/devicegate/pkg/bus"
	"github.com/ecomops/devicegate/pkg/utils"
	"github.com/ecomops/devicegate/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the devicegate daemon",
	Run: func(cmd *cobra.Command, args []string) {
		bootstrap.InitConfig()
		bootstrap.Log()
		bootstrap.InitData()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client := remote.NewClient(conf.Conf.Remote, device.CurrentID)
		b := bus.New()
		reconciler := session.New(client, b, conf.Conf.Poll)
		go reconciler.Run(ctx)

		if !flags.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		engine.Use(gin.LoggerWithWriter(utils.Log.Out), gin.Recovery())
		server.Init(engine, client, b, reconciler)

		srv := &http.Server{Addr: conf.Conf.Address, Handler: engine}
		go func() {
			utils.Log.Infof("devicegate listening on %s", conf.Conf.Address)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				utils.Log.Fatalf("server failed: %+v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		utils.Log.Info("shutting down")
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Log.Warnf("forced shutdown: %+v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(ServerCmd)
}
