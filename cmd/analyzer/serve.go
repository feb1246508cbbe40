package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"resume-match/internal/analyzer"
	"resume-match/internal/shared/server/middleware"
	"resume-match/internal/shared/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "5001", "port to listen on")
	serveCmd.Flags().String("gemini-model", "", "Gemini model used to rewrite feedback")

	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("gemini-model", serveCmd.Flags().Lookup("gemini-model"))
	_ = viper.BindEnv("port", "ANALYZER_PORT")
	_ = viper.BindEnv("gemini-api-key", "GEMINI_API_KEY")
	_ = viper.BindEnv("gemini-model", "GEMINI_MODEL")
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := &analyzer.Engine{}
	if key := viper.GetString("gemini-api-key"); key != "" {
		writer, err := analyzer.NewGeminiWriter(ctx, key, viper.GetString("gemini-model"))
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		engine.Writer = writer
		telemetry.L().Info("gemini feedback enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logging())
	(&analyzer.Handler{Engine: engine}).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + viper.GetString("port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.L().Info("analysis service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	telemetry.L().Info("shutting down analysis service")
	return srv.Shutdown(shutdownCtx)
}
