/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/api"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/config"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/container"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/metrics"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the HR dashboard API server.
The server listens on the configured host and port and serves the
pipeline resource CRUD endpoints, the Xero integration and the
spreadsheet workbook editor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 初始化日志
		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// 3. 初始化容器
		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 配置文件热更新:运行中调整日志级别
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				if level, err := logrus.ParseLevel(newCfg.Log.Level); err == nil {
					logger.SetLevel(level)
				}
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("Config watcher disabled")
			} else {
				defer watcher.Stop()
			}
		}

		// 定期上报数据库连接池指标
		poolTicker := time.NewTicker(30 * time.Second)
		defer poolTicker.Stop()
		go func() {
			for range poolTicker.C {
				_ = metrics.UpdateDatabaseConnections(ctr.DB())
			}
		}()

		// 4. 初始化服务
		resourceSvc := service.NewResourceService(ctr.LarkClient(), &cfg.Lark)
		pipelineSvc := service.NewPipelineService(ctr.LarkClient(), &cfg.Lark)
		syncSvc := service.NewSyncService(ctr.XeroClient(), ctr.TokenRepository(), ctr.ReportRepository(), logger)

		// 5. 初始化控制器
		controllers := api.Controllers{
			Resource: api.NewResourceController(resourceSvc),
			Pipeline: api.NewPipelineController(pipelineSvc),
			Xero:     api.NewXeroController(ctr.XeroClient(), syncSvc, ctr.ReportRepository(), cfg.Xero, logger),
			Sheets:   api.NewSheetsController(ctr.SheetStore()),
		}

		// 6. 设置路由
		router := api.SetupRoutes(cfg, ctr.DB(), logger, controllers)

		// 7. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		// 启动服务器（在 goroutine 中）
		go func() {
			log.Printf("Server starting on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		log.Println("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringP("config", "c", "", "config file path")
}
