package main

import (
	"flag"
	"html/template"
	"log/slog"
	"os"

	"daily-report/internal/config"
	"daily-report/internal/excel"
	"daily-report/internal/handler"
	applog "daily-report/internal/logger"
	"daily-report/internal/middleware"
	"daily-report/internal/service"
	"daily-report/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	applog.Init(cfg.Log)
	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	reportSvc := service.NewReportService(db)
	if err := reportSvc.Migrate(); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	workbook := excel.NewWorkbook(cfg.Export.File)
	reportH := handler.NewReportHandler(reportSvc, workbook)

	r := gin.Default()
	r.Use(middleware.RequestLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	tmpl := template.Must(template.ParseFS(web.TemplatesFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", reportH.Index)
	r.GET("/view", reportH.View)
	r.GET("/add", reportH.AddForm)
	r.POST("/add", reportH.Add)
	r.GET("/delete/:id", reportH.Delete)
	r.POST("/delete/:id", reportH.Delete)
	r.GET("/summary", reportH.Summary)
	r.GET("/generate", reportH.Generate)
	r.GET("/download", reportH.Download)

	slog.Info("server starting", "addr", cfg.Addr(), "export", cfg.Export.File)
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
