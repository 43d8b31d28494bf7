package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"quantum-energy-scheduler/internal/api/handlers"
	"quantum-energy-scheduler/internal/api/middleware"
	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/config"
	"quantum-energy-scheduler/internal/logger"
	"quantum-energy-scheduler/internal/pipeline"
	"quantum-energy-scheduler/internal/publish"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get(cfg.LogLevel)
	defer log.Sync()

	tuning := config.DefaultTuning()
	if cfg.TuningFile != "" {
		tuning, err = config.LoadTuning(cfg.TuningFile)
		if err != nil {
			log.Fatalw("load tuning preset", "file", cfg.TuningFile, "error", err)
		}
		log.Infow("loaded tuning preset", "file", cfg.TuningFile)
	}

	sim := backend.NewSimulator(cfg.Seed)
	engine := pipeline.New(sim, log)

	var sink handlers.ResultSink
	publisher, err := publish.New(cfg.MQTT, log)
	if err != nil {
		log.Fatalw("mqtt publisher", "broker", cfg.MQTT.Broker, "error", err)
	}
	if publisher != nil {
		defer publisher.Close()
		sink = publisher
	}

	gin.SetMode(cfg.Mode)
	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	optimizeHandler := handlers.NewOptimizeHandler(engine, tuning, sink, log)
	infoHandler := handlers.NewInfoHandler(sim, tuning)

	router.GET("/health", infoHandler.Health)
	api := router.Group("/api/v1")
	{
		api.POST("/optimize", optimizeHandler.Optimize)
		api.GET("/info", infoHandler.Info)
	}

	addr := ":" + cfg.Port
	log.Infow("starting api server", "addr", addr, "backend", sim.Name(), "qubits", tuning.WindowSize)
	if err := router.Run(addr); err != nil {
		log.Fatalw("server exited", "error", err)
	}
}
