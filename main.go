package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/victorjacobs/go-flexit/bridge"
	"github.com/victorjacobs/go-flexit/config"
	"github.com/victorjacobs/go-flexit/flexit"
	"github.com/victorjacobs/go-flexit/logger"
	"github.com/victorjacobs/go-flexit/routes"
)

func main() {
	log := logger.New(logger.InfoLevel)
	defer log.Sync()

	configFile := config.DefaultFile
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	client := flexit.NewClient(log.Component("flexit"), cfg.Flexit.ClientOptions())
	log.Infof("Using %s ventilation mode table", client.Modes().Name)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := bridge.NewMetrics(registry, client.Auth().Requests)

	var b *bridge.Bridge

	mqttOpts := cfg.Mqtt.ClientOptions(log.Component("mqtt"))
	// Subscriptions live in the connect handler so they survive reconnects
	mqttOpts.SetOnConnectHandler(func(mqtt.Client) {
		if b != nil {
			b.OnConnect()
		}
	})

	mqttClient := mqtt.NewClient(mqttOpts)
	b = bridge.New(log.Component("bridge"), cfg, client, mqttClient, metrics)

	if t := mqttClient.Connect(); t.Wait() && t.Error() != nil {
		log.Fatalf("MQTT connection error: %v", t.Error())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := b.Setup(ctx); err != nil {
		b.Shutdown()
		mqttClient.Disconnect(250)
		log.Fatalf("Error setting up bridge: %v", err)
	}

	if err := b.Register(); err != nil {
		log.Errorf("Registering entities failed: %v", err)
	}

	go b.Run(ctx, cfg.Flexit.UpdateInterval)

	router := httprouter.New()
	router.GET("/state", routes.State(log.Component("http"), b))
	router.GET("/metrics", routes.Metrics(registry))

	server := &http.Server{Addr: cfg.HTTP.Address, Handler: router}
	go loopSafely(log.Component("http"), func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server failed: %v", err)
			time.Sleep(5 * time.Second)
		}
	}, func() bool { return ctx.Err() == nil })

	<-ctx.Done()
	log.Infof("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	b.Shutdown()
	mqttClient.Disconnect(250)
}
