// Command locate publishes one device location report to the broker, the way
// a phone or gateway would.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nolangormley/chore-chart/internal/config"
	"github.com/nolangormley/chore-chart/internal/logging"
	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
	"github.com/nolangormley/chore-chart/internal/mqtt"
)

const appName = "chore-chart-locate"

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	deviceID := flag.String("device", "cli", "device id sent with the report")
	lat := flag.Float64("lat", 0, "latitude in decimal degrees")
	lon := flag.Float64("lon", 0, "longitude in decimal degrees")
	timeout := flag.Duration("timeout", 10*time.Second, "connect and publish timeout")
	flag.Parse()

	if !isSet("lat") || !isSet("lon") {
		fmt.Fprintf(os.Stderr, "usage: %s -lat <deg> -lon <deg> [-device id]\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.MQTTEnabled() {
		fmt.Fprintln(os.Stderr, "MQTT_BROKER is required")
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg, version, appName))

	report := types.LocationReport{
		DeviceID:  *deviceID,
		Lat:       lat,
		Lon:       lon,
		Timestamp: time.Now().UTC(),
	}
	if err := publish(cfg, report, *timeout); err != nil {
		slog.Error("publish location failed", "err", err)
		os.Exit(1)
	}
	slog.Info("location published",
		"device_id", report.DeviceID,
		"topic", cfg.MQTTLocationTopic,
	)
}

func publish(cfg config.Config, report types.LocationReport, timeout time.Duration) error {
	if err := (types.Coordinate{Lat: *report.Lat, Lon: *report.Lon}).Validate(); err != nil {
		return err
	}

	topic := cfg.MQTTLocationTopic
	// Publish only; an empty location topic keeps the client from subscribing.
	clientCfg := cfg
	clientCfg.MQTTLocationTopic = ""
	clientCfg.MQTTClientID = cfg.MQTTClientID + "-locate-" + report.DeviceID

	client := mqtt.NewClient(clientCfg, slog.Default())
	defer client.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		return err
	}
	return client.PublishJSON(ctx, topic, report)
}

func isSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
