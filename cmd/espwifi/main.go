// Command espwifi drives an ESP8266 on a host serial port: it joins the
// configured access point and fetches a page over the module's TCP stack.
//
//	espwifi [-config espwifi.yaml] fetch|status|watch|at
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sago35/drivers/esp8266"
	"github.com/sago35/drivers/esp8266/serialport"
	"github.com/sago35/drivers/internal/config"
	"github.com/sago35/drivers/internal/logging"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: espwifi [-config file] fetch|status|watch|at\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "configuration file (default "+config.DefaultFile+" if present)")
	raw := flag.Bool("raw", false, "print fetched pages as received instead of from the first tag")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logger.Close()
	esp8266.Debug(cfg.Log.Debug)

	port, err := serialport.Open(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		logger.Fatalf("Failed to open serial port: %v", err)
	}
	defer port.Close()

	dev := esp8266.New(port, port)
	if err := dev.Configure(cfg.Timing.Driver()); err != nil {
		logger.Fatalf("Failed to configure module: %v", err)
	}
	port.OnReceive(dev.HandleInterrupt)

	app := &app{
		cfg:        cfg,
		configPath: *configPath,
		dev:        dev,
		log:        logger,
		raw:        *raw,
	}

	switch cmd := flag.Arg(0); cmd {
	case "fetch":
		err = app.fetchOnce()
	case "status":
		err = app.status()
	case "watch":
		err = app.watch()
	case "at":
		err = app.console(os.Stdin)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Printf("%s: %v", flag.Arg(0), err)
		port.Close()
		logger.Close()
		os.Exit(1)
	}
}
