// Command rangefinder measures distance with an ultrasonic sensor on GPIO and
// publishes readings to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rangefinder/internal/clock"
	"github.com/sweeney/rangefinder/internal/config"
	"github.com/sweeney/rangefinder/internal/gpio"
	"github.com/sweeney/rangefinder/internal/logic"
	"github.com/sweeney/rangefinder/internal/mqtt"
	"github.com/sweeney/rangefinder/internal/status"
	"github.com/sweeney/rangefinder/internal/urm"
	"github.com/sweeney/rangefinder/internal/web"
)

// simulatedEchoDelayUs approximates the HC-SR04 burst time before echo rises.
const simulatedEchoDelayUs = 450

type options struct {
	configPath    string
	chip          string
	trig          int
	echo          int
	profile       string
	interval      time.Duration
	heartbeat     time.Duration
	broker        string
	httpAddr      string
	printDistance bool
	simulateCm    uint
	debug         bool
}

func main() {
	def := config.Default()
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	flag.StringVar(&opts.chip, "chip", def.Sensor.Chip, "GPIO chip name")
	flag.IntVar(&opts.trig, "trig", def.Sensor.TrigPin, "Line offset of the trigger pin")
	flag.IntVar(&opts.echo, "echo", def.Sensor.EchoPin, "Line offset of the echo pin")
	flag.StringVar(&opts.profile, "profile", def.Sensor.Profile.Preset, "Sensor preset (urm37, hc-sr04)")
	flag.DurationVar(&opts.interval, "interval", def.Interval, "Time between measurements")
	flag.DurationVar(&opts.heartbeat, "heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)")
	flag.StringVar(&opts.broker, "broker", def.MQTT.Broker, "MQTT broker address")
	flag.StringVar(&opts.httpAddr, "http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	flag.BoolVar(&opts.printDistance, "print-distance", false, "Measure once, print the distance and exit")
	flag.UintVar(&opts.simulateCm, "simulate-cm", 0, "Simulate a target at this distance instead of using GPIO (0 = off)")
	flag.BoolVar(&opts.debug, "debug", false, "Log every state machine transition")

	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, opts, set)

	if err := run(cfg, opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags copies explicitly set command-line flags over the loaded config.
func applyFlags(cfg *config.Config, opts options, set map[string]bool) {
	if set["chip"] {
		cfg.Sensor.Chip = opts.chip
	}
	if set["trig"] {
		cfg.Sensor.TrigPin = opts.trig
	}
	if set["echo"] {
		cfg.Sensor.EchoPin = opts.echo
	}
	if set["profile"] {
		cfg.Sensor.Profile.Preset = opts.profile
	}
	if set["interval"] {
		cfg.Interval = opts.interval
	}
	if set["heartbeat"] {
		cfg.Heartbeat = opts.heartbeat
	}
	if set["broker"] {
		cfg.MQTT.Broker = opts.broker
	}
	if set["http"] {
		cfg.HTTP.Addr = opts.httpAddr
	}
}

func run(cfg *config.Config, opts options) error {
	profile, err := cfg.Sensor.Profile.Resolve()
	if err != nil {
		return fmt.Errorf("sensor profile: %w", err)
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}

	clk := clock.NewReal()

	// Initialize GPIO
	var port gpio.Port
	if opts.simulateCm > 0 {
		sim := gpio.NewSimulator(clk, cfg.Sensor.TrigPin, cfg.Sensor.EchoPin, profile.TrigActive, profile.EchoActive)
		sim.DelayUs = simulatedEchoDelayUs
		sim.EchoForDistance(uint32(opts.simulateCm), profile.UsPerCm)
		port = sim
		log.Printf("gpio: simulating a target at %dcm", opts.simulateCm)
	} else {
		chipPort, err := gpio.NewChipPort(cfg.Sensor.Chip)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer chipPort.Close()
		port = chipPort
	}

	sensor := urm.New(port, clk)
	if opts.debug {
		sensor.SetObserver(func(tr urm.Transition) {
			log.Printf("sensor: %s -> %s fault=%q at=%dus", tr.From, tr.To, tr.Fault, tr.At)
		})
	}
	if err := sensor.Attach(profile, cfg.Sensor.TrigPin, cfg.Sensor.EchoPin); err != nil {
		return fmt.Errorf("attach sensor: %w", err)
	}
	defer sensor.Detach()

	// Print distance mode
	if opts.printDistance {
		d := sensor.Measure()
		if d == urm.InvalidDistance {
			fmt.Printf("distance: invalid (%s)\n", sensor.LastFault())
			return nil
		}
		fmt.Printf("distance: %d cm\n", d)
		return nil
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		IntervalMs:  cfg.Interval.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		Chip:        cfg.Sensor.Chip,
		TrigPin:     cfg.Sensor.TrigPin,
		EchoPin:     cfg.Sensor.EchoPin,
		Simulated:   opts.simulateCm > 0,
		Profile:     profile,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: profile=%s trig=%d echo=%d interval=%v broker=%s heartbeat=%v",
		profile.Name, cfg.Sensor.TrigPin, cfg.Sensor.EchoPin, cfg.Interval, cfg.MQTT.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sensor, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(sensor *urm.Sensor, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	recorder := logic.NewRecorder(now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			distance := sensor.Measure()
			pulse, _ := sensor.PulseWidth()

			event := recorder.Process(logic.Input{
				Time:       t,
				DistanceCm: distance,
				PulseUs:    pulse,
				Fault:      sensor.LastFault(),
			})
			if !event.Valid() {
				log.Printf("measurement failed: fault=%s consecutive=%d", event.Fault, event.Consecutive)
			}
			if err := publisher.Publish(event); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}

			// Check for heartbeat
			if hbData := recorder.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v readings=%d failures=%d",
					hbData.Uptime, hbData.Counts.Readings, hbData.Counts.Failures())

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(sensor.State(), event, recorder.CountsSnapshot(), recorder.ConsecutiveFailures())
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(sensor.State(), event, recorder.CountsSnapshot(), recorder.ConsecutiveFailures())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
