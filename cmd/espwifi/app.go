package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/sago35/drivers/esp8266"
	"github.com/sago35/drivers/internal/config"
	"github.com/sago35/drivers/internal/logging"
)

// module is the part of esp8266.Device the tool drives.
type module interface {
	SoftReset()
	InitErr() error
	ConnectToAPErr(ssid, pass string) error
	IsConnected() bool
	FetchPage(host, page string) (string, error)
	SendCommand(cmd string, wait time.Duration) string
}

type app struct {
	cfg        *config.Config
	configPath string
	dev        module
	log        *logging.Logger
	raw        bool
	out        io.Writer

	// retry is the pause before a failed fetch is tried again (5s).
	retry time.Duration
}

const defaultRetry = 5 * time.Second

func (a *app) retryDelay() time.Duration {
	if a.retry <= 0 {
		return defaultRetry
	}
	return a.retry
}

func (a *app) stdout() io.Writer {
	if a.out != nil {
		return a.out
	}
	return os.Stdout
}

// start resets and configures the module and joins the access point.
func (a *app) start() error {
	a.log.Println("Resetting module")
	a.dev.SoftReset()
	if err := a.dev.InitErr(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return a.join()
}

func (a *app) join() error {
	if a.cfg.WiFi.SSID == "" {
		// the module may still hold credentials from an earlier join
		a.log.Println("No SSID configured, relying on stored credentials")
		return nil
	}
	a.log.Printf("Connecting to %s", a.cfg.WiFi.SSID)
	if err := a.dev.ConnectToAPErr(a.cfg.WiFi.SSID, a.cfg.WiFi.Password); err != nil {
		return err
	}
	a.log.Printf("Connected to %s", a.cfg.WiFi.SSID)
	return nil
}

func (a *app) fetchOnce() error {
	if err := a.start(); err != nil {
		return err
	}
	return a.fetch()
}

func (a *app) fetch() error {
	id := uuid.New().String()
	host, page := a.cfg.Fetch.Host, a.cfg.Fetch.Page

	a.log.Printf("[%s] GET %s%s", id, host, page)
	start := time.Now()
	data, err := a.dev.FetchPage(host, page)
	if err != nil {
		a.log.Printf("[%s] failed after %s: %v", id, time.Since(start).Round(time.Millisecond), err)
		return err
	}
	a.log.Printf("[%s] %d bytes in %s", id, len(data), time.Since(start).Round(time.Millisecond))

	fmt.Fprintln(a.stdout(), a.body(data))
	return nil
}

// body drops the module and HTTP chatter in front of the first tag.
func (a *app) body(data string) string {
	if a.raw {
		return data
	}
	if i := strings.Index(data, "<"); 0 <= i {
		return data[i:]
	}
	return data
}

func (a *app) status() error {
	if a.dev.IsConnected() {
		fmt.Fprintln(a.stdout(), "connected")
	} else {
		fmt.Fprintln(a.stdout(), "not connected")
	}
	return nil
}

type event int

const (
	evRefresh event = iota
	evReload
	evQuit
)

// watch fetches the page every interval and re-joins whenever the module
// drops off the network. Timer ticks, config changes and signals all arrive
// as events on one channel.
func (a *app) watch() error {
	if err := a.start(); err != nil {
		a.log.Printf("Start: %v", err)
	}

	events := make(chan event, 4)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		t := time.NewTicker(time.Duration(a.cfg.Fetch.IntervalSec) * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				send(events, evRefresh)
			case <-stop:
				return
			}
		}
	}()

	if path := a.watchedFile(); path != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer w.Close()
		// editors that save by renaming a new file over the old one drop a
		// watch on the file itself, so the directory is watched instead
		if err := w.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		go a.forwardConfigEvents(w, path, events, stop)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	go func() {
		select {
		case <-quit:
			send(events, evQuit)
		case <-stop:
		}
	}()

	return a.loop(events)
}

func (a *app) loop(events <-chan event) error {
	pending := true
	for {
		if !a.dev.IsConnected() {
			if err := a.join(); err != nil {
				a.log.Printf("Join: %v", err)
			}
		}

		if pending {
			if err := a.fetch(); err == nil {
				pending = false
			}
		}

		// a failed fetch is retried without waiting for the next tick
		var retry <-chan time.Time
		if pending {
			retry = time.After(a.retryDelay())
		}

		var ev event
		select {
		case ev = <-events:
		case <-retry:
			continue
		}

		switch ev {
		case evRefresh:
			pending = true
		case evReload:
			cfg, err := config.Load(a.configPath)
			if err != nil {
				a.log.Printf("Reload: %v", err)
				continue
			}
			a.log.Println("Configuration reloaded")
			rejoin := cfg.WiFi != a.cfg.WiFi
			a.cfg = cfg
			if rejoin {
				if err := a.join(); err != nil {
					a.log.Printf("Join: %v", err)
				}
			}
			pending = true
		case evQuit:
			a.log.Println("Stopping")
			return nil
		}
	}
}

func (a *app) watchedFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	if _, err := os.Stat(config.DefaultFile); err == nil {
		return config.DefaultFile
	}
	return ""
}

func (a *app) forwardConfigEvents(w *fsnotify.Watcher, path string, events chan<- event, stop <-chan struct{}) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if isConfigChange(ev, path) {
				send(events, evReload)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.log.Printf("Config watcher: %v", err)
		case <-stop:
			return
		}
	}
}

// isConfigChange reports whether ev left new contents at path. Events for
// other files in the directory are ignored.
func isConfigChange(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// send drops the event when the loop is already behind; one pending
// refresh or reload is as good as several.
func send(events chan<- event, ev event) {
	select {
	case events <- ev:
	default:
	}
}

// console reads AT commands line by line and prints the module's reply.
func (a *app) console(in io.Reader) error {
	out := a.stdout()
	fmt.Fprintln(out, "Type an AT command then press enter:")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "ESP8266>")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		wait := a.consoleWait(line)
		res := a.dev.SendCommand(line+"\r\n", wait)
		fmt.Fprintln(out, colorReply(res))
	}
}

// consoleWait picks the window for a console line. Unset timing values take
// the driver defaults.
func (a *app) consoleWait(line string) time.Duration {
	def := esp8266.DefaultConfig()
	ms, wait := a.cfg.Timing.CommandMs, def.CommandWait
	if strings.HasPrefix(line, "AT+CWJAP") {
		ms, wait = a.cfg.Timing.JoinMs, def.JoinWait
	}
	if 0 < ms {
		wait = time.Duration(ms) * time.Millisecond
	}
	return wait
}

func colorReply(res string) string {
	switch {
	case res == "":
		return logging.Colorize(logging.Yellow, "(no response)")
	case strings.Contains(res, "ERROR") || strings.Contains(res, "FAIL"):
		return logging.Colorize(logging.Red, res)
	default:
		return logging.Colorize(logging.Green, res)
	}
}
