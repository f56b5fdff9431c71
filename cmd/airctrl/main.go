package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/airctrl/internal/app"
	"github.com/ayusman/airctrl/internal/capture"
	"github.com/ayusman/airctrl/internal/config"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/server"
	"github.com/ayusman/airctrl/internal/store"
	"github.com/ayusman/airctrl/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	noTray := flag.Bool("no-tray", false, "run without the menu bar item")
	flag.Parse()

	fmt.Println("AirCtrl - Hand Gesture Control")

	cfg, err := config.Load(*configPath, nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(cfg.DataDir, "airctrl.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{Settings: cfg, Store: st})
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	log.Printf("Loaded %d plugins from %s", len(a.PluginManager().List()), a.PluginManager().PluginDir())

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start camera: %v", err)
	}
	defer a.Stop()

	webDir := findWebDir(cfg.Server.WebDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Plugins:   a.PluginManager(),
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tray && !*noTray {
		runTray(ctx, a, stop, settingsURL(cfg.Server.Addr))
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Printf("Server failed: %v", err)
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// runTray shows the menu bar item and blocks until it quits or ctx ends.
func runTray(ctx context.Context, a *app.App, quit func(), url string) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open settings: %v", err)
		}
	})
	t.OnQuit(quit)
	a.OnLabel(func(l gesture.Label) { t.SetLastGesture(string(l)) })
	a.OnModeChange(func(m capture.Mode) { t.SetMode(m.String()) })

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func settingsURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	return exec.Command(name, url).Start()
}

// findWebDir returns the configured web directory if it exists, falling
// back to "web", "../web", "../../web" and ~/.airctrl/web. It returns ""
// when none is found.
func findWebDir(configured string) string {
	candidates := []string{configured, "web", "../web", "../../web"}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".airctrl", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
