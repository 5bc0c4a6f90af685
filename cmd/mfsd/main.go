package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mfsd/internal/adminhttp"
	"mfsd/internal/config"
	"mfsd/internal/diag"
	"mfsd/internal/mfs"
	"mfsd/internal/mfstcp"
	"mfsd/internal/osfiles"
	"mfsd/internal/version"
)

func main() {
	var configPath string
	var showVersion bool
	var logFile string

	flag.StringVar(&configPath, "config", filepath.Join("config", "config.yaml"), "Path to config file")
	flag.BoolVar(&showVersion, "version", false, "Print version information and exit")
	flag.StringVar(&logFile, "log-file", "", "Optional log file path, in addition to stdout")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get().String())
		return
	}

	if logFile != "" {
		if err := setupLogFile(logFile); err != nil {
			log.Printf("FATAL: log file %q: %v", logFile, err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("FATAL: load config %q: %v", configPath, err)
		os.Exit(1)
	}

	log.Printf("mfsd %s", version.Get().String())
	log.Printf("Listening on %s", cfg.Listen)
	log.Printf("Files dir: %s", cfg.FilesDir)

	if err := os.MkdirAll(cfg.FilesDir, 0o755); err != nil {
		log.Printf("FATAL: create files dir %q: %v", cfg.FilesDir, err)
		os.Exit(1)
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Printf("FATAL: listen %q failed: %v", cfg.Listen, err)
		os.Exit(1)
	}

	transport := mfstcp.New(ln, cfg.IOTimeout)
	hub := diag.NewHub(cfg.EventBuffer)

	srv := mfs.New(mfs.Config{
		Transport:  transport,
		PathBuf:    make([]byte, cfg.PathBufLen),
		DataBuf:    make([]byte, cfg.DataBufLen),
		MaxClients: cfg.MaxClients,
		MaxFiles:   cfg.MaxFiles,
		HardLimit:  cfg.HardLimit,
		TimerMs:    uint64(cfg.ClientTimeout.Milliseconds()),
		Observer:   hub,
	})

	dirSync, err := osfiles.NewDirSync(cfg.FilesDir, srv, cfg.DataBufLen)
	if err != nil {
		log.Printf("FATAL: watch %q: %v", cfg.FilesDir, err)
		os.Exit(1)
	}
	if err := dirSync.Start(); err != nil {
		log.Printf("FATAL: sync %q: %v", cfg.FilesDir, err)
		os.Exit(1)
	}

	if cfg.AdminListen != "" {
		go serveAdmin(cfg.AdminListen, hub, srv)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go runLoop(srv, done)

	<-stop
	log.Printf("shutting down")
	close(done)
	_ = dirSync.Close()
	_ = transport.Shutdown()
}

// runLoop drives the single-threaded MFS core: accept, then serve, once per
// tick, until done is closed. The tick interval trades dispatch latency for
// CPU use; 2ms keeps the server responsive without busy-spinning.
func runLoop(srv *mfs.Server, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			srv.AcceptClients()
			srv.ServeClients()
		}
	}
}

func serveAdmin(addr string, hub *diag.Hub, srv *mfs.Server) {
	log.Printf("Admin: http://%s/stats", addr)
	if err := http.ListenAndServe(addr, adminhttp.Handler(hub, srv)); err != nil {
		log.Printf("admin server: %v", err)
	}
}

func setupLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return nil
}
