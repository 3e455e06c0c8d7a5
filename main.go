package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/DavidGamba/go-getoptions"

	"github.com/gastownhall/coi-serve/internal/server"
)

const defaultPort = 8080

const defaultBanner = "coi-serve: cross-origin isolated static server (SharedArrayBuffer enabled)"

func main() {
	opt := getoptions.New()
	opt.Self("coi-serve", "Serve static files with the COOP/COEP headers required for SharedArrayBuffer and multi-threaded wasm.")
	opt.HelpSynopsisArg("[<port>]", "")
	help := opt.Bool("help", false, opt.Alias("h"))
	dir := opt.String("dir", ".", opt.Description("directory to serve"))
	banner := opt.String("banner", defaultBanner, opt.Description("startup banner"))
	liveReload := opt.Bool("live-reload", false, opt.Description("broadcast reload events on /livereload when served files change"))

	remaining, err := opt.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *help {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}

	port := defaultPort
	if len(remaining) > 0 {
		port, err = strconv.Atoi(remaining[0])
		if err != nil || port < 1 || port > 65535 {
			fmt.Fprintf(os.Stderr, "invalid port %q\n", remaining[0])
			os.Exit(1)
		}
	}

	s := server.New(server.Config{
		Port:       port,
		Dir:        *dir,
		Banner:     *banner,
		LiveReload: *liveReload,
	})
	if err := s.Start(); err != nil {
		log.Fatal(err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	s.Stop()
}
