// Command gazecursor moves the cursor where the eyes look.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/pointer"
)

func main() {
	var opts app.Options
	flag.StringVar(&opts.ConfigPath, "config", config.Path(), "path to config.toml")
	flag.StringVar(&opts.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flag.BoolVar(&opts.Headless, "headless", false, "run without the preview window")
	flag.BoolVar(&opts.Tray, "tray", false, "show a system tray menu (implies -headless)")
	flag.StringVar(&opts.Addr, "addr", "", "serve the status API on this address, e.g. 127.0.0.1:8740")
	flag.Parse()

	if err := app.Launch(pointer.ModeGaze, opts); err != nil {
		fmt.Fprintf(os.Stderr, "gazecursor: %v\n", err)
		os.Exit(1)
	}
}
