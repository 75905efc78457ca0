package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// logger receives driver diagnostics. It discards everything unless
// --verbose is set.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05.000",
	}))
}
