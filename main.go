package main

import (
	"fmt"

	"github.com/goto/optimus-concat/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	// initiate default logger
	l := logger.NewDefaultLogger()

	// parse flags
	var files []string
	var urls []string
	var envs []string
	pflag.StringArrayVar(&files, "file", []string{}, "file source (can be used multiple times)")
	pflag.StringArrayVar(&urls, "url", []string{}, "http source (can be used multiple times)")
	pflag.StringArrayVar(&envs, "env", []string{}, "pass env as argument (can be used multiple times)")
	pflag.Parse()

	// run concatenates all given sources into a single stdout stream.
	// It also handles graceful shutdown by listening to os signals.
	if errs := run(files, urls, envs); len(errs) > 0 {
		for _, err := range errs {
			l.Error(fmt.Sprintf("error: %s", err.Error()))
			fmt.Printf("error: %+v\n", err)
		}
	}
}
