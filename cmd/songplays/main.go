package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/songplays/internal/cli"
	"github.com/vvka-141/songplays/pkg/songplays"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(songplays.ExitPanic)
		}
	}()

	if os.Getenv("SONGPLAYS_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(songplays.ExitCodeForError(err))
	}
}
