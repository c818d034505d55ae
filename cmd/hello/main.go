package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ahrav/progress-tally/internal/app/fixtures"
	"github.com/ahrav/progress-tally/internal/domain/progress"
	"github.com/ahrav/progress-tally/pkg/common/logger"
)

func main() {
	log := logger.New(os.Stderr, logger.LevelInfo, "hello", nil)

	if err := run(os.Stdout); err != nil {
		log.Error(context.Background(), "hello", "err", err)
		os.Exit(1)
	}
}

// run greets, then prints the number of complete entries in a 101-entry
// generated map twice: once with an inline loop and once via CountMap.
func run(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Hello, world!"); err != nil {
		return err
	}

	inline := 0
	for _, s := range fixtures.Generate("a", 100) {
		if s == progress.StatusComplete {
			inline++
		}
	}
	if _, err := fmt.Fprintln(w, inline); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, progress.CountMap(fixtures.Generate("a", 100), progress.StatusComplete))
	return err
}
