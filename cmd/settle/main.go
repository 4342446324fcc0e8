package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/richardliu001/payments-engine/internal/csvio"
	"github.com/richardliu001/payments-engine/internal/engine"
	"github.com/richardliu001/payments-engine/internal/logger"
)

// Exit codes per the outcome contract: exactly one of snapshot on
// stdout, a validation diagnostic, or a source diagnostic.
const (
	exitOK         = 0
	exitValidation = 1
	exitSource     = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		return exitSource
	}

	log, err := logger.NewCLILogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return exitSource
	}
	defer log.Sync()

	records, err := csvio.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitSource
	}

	eng := engine.New(engine.NewLedger(), engine.NewAccountStore(), log)
	if err := eng.Run(records); err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, verr.Error())
			return exitValidation
		}
		fmt.Fprintln(os.Stderr, "a generic error has occurred")
		return exitValidation
	}

	if err := csvio.Write(os.Stdout, eng.Accounts()); err != nil {
		fmt.Fprintf(os.Stderr, "write snapshot: %v\n", err)
		return exitSource
	}
	return exitOK
}
