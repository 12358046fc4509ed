// Command nananiji writes integers as arithmetic expressions over the digits
// of a base numeral.
//
// Usage:
//
//	nananiji [flags] TARGET_NUM
//	nananiji -w -l hanshin -a          # build and store hanshin_a.bin
//	nananiji -r -l hanshin -a 2024     # answer from the stored generator
//	nananiji serve -r < requests.jsonl # answer JSON requests line by line
//	nananiji serve -r --http :8080     # answer them over HTTP
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
