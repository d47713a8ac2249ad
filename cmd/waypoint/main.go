// Command waypoint inspects and serves declarative route tables.
//
//	waypoint routes routes.yaml
//	waypoint resolve routes.yaml users/42 "users/42+help@aside"
//	waypoint serve routes.yaml --journal nav.db
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
