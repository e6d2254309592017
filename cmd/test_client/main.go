package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Avi18971911/Herald/pkg/client"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type options struct {
	Url      string        `short:"u" long:"url" default:"http://localhost:8080" description:"Base URL of the Herald server"`
	Scenario string        `short:"s" long:"scenario" default:"all" choice:"get" choice:"error" choice:"post" choice:"all" description:"Scenario to run"`
	Users    int           `short:"n" long:"users" default:"1" description:"Number of concurrent virtual users"`
	Timeout  time.Duration `long:"timeout" default:"10s" description:"Timeout of a single request"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: opts.Timeout}
	newClient := func(user int) *client.TestClient {
		prefix := ""
		if opts.Users > 1 {
			prefix = fmt.Sprintf("user-%d", user)
		}
		return client.NewTestClient(opts.Url, httpClient, client.NewPanel(prefix, os.Stdout), logger)
	}

	fmt.Printf("Running scenario %q against %s with %d user(s)\n", opts.Scenario, opts.Url, opts.Users)
	if _, err := client.RunUsers(ctx, opts.Users, client.Scenario(opts.Scenario), newClient); err != nil {
		logger.Fatal("Test run failed", zap.Error(err))
	}
	fmt.Println("Test run completed.")
}
