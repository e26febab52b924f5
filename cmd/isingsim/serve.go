package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rrtucci/ising-dbnet/network"
	"github.com/rrtucci/ising-dbnet/stream"
)

// runServe streams a run over WebSocket at /ws. Without -exit the server
// keeps running after the simulation until the context is canceled.
func runServe(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	rf := addRunFlags(fs)
	addr := fs.String("addr", "127.0.0.1:8080", "listen address")
	delay := fs.Duration("delay", 250*time.Millisecond, "pause after each step")
	wait := fs.Duration("wait", 0, "wait for the first client up to this long before running")
	exit := fs.Bool("exit", false, "stop the server when the run ends")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := rf.load()
	if err != nil {
		return err
	}

	hub := stream.NewHub()
	go hub.Run()
	defer hub.Stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", stream.NewHandler(hub))
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("[isingsim] streaming on ws://%s/ws", ln.Addr())
	fmt.Fprintf(out, "addr=%s\n", ln.Addr())

	if *wait > 0 {
		waitForClient(ctx, hub, *wait)
	}

	opts := []network.Option{network.WithOnStep(hub.OnStep())}
	if rf.logSteps() {
		opts = append(opts, network.WithOnStep(logStep))
	}
	if *delay > 0 {
		opts = append(opts, network.WithOnStep(func(network.StepStats) {
			select {
			case <-time.After(*delay):
			case <-ctx.Done():
			}
		}))
	}
	sim, err := rf.build(cfg, opts...)
	if err != nil {
		return err
	}
	res, err := sim.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := hub.BroadcastDone(stream.DoneData{Reason: res.Reason.String(), StepsRun: res.StepsRun}); err != nil {
		return err
	}
	fmt.Fprintf(out, "reason=%s steps=%d\n", res.Reason, res.StepsRun)

	if *exit {
		// Let the hub flush the final event.
		time.Sleep(50 * time.Millisecond)
		return nil
	}
	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func waitForClient(ctx context.Context, hub *stream.Hub, limit time.Duration) {
	deadline := time.NewTimer(limit)
	defer deadline.Stop()
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for hub.ClientCount() == 0 {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}
