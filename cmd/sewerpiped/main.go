// Command sewerpiped runs the broker as a standalone daemon: it owns
// the listening socket, the readiness poller, and the event loop that
// drives broker.Broker to completion. See run for the single
// iteration this loop repeats.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sewerpiped/broker/broker"
	"github.com/sewerpiped/broker/network"
	"github.com/sewerpiped/broker/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":1883", "address to listen on")
	daemonize := flag.Bool("d", false, "daemonize (accepted for CLI parity; no-op — Go binaries do not fork)")
	verbose := flag.Bool("v", false, "enable verbose (debug) logging")
	flag.Parse()

	if *daemonize {
		fmt.Fprintln(os.Stderr, "sewerpiped: -d is accepted for CLI parity but otherwise ignored")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := logger.New(level, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// connID is a process-wide counter used only to label accepted
// sockets for logging; it has no protocol meaning.
var connID atomic.Uint64

// run owns the event loop: accept, drain readable sessions, then
// timers, in the order broker.Tick and broker.Dispatch expect —
// accept first so a burst of new connections doesn't starve timer
// processing, then reads, then the periodic sweep. It returns nil on
// a clean shutdown (ctx canceled) and an error only for a fatal
// startup failure.
func run(ctx context.Context, addr string, log *slog.Logger) error {
	ln, err := network.Listen(addr, &network.ConnectionConfig{})
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	defer ln.Close()

	poller, err := network.NewPoller(network.DefaultPollerConfig())
	if err != nil {
		return fmt.Errorf("new poller: %w", err)
	}
	defer poller.Close()

	b := broker.New(log)
	log.Info("sewerpiped listening", "addr", ln.Addr().String())

	slots := make(map[*network.Connection]int, broker.MaxClients)
	readBuf := make([]byte, 65536)

	const waitTimeout = 1 * time.Second
	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown requested, exiting after current iteration")
			return nil
		default:
		}

		acceptReady(ln, b, poller, slots, log)

		events, err := poller.Wait(waitTimeout)
		if err != nil {
			log.Warn("poller wait failed", "err", err)
			continue
		}

		now := time.Now()
		for _, ev := range events {
			id, ok := slots[ev.Conn]
			if !ok {
				continue
			}
			if ev.Error != nil {
				destroy(b, poller, slots, ev.Conn, id, now)
				continue
			}

			n, rerr := ev.Conn.Read(readBuf)
			if n > 0 && !b.Dispatch(id, readBuf[:n], now) {
				destroy(b, poller, slots, ev.Conn, id, now)
				continue
			}
			if rerr != nil {
				destroy(b, poller, slots, ev.Conn, id, now)
			}
		}

		b.Tick(time.Now())
	}
}

// acceptReady drains every connection already queued on the listening
// socket without blocking the loop: it sets a deadline one millisecond
// ahead so Accept takes a connection that is already pending and
// otherwise gives up once that millisecond has passed, standing in for
// a single multiplexed readiness set that would otherwise include the
// listening descriptor alongside every session.
func acceptReady(ln *network.Listener, b *broker.Broker, poller network.Poller, slots map[*network.Connection]int, log *slog.Logger) {
	for {
		_ = ln.SetDeadline(time.Now().Add(time.Millisecond))
		id := connID.Add(1)
		conn, err := ln.Accept(fmt.Sprintf("conn-%d", id))
		if err != nil {
			return
		}

		now := time.Now()
		slot, ok := b.Accept(conn, now)
		if !ok {
			log.Warn("session table full, rejecting connection", "remote", conn.RemoteAddr())
			_ = conn.Close()
			continue
		}
		if err := poller.Add(conn); err != nil {
			log.Warn("poller add failed, rejecting connection", "err", err)
			b.Destroy(slot, false, now)
			continue
		}
		slots[conn] = slot
	}
}

func destroy(b *broker.Broker, poller network.Poller, slots map[*network.Connection]int, conn *network.Connection, id int, now time.Time) {
	_ = poller.Remove(conn)
	delete(slots, conn)
	b.Destroy(id, true, now)
}
