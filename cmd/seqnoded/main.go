package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"xdao.co/seqnet/config"
	"xdao.co/seqnet/dispatch"
	"xdao.co/seqnet/engine"
	"xdao.co/seqnet/telemetry"
	"xdao.co/seqnet/transport/grpcseq"
)

func main() {
	n, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fs := flag.NewFlagSet("seqnoded", flag.ExitOnError)
	n.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])
	if err := n.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := initLogger(os.Stdout, n.LogFormat, n.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, n, logger); err != nil {
		level.Error(logger).Log("msg", "seqnoded stopped", "err", err)
		os.Exit(1)
	}
}

// initLogger initializes a gokit-logger set
// to the according log level supplied via flag.
func initLogger(w io.Writer, format, loglevel string) log.Logger {
	var logger log.Logger
	if format == "logfmt" {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	}
	logger = log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
	)

	switch strings.ToLower(loglevel) {
	case "debug":
		logger = level.NewFilter(logger, level.AllowDebug())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	default:
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	return logger
}

func run(ctx context.Context, n config.Node, logger log.Logger) error {
	shutdown, err := telemetry.Setup(ctx, "seqnoded", n.OTelEndpoint, n.OTelEnabled)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			level.Warn(logger).Log("msg", "failed to flush traces", "err", err)
		}
	}()

	sc, err := n.StoreSpec()
	if err != nil {
		return err
	}
	store, err := sc.Open()
	if err != nil {
		return err
	}
	eng, err := engine.New(store)
	if err != nil {
		return err
	}
	prefix, err := n.RoutingPrefix()
	if err != nil {
		return err
	}
	restored, err := restoreSnapshot(ctx, eng, n.Snapshot)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	if restored {
		level.Info(logger).Log("msg", "snapshot restored", "path", n.Snapshot, "sequences", eng.Len())
	}

	m := newNodeMetrics(n.MetricsAddr != "")
	var svc dispatch.Service = dispatch.NewHandler(prefix, eng, eng)
	svc = dispatch.NewMetricsService(svc, m.Requests, m.Latency)
	svc = dispatch.NewTracingService(svc, telemetry.Tracer())
	svc = dispatch.NewLoggingService(svc, log.With(logger, "component", "dispatch"))

	lis, err := net.Listen("tcp", n.ListenAddr)
	if err != nil {
		return err
	}

	opts := []grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}
	if n.MaxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(n.MaxMsgBytes), grpc.MaxSendMsgSize(n.MaxMsgBytes))
	}
	srv := grpc.NewServer(opts...)
	grpcseq.RegisterSequenceServer(srv, &grpcseq.Server{Service: svc})

	go runPromHTTP(logger, n.MetricsAddr)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(lis) }()

	level.Info(logger).Log(
		"msg", "seqnoded listening",
		"addr", lis.Addr().String(),
		"prefix", prefix,
		"backends", len(sc.Backends),
	)

	select {
	case <-ctx.Done():
		level.Info(logger).Log("msg", "shutting down")
		srv.GracefulStop()
		if err := writeSnapshot(context.Background(), eng, n.Snapshot); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		return nil
	case err := <-errc:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

func runPromHTTP(logger log.Logger, addr string) {
	if addr == "" {
		level.Debug(logger).Log("msg", "prometheus addr is empty, not exposing prometheus metrics")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler())

	level.Info(logger).Log("msg", "prometheus handler listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		level.Warn(logger).Log("msg", "failed to serve prometheus metrics", "err", err)
	}
}
