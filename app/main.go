//go:build linux

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 启动服务器并返回进程退出码：启动期失败返回 1
func run(args []string) int {
	cfg, err := parseConfig(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := newLogger(os.Stderr, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", cfg.LogLevel, err)
		return 1
	}

	// 初始化并注册路由
	mux := NewMux()
	registerRoutes(mux, cfg.Directory)

	r, err := NewReactor(cfg, mux, log)
	if err != nil {
		log.Error().Err(err).Msg("服务器启动失败")
		return 1
	}

	// 收到 SIGINT/SIGTERM 时停止事件循环
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go stopOnSignal(r, sigc, log)

	if err := r.Run(); err != nil && !errors.Is(err, ErrReactorClosed) {
		log.Error().Err(err).Msg("event loop failed")
		return 1
	}
	return 0
}

func stopOnSignal(r *Reactor, sigc <-chan os.Signal, log zerolog.Logger) {
	sig := <-sigc
	log.Info().Str("signal", sig.String()).Msg("shutting down...")
	if err := r.Close(); err != nil {
		log.Warn().Err(err).Msg("stop reactor")
	}
}
