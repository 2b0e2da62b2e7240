package main

import (
	"flag"
	"fmt"
	"io"
)

// Config 服务器启动参数
type Config struct {
	Directory string // --directory 传入的目录，/files/ 路由的根
	Host      string
	Port      int
	Backlog   int
	LogLevel  string
	Verbose   bool
}

// parseConfig 解析命令行参数
// 示例：./your_program.sh --directory /tmp/data/...
func parseConfig(args []string, output io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("http-server", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Directory, "directory", "", "directory served under /files/")
	fs.StringVar(&cfg.Host, "host", "0.0.0.0", "IPv4 address to listen on")
	fs.IntVar(&cfg.Port, "port", 4221, "port number")
	fs.IntVar(&cfg.Backlog, "backlog", 5, "listen backlog")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "shortcut for --log-level debug")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Backlog <= 0 {
		return nil, fmt.Errorf("invalid backlog %d", cfg.Backlog)
	}
	return cfg, nil
}
