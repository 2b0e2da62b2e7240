//go:build linux

package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	maxEvents      = 10   // 每次唤醒最多处理的事件数
	readBufferSize = 4096 // 单次读取上限
)

// ErrReactorClosed Close 之后 Run 返回此错误
var ErrReactorClosed = errors.New("reactor closed")

// Reactor 单线程事件循环：一个 epoll 实例管理监听 socket 与全部客户端连接
type Reactor struct {
	listenFD int
	epollFD  int
	wakeFD   int // eventfd，用于从其他 goroutine 唤醒并停止循环
	addr     *net.TCPAddr

	mux   *Mux
	conns map[int]*conn
	log   zerolog.Logger

	mu      sync.Mutex // 保护 closing、stopped 与 wakeFD 的写入
	closing bool
	stopped bool
}

// NewReactor 创建监听 socket 与 epoll 实例，任何一步失败都是启动期致命错误
func NewReactor(cfg *Config, mux *Mux, log zerolog.Logger) (_ *Reactor, err error) {
	ip := net.ParseIP(cfg.Host).To4()
	if ip == nil {
		return nil, fmt.Errorf("invalid IPv4 host %q", cfg.Host)
	}

	r := &Reactor{
		listenFD: -1,
		epollFD:  -1,
		wakeFD:   -1,
		mux:      mux,
		conns:    make(map[int]*conn),
		log:      log,
	}
	defer func() {
		if err != nil {
			r.closeFDs()
		}
	}()

	if r.listenFD, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0); err != nil {
		return nil, fmt.Errorf("create server socket: %w", err)
	}
	// 测试程序会频繁重启服务器，设置 SO_REUSEADDR 避免 'Address already in use'
	if err = unix.SetsockoptInt(r.listenFD, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	sa := &unix.SockaddrInet4{Port: cfg.Port}
	copy(sa.Addr[:], ip)
	if err = unix.Bind(r.listenFD, sa); err != nil {
		return nil, fmt.Errorf("bind to %s: %w", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), err)
	}
	if err = unix.Listen(r.listenFD, cfg.Backlog); err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	bound, err := unix.Getsockname(r.listenFD)
	if err != nil {
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	r.addr = sockaddrToTCP(bound)

	if r.epollFD, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC); err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	if err = r.register(r.listenFD, unix.EPOLLIN); err != nil {
		return nil, fmt.Errorf("register listener: %w", err)
	}
	if r.wakeFD, err = unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC); err != nil {
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	if err = r.register(r.wakeFD, unix.EPOLLIN); err != nil {
		return nil, fmt.Errorf("register eventfd: %w", err)
	}
	return r, nil
}

// Addr 返回实际绑定的地址（端口为 0 时由内核分配）
func (r *Reactor) Addr() *net.TCPAddr {
	return r.addr
}

// Close 请求事件循环停止，可在任意 goroutine 调用
func (r *Reactor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closing || r.stopped {
		return nil
	}
	r.closing = true
	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	if _, err := unix.Write(r.wakeFD, one[:]); err != nil {
		return fmt.Errorf("wake reactor: %w", err)
	}
	return nil
}

// Run 进入事件循环，阻塞直到 Close 被调用
func (r *Reactor) Run() error {
	r.log.Info().Str("addr", r.addr.String()).Msg("listening")

	events := make([]unix.EpollEvent, maxEvents)
	for {
		n, err := unix.EpollWait(r.epollFD, events, -1)
		if err != nil {
			// epoll 可能被信号打断
			if errors.Is(err, unix.EINTR) {
				continue
			}
			r.shutdown()
			return fmt.Errorf("epoll wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)
			switch fd {
			case r.wakeFD:
				r.shutdown()
				return ErrReactorClosed
			case r.listenFD:
				r.accept()
			default:
				r.serve(fd, ev.Events)
			}
		}
	}
}

// accept 每个就绪事件只接受一个连接；水平触发下剩余的连接会在下一轮再次上报
func (r *Reactor) accept() {
	fd, sa, err := unix.Accept4(r.listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return
		}
		r.log.Warn().Err(err).Msg("accept failed")
		return
	}

	remote := "?"
	if addr := sockaddrToTCP(sa); addr != nil {
		remote = addr.String()
	}
	c := newConn(fd, remote, r.log)
	if err := r.register(fd, c.interest()); err != nil {
		c.log.Warn().Err(err).Msg("register connection failed")
		unix.Close(fd)
		return
	}
	r.conns[fd] = c
	c.log.Info().Msg("client connected")
}

// serve 处理客户端连接上的就绪事件
func (r *Reactor) serve(fd int, events uint32) {
	c, ok := r.conns[fd]
	if !ok {
		return
	}
	if events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		r.closeConn(c, "hangup")
		return
	}
	if events&unix.EPOLLOUT != 0 {
		if !r.flush(c) {
			return
		}
	}
	if events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
		r.read(c)
	}
}

// read 执行一次有界读取，并处理缓冲区中所有已完整的请求
func (r *Reactor) read(c *conn) {
	var buf [readBufferSize]byte
	n, err := unix.Read(c.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return
		}
		c.log.Debug().Err(err).Msg("read failed")
		r.closeConn(c, "read error")
		return
	}
	if n <= 0 {
		if len(c.out) == 0 {
			r.closeConn(c, "client disconnected")
			return
		}
		// 客户端半关闭：停止读取，写完剩余响应后再关闭
		c.readDone = true
		c.closeAfter = true
		c.in = nil
		if err := r.modify(c.fd, c.interest()); err != nil {
			c.log.Warn().Err(err).Msg("drop read interest failed")
			r.closeConn(c, "epoll modify error")
		}
		return
	}
	if c.closeAfter {
		// 已决定关闭，后续字节直接丢弃
		return
	}
	c.in = append(c.in, buf[:n]...)

	for !c.closeAfter {
		head, rest, ok := splitRequest(c.in)
		if !ok {
			break
		}
		req := ParseRequest(head)
		c.in = rest
		r.dispatch(c, req)
	}
	if len(c.in) > maxHeaderBytes {
		c.log.Warn().Int("buffered", len(c.in)).Msg("request header too large")
		r.closeConn(c, "header too large")
		return
	}
	if c.in != nil && len(c.in) == 0 {
		c.in = nil
	}
	r.flush(c)
}

// dispatch 只有 GET 会被分发，其他方法不回任何响应
func (r *Reactor) dispatch(c *conn, req *Request) {
	if req.wantsClose() {
		c.closeAfter = true
		c.in = nil
	}
	if req.Method != "GET" {
		c.log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("ignored non-GET request")
		return
	}
	resp := r.mux.Serve(req)
	c.log.Debug().
		Str("path", req.Path).
		Int("status", resp.Status).
		Int("bytes", len(resp.Body)).
		Msg("dispatched")
	c.out = resp.AppendTo(c.out)
}

// flush 尽量写出 out；遇到 EAGAIN 时注册 EPOLLOUT 等待下次可写。
// 返回 false 表示连接已被关闭。
func (r *Reactor) flush(c *conn) bool {
	for len(c.out) > 0 {
		n, err := unix.Write(c.fd, c.out)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				if !c.writing {
					c.writing = true
					if err := r.modify(c.fd, c.interest()); err != nil {
						c.log.Warn().Err(err).Msg("arm write interest failed")
						r.closeConn(c, "epoll modify error")
						return false
					}
				}
				return true
			}
			c.log.Warn().Err(err).Int("pending", len(c.out)).Msg("write failed")
			r.closeConn(c, "write error")
			return false
		}
		c.out = c.out[n:]
	}
	c.out = nil

	if c.closeAfter {
		r.closeConn(c, "connection: close")
		return false
	}
	if c.writing {
		c.writing = false
		if err := r.modify(c.fd, c.interest()); err != nil {
			c.log.Warn().Err(err).Msg("disarm write interest failed")
		}
	}
	return true
}

func (r *Reactor) closeConn(c *conn, reason string) {
	// 注销失败不影响关闭
	_ = unix.EpollCtl(r.epollFD, unix.EPOLL_CTL_DEL, c.fd, nil)
	unix.Close(c.fd)
	delete(r.conns, c.fd)
	c.log.Info().Str("reason", reason).Msg("connection closed")
}

func (r *Reactor) shutdown() {
	// 先标记 stopped，之后的 Close 不会再写即将关闭的 eventfd
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	for _, c := range r.conns {
		r.closeConn(c, "shutdown")
	}
	r.closeFDs()
	r.log.Info().Msg("reactor stopped")
}

// closeFDs 关闭监听 socket、epoll 与 eventfd；这些字段构造后不再改写
func (r *Reactor) closeFDs() {
	for _, fd := range []int{r.listenFD, r.epollFD, r.wakeFD} {
		if fd >= 0 {
			unix.Close(fd)
		}
	}
}

func (r *Reactor) register(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(r.epollFD, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (r *Reactor) modify(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(r.epollFD, unix.EPOLL_CTL_MOD, fd, &ev)
}

func sockaddrToTCP(sa unix.Sockaddr) *net.TCPAddr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IPv4(v.Addr[0], v.Addr[1], v.Addr[2], v.Addr[3]), Port: v.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	}
	return nil
}
