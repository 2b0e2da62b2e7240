//go:build linux

package main

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// conn 一个已接受的客户端连接，只由事件循环所在的 goroutine 访问
type conn struct {
	fd  int
	id  string
	log zerolog.Logger

	in  []byte // 尚未凑成完整请求的字节
	out []byte // 尚未写出的响应字节

	writing    bool // 是否已注册 EPOLLOUT
	readDone   bool // 客户端已半关闭，不再读取
	closeAfter bool // 写完 out 后关闭连接
}

func newConn(fd int, remote string, log zerolog.Logger) *conn {
	id := uuid.NewString()
	return &conn{
		fd: fd,
		id: id,
		log: log.With().
			Str("conn", id).
			Int("fd", fd).
			Str("remote", remote).
			Logger(),
	}
}

// interest 根据当前状态计算 epoll 关注的事件
func (c *conn) interest() uint32 {
	var events uint32
	if !c.readDone {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if c.writing {
		events |= unix.EPOLLOUT
	}
	return events
}
