package main

import (
	"bytes"
	"strings"
)

// 头部区最大字节数，超过仍未见空行则视为异常连接
const maxHeaderBytes = 8 << 10

// Request 表示一个简单的 HTTP 请求（不依赖 net/http）
type Request struct {
	Method  string
	Path    string
	Version string
	Headers Header
}

// ParseRequest 将一段完整的请求头解析为 Request。
// 解析从不失败：请求行缺少的字段为空串，不含 ": " 的头部行被跳过。
func ParseRequest(buf []byte) *Request {
	req := &Request{Headers: make(Header)}

	text := string(buf)
	line, rest, _ := strings.Cut(text, "\n")

	fields := strings.Fields(line)
	if len(fields) > 0 {
		req.Method = fields[0]
	}
	if len(fields) > 1 {
		req.Path = fields[1]
	}
	if len(fields) > 2 {
		req.Version = fields[2]
	}

	// 读取请求头，直到空行或缓冲区结束
	for rest != "" {
		line, rest, _ = strings.Cut(rest, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		req.Headers.Set(key, value)
	}
	return req
}

// splitRequest 从缓冲区中切出第一个完整的请求头（含结尾空行）。
// 同时接受 CRLF 与裸 LF 的结尾；ok 为 false 表示还需要更多字节。
func splitRequest(buf []byte) (head, rest []byte, ok bool) {
	end := -1
	if i := bytes.Index(buf, []byte("\r\n\r\n")); i >= 0 {
		end = i + 4
	}
	if i := bytes.Index(buf, []byte("\n\n")); i >= 0 && (end < 0 || i+2 < end) {
		end = i + 2
	}
	if end < 0 {
		return nil, buf, false
	}
	return buf[:end], buf[end:], true
}

// wantsClose 判断客户端是否要求响应后关闭连接
func (r *Request) wantsClose() bool {
	return strings.EqualFold(r.Headers.Get("Connection"), "close")
}
