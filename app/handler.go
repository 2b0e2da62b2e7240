package main

import (
	"os"
	"path/filepath"
	"strings"
)

// registerRoutes 注册所有路由到 Mux，顺序即优先级
func registerRoutes(m *Mux, dir string) {
	// /user-agent
	m.HandleFunc("/user-agent", userAgentHandler)
	// /files/*
	m.Handle("/files/", &filesHandler{prefix: "/files/", dir: dir})
	// /echo/*
	m.HandleFunc("/echo/", echoHandler("/echo/"))
	// 根路径 "/"，必须最后注册，否则会遮住其他路由
	m.HandleFunc("/", rootHandler)
}

// 根路径 Handler：只有 "/" 本身返回 200，其余一律 404，均无 body
func rootHandler(req *Request) *Response {
	if req.Path != "/" {
		return NotFound()
	}
	return NewResponse(StatusOK, "")
}

// /echo/<text> Handler：原样返回前缀之后的部分，不做解码
func echoHandler(prefix string) HandlerFunc {
	return func(req *Request) *Response {
		return NewResponse(StatusOK, strings.TrimPrefix(req.Path, prefix))
	}
}

// /user-agent Handler
func userAgentHandler(req *Request) *Response {
	userAgent, ok := req.Headers.Lookup("User-Agent")
	if !ok {
		userAgent = "unknown"
	}
	return NewResponse(StatusOK, userAgent)
}

// /files/* Handler：从 --directory 指定的目录读取文件
type filesHandler struct {
	prefix string
	dir    string
}

func (h *filesHandler) Serve(req *Request) *Response {
	name := strings.TrimPrefix(req.Path, h.prefix)
	filePath, ok := h.resolve(name)
	if !ok {
		return NotFound()
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return NotFound()
	}
	contentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return NotFound()
	}
	return &Response{
		Status:      StatusOK,
		ContentType: contentTypeBinary,
		Body:        contentBytes,
	}
}

// resolve 拼接文件路径，拒绝跳出根目录的名字（如 "../x"）
func (h *filesHandler) resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	base := filepath.Clean(h.dir)
	full := filepath.Join(base, filepath.FromSlash(name))
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
