package main

import "strings"

// Handler 路由处理者：每个请求产生恰好一个响应
type Handler interface {
	Serve(req *Request) *Response
}

// HandlerFunc 路由处理函数类型
type HandlerFunc func(req *Request) *Response

// Serve 调用 f(req)
func (f HandlerFunc) Serve(req *Request) *Response {
	return f(req)
}

// Route 一条路由：路径前缀 + 处理者，注册后不再修改
type Route struct {
	Prefix  string
	Handler Handler
}

// Mux 非 net/http 版本的极简路由器。
// 路由按注册顺序逐条做前缀匹配，第一条命中者胜出（不是最长匹配），
// 因此先注册的短前缀会遮住后注册的更具体的前缀。
type Mux struct {
	routes []Route
}

// NewMux 创建一个新的路由器
func NewMux() *Mux {
	return &Mux{}
}

// Handle 注册路由，只能在事件循环启动前调用
func (m *Mux) Handle(prefix string, handler Handler) {
	m.routes = append(m.routes, Route{Prefix: prefix, Handler: handler})
}

// HandleFunc 以函数形式注册路由
func (m *Mux) HandleFunc(prefix string, f func(req *Request) *Response) {
	m.Handle(prefix, HandlerFunc(f))
}

// Serve 根据请求路径分发到对应的 Handler
// 如果没有匹配的路由，则返回 404
func (m *Mux) Serve(req *Request) *Response {
	for _, r := range m.routes {
		if strings.HasPrefix(req.Path, r.Prefix) {
			return r.Handler.Serve(req)
		}
	}
	return NotFound()
}
