package main

import "strconv"

// 行结束符
const CRLF = "\r\n"

const (
	StatusOK       = 200
	StatusNotFound = 404
)

const (
	contentTypeText   = "text/plain"
	contentTypeBinary = "application/octet-stream"
)

var statusText = map[int]string{
	StatusOK:       "OK",
	StatusNotFound: "Not Found",
}

// Response 表示一个待发送的响应。
// 头部固定为 Content-Type、Content-Length 两项，顺序不变，不附加其他头部。
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// NewResponse 创建一个 text/plain 响应
func NewResponse(status int, body string) *Response {
	return &Response{
		Status:      status,
		ContentType: contentTypeText,
		Body:        []byte(body),
	}
}

// NotFound 返回空 body 的 404 响应
func NotFound() *Response {
	return NewResponse(StatusNotFound, "")
}

// AppendTo 将响应序列化并追加到 b 之后
func (r *Response) AppendTo(b []byte) []byte {
	b = append(b, "HTTP/1.1 "...)
	b = strconv.AppendInt(b, int64(r.Status), 10)
	b = append(b, ' ')
	b = append(b, statusText[r.Status]...)
	b = append(b, CRLF...)
	b = append(b, "Content-Type: "...)
	b = append(b, r.ContentType...)
	b = append(b, CRLF...)
	b = append(b, "Content-Length: "...)
	b = strconv.AppendInt(b, int64(len(r.Body)), 10)
	b = append(b, CRLF...)
	b = append(b, CRLF...)
	return append(b, r.Body...)
}
