package main

import "strings"

// Header 请求头，键统一转为小写，因此查找大小写不敏感
// 与 http.Header 不同，这里不是 map[string][]string：同名头部只保留最后一次出现的值
type Header map[string]string

// Set 写入一个头部，同名覆盖
func (h Header) Set(key, value string) {
	h[strings.ToLower(key)] = value
}

// Get 读取一个头部，不存在时返回空串
func (h Header) Get(key string) string {
	return h[strings.ToLower(key)]
}

// Lookup 与 Get 相同，但会报告该头部是否存在
func (h Header) Lookup(key string) (string, bool) {
	v, ok := h[strings.ToLower(key)]
	return v, ok
}
