package main

import (
	"testing"
)

func constHandler(body string) HandlerFunc {
	return func(req *Request) *Response {
		return NewResponse(StatusOK, body)
	}
}

func get(path string) *Request {
	return &Request{Method: "GET", Path: path, Version: "HTTP/1.1", Headers: make(Header)}
}

func TestMuxFirstMatchWins(t *testing.T) {
	m := NewMux()
	m.Handle("/a", constHandler("short"))
	m.Handle("/a/b", constHandler("long"))

	// 更具体的 /a/b 注册在后，永远不会被选中
	expectEqual(t, "short", string(m.Serve(get("/a/b/c")).Body))
	expectEqual(t, "short", string(m.Serve(get("/a")).Body))

	m = NewMux()
	m.Handle("/a/b", constHandler("long"))
	m.Handle("/a", constHandler("short"))
	expectEqual(t, "long", string(m.Serve(get("/a/b/c")).Body))
	expectEqual(t, "short", string(m.Serve(get("/a/x")).Body))
}

func TestMuxNoMatch(t *testing.T) {
	m := NewMux()
	m.Handle("/echo/", constHandler("x"))
	for _, p := range []string{"", "/", "/ech", "echo/", "/ECHO/x"} {
		res := m.Serve(get(p))
		if res.Status != StatusNotFound {
			t.Errorf("%q: Got status %d, want 404", p, res.Status)
		}
		expectEqual(t, contentTypeText, res.ContentType)
		if len(res.Body) != 0 {
			t.Errorf("%q: Got body %q, want empty", p, res.Body)
		}
	}
}

func TestMuxRoutesPreserveOrder(t *testing.T) {
	m := NewMux()
	registerRoutes(m, t.TempDir())
	var prefixes []string
	for _, r := range m.routes {
		prefixes = append(prefixes, r.Prefix)
	}
	expect := []string{"/user-agent", "/files/", "/echo/", "/"}
	if len(prefixes) != len(expect) {
		t.Fatalf("Got routes %v, want %v", prefixes, expect)
	}
	for i := range expect {
		expectEqual(t, expect[i], prefixes[i])
	}
}
