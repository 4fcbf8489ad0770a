package service

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// fakeBofhd is an XML-RPC server answering with canned responses per method.
type fakeBofhd struct {
	t      *testing.T
	server *httptest.Server

	mutex    sync.Mutex
	handlers map[string]func(params []interface{}) string
	calls    []receivedCall
	status   int
}

type receivedCall struct {
	Method string
	Params []interface{}
}

func newFakeBofhd(t *testing.T) *fakeBofhd {
	t.Helper()
	f := &fakeBofhd{t: t, handlers: make(map[string]func([]interface{}) string)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBofhd) URL() string {
	return f.server.URL
}

// handle answers method with the result of fn.
func (f *fakeBofhd) handle(method string, fn func(params []interface{}) string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.handlers[method] = fn
}

// reply answers method with a fixed response body.
func (f *fakeBofhd) reply(method, body string) {
	f.handle(method, func([]interface{}) string { return body })
}

func (f *fakeBofhd) failWithStatus(status int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.status = status
}

func (f *fakeBofhd) received() []receivedCall {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]receivedCall(nil), f.calls...)
}

func (f *fakeBofhd) receivedTo(method string) []receivedCall {
	var out []receivedCall
	for _, call := range f.received() {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (f *fakeBofhd) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var call xmlMethodCall
	if err := xml.Unmarshal(body, &call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := make([]interface{}, len(call.Params))
	for i, p := range call.Params {
		params[i] = p.Value.native()
	}

	f.mutex.Lock()
	f.calls = append(f.calls, receivedCall{Method: call.Name, Params: params})
	status := f.status
	handler := f.handlers[call.Name]
	f.mutex.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if handler == nil {
		f.t.Errorf("unexpected call to %s", call.Name)
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, faultResponse(1, "no such method "+call.Name))
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = io.WriteString(w, handler(params))
}

type xmlMethodCall struct {
	Name   string     `xml:"methodName"`
	Params []xmlParam `xml:"params>param"`
}

type xmlParam struct {
	Value xmlValue `xml:"value"`
}

type xmlValue struct {
	String *string   `xml:"string"`
	Int    *string   `xml:"int"`
	Array  *xmlArray `xml:"array"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

// native converts a request value to a string or a []interface{} of strings.
func (v xmlValue) native() interface{} {
	if v.Array != nil {
		items := make([]interface{}, len(v.Array.Values))
		for i, item := range v.Array.Values {
			items[i] = item.native()
		}
		return items
	}
	if v.String != nil {
		return *v.String
	}
	if v.Int != nil {
		return *v.Int
	}
	return nil
}

// Response builders.

func response(value string) string {
	return `<?xml version="1.0"?><methodResponse><params><param>` + value + `</param></params></methodResponse>`
}

func faultResponse(code int, text string) string {
	return `<?xml version="1.0"?><methodResponse><fault><value><struct>` +
		member("faultCode", xInt(code)) +
		member("faultString", xString(text)) +
		`</struct></value></fault></methodResponse>`
}

func cerebrumFault(class, message string) string {
	return faultResponse(1, faultPrefix+class+":"+message)
}

func xString(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return "<value><string>" + buf.String() + "</string></value>"
}

func xInt(i int) string {
	return fmt.Sprintf("<value><int>%d</int></value>", i)
}

func xBool(b bool) string {
	if b {
		return "<value><boolean>1</boolean></value>"
	}
	return "<value><boolean>0</boolean></value>"
}

func xNil() string {
	return "<value><nil/></value>"
}

func xArray(values ...string) string {
	return "<value><array><data>" + strings.Join(values, "") + "</data></array></value>"
}

func member(name, value string) string {
	return "<member><name>" + name + "</name>" + value + "</member>"
}

// xStruct builds a struct from name/value pairs.
func xStruct(pairs ...string) string {
	var b strings.Builder
	b.WriteString("<value><struct>")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(member(pairs[i], pairs[i+1]))
	}
	b.WriteString("</struct></value>")
	return b.String()
}

// xMap builds a struct from a map, in key order.
func xMap(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, fields[k])
	}
	return xStruct(pairs...)
}
