package provider

import (
	"context"
	"mime"
	"strings"

	"github.com/goccy/go-json"
)

// Request carries the options of a fetch. URL is filled in by the provider with
// the resolved endpoint.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   []byte
}

// Response is the raw result of a fetch.
type Response struct {
	StatusCode int
	// Status is the status text without the code, e.g. "Not Found".
	Status      string
	ContentType string
	Body        []byte
}

// OK reports whether the response signals success.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher performs the network (or storage) call of a pass.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req *Request) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// BodyKind is the category a response body is decoded as.
type BodyKind int

const (
	BodyBinary BodyKind = iota
	BodyJSON
	BodyText
)

// ClassifyContentType maps a Content-Type header to a body category. Parameters
// such as charset are ignored.
func ClassifyContentType(contentType string) BodyKind {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return BodyBinary
	}
	switch {
	case media == "application/json", media == "text/json", strings.HasSuffix(media, "+json"):
		return BodyJSON
	case media == "text/plain", media == "text/html":
		return BodyText
	default:
		return BodyBinary
	}
}

// DecodeBody decodes a response body by content type: JSON yields the generic
// tree (numbers as float64), text yields a string and anything else the raw
// bytes.
func DecodeBody(resp *Response) (any, error) {
	switch ClassifyContentType(resp.ContentType) {
	case BodyJSON:
		var data any
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, err
		}
		return data, nil
	case BodyText:
		return string(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// ResolveURL joins origin and endpoint, inserting a separator when neither side
// provides one and making sure the path part starts with "/".
func ResolveURL(origin, endpoint string) string {
	url := origin + endpoint
	if origin != "" && endpoint != "" && !strings.HasSuffix(origin, "/") && !strings.HasPrefix(endpoint, "/") {
		url = origin + "/" + endpoint
	}
	if i := strings.Index(url, "://"); i >= 0 {
		rest := url[i+3:]
		if !strings.Contains(rest, "/") {
			return url + "/"
		}
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return url
}
