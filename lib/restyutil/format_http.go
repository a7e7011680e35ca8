package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

// formatHeaders writes one "Key: Value" line per value, keys sorted so two dumps
// of the same menu page diff cleanly.
func formatHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
}

// requestBody replays the body the request was sent with. Menu sources are
// mostly fetched with GET, where there is either no GetBody or it yields nothing.
func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<request body unavailable: %v>", err)
	}
	if body == nil || body == http.NoBody {
		return ""
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<request body unreadable: %v>", err)
	}
	return string(raw)
}

func writeSection(out *strings.Builder, title, startLine string, headers http.Header, body string) {
	fmt.Fprintf(out, "== %s ==\n%s\n", title, startLine)
	formatHeaders(out, headers)
	out.WriteString("\n")
	out.WriteString(body)
}

// formatExchange renders a request and the response it got as plain text:
//
//	== request ==
//	GET <url>
//	<headers>
//
//	<body>
//	== response ==
//	200 <final url>
//	<headers>
//
//	<body>
func formatExchange(res *resty.Response) string {
	var out strings.Builder

	raw := res.Request.RawRequest
	var requestHeaders http.Header
	if raw != nil {
		requestHeaders = raw.Header
	}
	writeSection(
		&out, "request",
		fmt.Sprintf("%s %s", res.Request.Method, res.Request.URL),
		requestHeaders,
		requestBody(raw),
	)
	if !strings.HasSuffix(out.String(), "\n") {
		out.WriteString("\n")
	}

	finalUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalUrl = res.RawResponse.Request.URL.String()
	}
	writeSection(
		&out, "response",
		fmt.Sprintf("%d %s", res.StatusCode(), finalUrl),
		res.Header(),
		res.String(),
	)
	return out.String()
}
