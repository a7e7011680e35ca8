// Package restyutil dumps the http exchanges of a resty client for debugging
// upstream changes.
package restyutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

var messageCounter atomic.Uint64

// Dump writes every response received by client to output. Ids are "<n>-<host>",
// unique within the process so several clients can share an output.
func Dump(client *resty.Client, output Output) {
	if output == nil {
		return
	}
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		host := "unknown"
		u, err := url.Parse(res.Request.URL)
		if err == nil && u.Host != "" {
			host = u.Host
		}
		id := fmt.Sprintf("%04d-%s", messageCounter.Add(1), host)
		output.Write(id, formatExchange(res))
		slog.Debug("dumped response", "url", res.Request.URL, "message_id", id)
		return nil
	})
}
