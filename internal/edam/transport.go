// Package edam is a client for the Evernote Data Access and Management
// Thrift services, covering the UserStore and NoteStore calls used to
// create notes.
package edam

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/apache/thrift/lib/go/thrift"
)

// Protocol version announced to UserStore.checkVersion.
const (
	VersionMajor int16 = 1
	VersionMinor int16 = 28
)

// UserStoreURL returns the UserStore endpoint under the service base URL.
func UserStoreURL(base string) string {
	return strings.TrimRight(base, "/") + "/edam/user"
}

// NoteStoreURL returns the NoteStore endpoint for shard.
func NoteStoreURL(base, shard string) string {
	return strings.TrimRight(base, "/") + "/edam/note/" + shard
}

// Dial returns a binary-protocol client over HTTP POST to url.
func Dial(url string, httpClient *http.Client, userAgent string) (thrift.TClient, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	trans, err := thrift.NewTHttpClientWithOptions(url, thrift.THttpClientOptions{Client: httpClient})
	if err != nil {
		return nil, fmt.Errorf("edam: dial %s: %w", url, err)
	}
	if hc, ok := trans.(*thrift.THttpClient); ok && userAgent != "" {
		hc.SetHeader("User-Agent", userAgent)
	}
	proto := thrift.NewTBinaryProtocolConf(trans, &thrift.TConfiguration{})
	return thrift.NewTStandardClient(proto, proto), nil
}
