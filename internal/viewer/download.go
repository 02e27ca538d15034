package viewer

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const downloadPrefix = "data:;base64,"

// DownloadLink mirrors text verbatim into a base64 data URI.
func DownloadLink(text string) string {
	return downloadPrefix + base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeDownloadLink returns the text carried by a link built with DownloadLink.
func DecodeDownloadLink(link string) (string, error) {
	payload, ok := strings.CutPrefix(link, downloadPrefix)
	if !ok {
		return "", fmt.Errorf("not a base64 data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode data URI: %w", err)
	}

	return string(raw), nil
}
