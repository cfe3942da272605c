package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions resolves credentials from an explicit value first, then from
// GOOGLE_APPLICATION_CREDENTIALS_JSON and GOOGLE_APPLICATION_CREDENTIALS.
// The value may be inline JSON or a file path. With nothing set the client
// falls back to application default credentials.
func ClientOptions(explicit string) []option.ClientOption {
	creds := strings.TrimSpace(explicit)
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	}
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
