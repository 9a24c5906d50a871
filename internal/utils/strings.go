package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yukikurage/project-dashboard-api/internal/constants"
)

// AvatarURL returns the generated avatar for a username.
func AvatarURL(username string) string {
	return fmt.Sprintf(constants.AvatarURLTemplate, url.QueryEscape(username))
}

// TrimmedEmpty reports whether s is empty after trimming whitespace.
func TrimmedEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
