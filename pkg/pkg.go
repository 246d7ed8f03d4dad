//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the tfmt module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It prefixes environment variables and names
	// the default configuration and cache directories.
	Name = "tfmt"
	// Description is shown in help output.
	Description = "Placeholder template formatter"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
