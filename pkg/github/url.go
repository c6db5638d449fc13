package github

import (
	"net/url"
	"strings"
)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// String returns owner/name.
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoURL extracts owner and repository from a GitHub URL. It accepts
// https://github.com/o/r, http and www variants, a trailing .git or extra path
// segments, scheme-less github.com/o/r and the git@github.com:o/r.git form.
func ParseRepoURL(raw string) (Repo, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Repo{}, false
	}

	var path string
	switch {
	case strings.HasPrefix(s, "git@github.com:"):
		path = strings.TrimPrefix(s, "git@github.com:")
	default:
		if !strings.Contains(s, "://") {
			s = "https://" + s
		}
		u, err := url.Parse(s)
		if err != nil {
			return Repo{}, false
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		if host != "github.com" {
			return Repo{}, false
		}
		path = u.Path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return Repo{}, false
	}
	owner := parts[0]
	name := strings.TrimSuffix(parts[1], ".git")
	if owner == "" || name == "" {
		return Repo{}, false
	}
	return Repo{Owner: owner, Name: name}, true
}
