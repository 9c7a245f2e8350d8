package main

import (
	"fmt"
	"strings"

	"github.com/distro-tools/rpmdepgate/internal/config"
	"github.com/spf13/pflag"
)

// repoList is a repeatable --repo NAME,URL flag value.
type repoList []config.RepoConfig

var _ pflag.Value = (*repoList)(nil)

func (r *repoList) String() string {
	parts := make([]string, 0, len(*r))
	for _, rc := range *r {
		parts = append(parts, rc.Name+","+rc.BaseURL)
	}
	return strings.Join(parts, " ")
}

func (r *repoList) Set(s string) error {
	name, baseURL, ok := strings.Cut(s, ",")
	if !ok || name == "" || baseURL == "" {
		return fmt.Errorf("expected NAME,URL but got %q", s)
	}
	*r = append(*r, config.RepoConfig{Name: name, BaseURL: baseURL})
	return nil
}

func (r *repoList) Type() string {
	return "NAME,URL"
}
