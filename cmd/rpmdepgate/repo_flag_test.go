package main

import (
	"testing"
)

func TestRepoListSet(t *testing.T) {
	var r repoList

	if err := r.Set("base,https://repos.example.com/base"); err != nil {
		t.Fatal(err)
	}
	if err := r.Set("updates,/srv/mirror/updates"); err != nil {
		t.Fatal(err)
	}

	if len(r) != 2 {
		t.Fatalf("len = %d, want 2", len(r))
	}
	if r[0].Name != "base" || r[0].BaseURL != "https://repos.example.com/base" {
		t.Errorf("first entry = %+v", r[0])
	}
	if r[1].Name != "updates" || r[1].BaseURL != "/srv/mirror/updates" {
		t.Errorf("second entry = %+v", r[1])
	}
}

func TestRepoListSetRejectsMalformedValues(t *testing.T) {
	for _, value := range []string{"", "justaname", ",https://repos.example.com/base", "base,"} {
		var r repoList
		if err := r.Set(value); err == nil {
			t.Errorf("Set(%q) accepted a malformed value", value)
		}
	}
}

func TestRepoListString(t *testing.T) {
	r := repoList{
		{Name: "base", BaseURL: "https://repos.example.com/base"},
	}
	if got := r.String(); got != "base,https://repos.example.com/base" {
		t.Errorf("String = %q", got)
	}
	if got := r.Type(); got != "NAME,URL" {
		t.Errorf("Type = %q", got)
	}
}
