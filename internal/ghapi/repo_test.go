package ghapi

import "testing"

func TestParseRepoURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://github.com/acme/widget.git", want: "acme/widget"},
		{url: "https://github.com/acme/widget", want: "acme/widget"},
		{url: "https://github.com/acme/widget/", want: "acme/widget"},
		{url: "git@github.com:acme/widget.git", want: "acme/widget"},
		{url: "ssh://git@github.com/acme/widget.git", want: "acme/widget"},
		{url: "git://ghe.example.com/acme/widget", want: "acme/widget"},
		{url: "https://github.com/acme", wantErr: true},
		{url: "/srv/git/widget.git", wantErr: true},
		{url: "../widget.git", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRepoURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRepoURL(%q) = %v, want error", tt.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRepoURL(%q): %v", tt.url, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseRepoURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestResolveRepoURL(t *testing.T) {
	t.Parallel()
	super := Repo{Owner: "acme", Name: "super"}
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "../widget.git", want: "acme/widget"},
		{url: "../../other/widget", want: "other/widget"},
		{url: "https://github.com/x/y.git", want: "x/y"},
		{url: "./nested", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ResolveRepoURL(super, tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveRepoURL(%q) = %v, want error", tt.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveRepoURL(%q): %v", tt.url, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ResolveRepoURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestParseRepo(t *testing.T) {
	if _, err := ParseRepo("acme"); err == nil {
		t.Error("ParseRepo(acme) should fail")
	}
	if _, err := ParseRepo("a/b/c"); err == nil {
		t.Error("ParseRepo(a/b/c) should fail")
	}
	r, err := ParseRepo("acme/widget")
	if err != nil || r.Owner != "acme" || r.Name != "widget" {
		t.Errorf("ParseRepo = %+v, %v", r, err)
	}
}
