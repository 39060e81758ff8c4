package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/GZGavinZhao/bitbaker/cargo"
	"github.com/GZGavinZhao/bitbaker/common"
	"github.com/GZGavinZhao/bitbaker/config"
	"github.com/GZGavinZhao/bitbaker/vcs"
)

const fullSHA = "0123456789abcdef0123456789abcdef01234567"

func gitPkg(name string, ref common.GitReference, precise string) common.Package {
	return common.Package{
		Name:    name,
		Version: "0.1.0",
		Origin:  common.GitOrigin{Protocol: "git", URL: "https://github.com/example/" + name, Reference: ref},
		Precise: precise,
	}
}

func TestClassify(t *testing.T) {
	pkgs := []common.Package{
		{Name: "root", Version: "1.0.0", Origin: common.PathOrigin{}},
		{Name: "foo", Version: "1.2.3", Origin: common.RegistryOrigin{Index: "pkgindex"}},
		{Name: "local", Version: "0.1.0", Origin: common.PathOrigin{}},
		{Name: "abc", Version: "0.0.1", Origin: common.URLOrigin{URL: "https://example.com/abc.tar.gz"}},
		gitPkg("bar", common.GitReference{Kind: common.Branch, Name: "master"}, fullSHA),
	}

	res, err := Classify("root", pkgs, SourceOptions{Scheme: "archive"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expectedURIs := []string{
		"    archive://pkgindex/foo/1.2.3 \\\n",
		"    git://github.com/example/bar;protocol=https;nobranch=1;name=bar;destsuffix=bar \\\n",
		"    https://example.com/abc.tar.gz \\\n",
	}
	if !slices.Equal(res.SrcURIs, expectedURIs) {
		t.Errorf("expected %q, got %q", expectedURIs, res.SrcURIs)
	}
	if !slices.IsSorted(res.SrcURIs) {
		t.Error("SrcURIs are not sorted")
	}

	expectedExtras := []string{
		`SRCREV_FORMAT .= "_bar"`,
		`SRCREV_bar = "${AUTOREV}"`,
		`EXTRA_OECARGO_PATHS += "${WORKDIR}/bar"`,
	}
	if !slices.Equal(res.Extras, expectedExtras) {
		t.Errorf("expected %q, got %q", expectedExtras, res.Extras)
	}
}

func TestClassifyExcludesRoot(t *testing.T) {
	pkgs := []common.Package{
		{Name: "root", Version: "1.0.0", Origin: common.RegistryOrigin{Index: "crates.io"}},
		{Name: "dep", Version: "2.0.0", Origin: common.RegistryOrigin{Index: "crates.io"}},
	}

	res, err := Classify("root", pkgs, SourceOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for _, uri := range res.SrcURIs {
		if strings.Contains(uri, "/root/") {
			t.Errorf("root package must not be fetched: %q", uri)
		}
	}
	if len(res.SrcURIs) != 1 || res.SrcURIs[0] != "    crate://crates.io/dep/2.0.0 \\\n" {
		t.Errorf("unexpected SrcURIs %q", res.SrcURIs)
	}
}

func TestGitRev(t *testing.T) {
	testCases := []struct {
		name         string
		ref          common.GitReference
		precise      string
		reproducible bool
		expected     string
	}{
		{"tag", common.GitReference{Kind: common.Tag, Name: "v1.0"}, fullSHA, false, "v1.0"},
		{"reproducible tag", common.GitReference{Kind: common.Tag, Name: "v1.0"}, fullSHA, true, fullSHA},
		{"full rev", common.GitReference{Kind: common.Rev, Name: fullSHA}, "", false, fullSHA},
		{"short rev", common.GitReference{Kind: common.Rev, Name: "0123456"}, fullSHA, false, fullSHA},
		{"master", common.GitReference{Kind: common.Branch, Name: "master"}, fullSHA, false, AutoRev},
		{"branch", common.GitReference{Kind: common.Branch, Name: "dev"}, "", false, "dev"},
		{"reproducible branch", common.GitReference{Kind: common.Branch, Name: "dev"}, fullSHA, true, fullSHA},
		{"default", common.GitReference{Kind: common.DefaultBranch}, fullSHA, false, AutoRev},
		{"reproducible without precise", common.GitReference{Kind: common.DefaultBranch}, "", true, AutoRev},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkg := gitPkg("dep", tc.ref, tc.precise)
			rev, err := gitRev(&pkg, pkg.Origin.(common.GitOrigin), tc.reproducible)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if rev != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, rev)
			}
		})
	}
}

func TestClassifyAbbreviatedRev(t *testing.T) {
	pkgs := []common.Package{gitPkg("dep", common.GitReference{Kind: common.Rev, Name: "0123456"}, "")}

	for _, reproducible := range []bool{false, true} {
		_, err := Classify("root", pkgs, SourceOptions{Reproducible: reproducible})

		var revErr *AbbreviatedRevError
		if !errors.As(err, &revErr) || !errors.Is(err, ErrAbbreviatedRev) {
			t.Fatalf("expected an AbbreviatedRevError, got %v", err)
		}
		if revErr.Name != "dep" || revErr.Rev != "0123456" {
			t.Errorf("unexpected error fields %+v", revErr)
		}
	}
}

func TestClassifyIgnoreAndUnknown(t *testing.T) {
	pkgs := []common.Package{
		{Name: "vendored-ssl", Version: "1.0.0", Origin: common.RegistryOrigin{Index: "crates.io"}},
		{Name: "kept", Version: "1.0.0", Origin: common.RegistryOrigin{Index: "crates.io"}},
	}

	res, err := Classify("root", pkgs, SourceOptions{Ignore: []*regexp.Regexp{regexp.MustCompile("^vendored-")}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(res.SrcURIs) != 1 || !strings.Contains(res.SrcURIs[0], "/kept/") {
		t.Errorf("unexpected SrcURIs %q", res.SrcURIs)
	}

	_, err = Classify("root", []common.Package{{Name: "odd", Version: "1.0.0"}}, SourceOptions{})
	var originErr *UnknownOriginError
	if !errors.As(err, &originErr) || originErr.Name != "odd" {
		t.Errorf("expected an UnknownOriginError, got %v", err)
	}
}

func testInput(t *testing.T) Input {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "LICENSE-MIT"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	return Input{
		Metadata: cargo.Metadata{
			Name:        "hello",
			Version:     "0.1.0",
			Description: "  Says hello\nto everyone  ",
			Repository:  " https://github.com/example/hello ",
			License:     "MIT / Apache-2.0",
		},
		Root:   root,
		RelDir: "crates/hello",
		Packages: []common.Package{
			{Name: "hello", Version: "0.1.0", Origin: common.PathOrigin{}},
			{Name: "foo", Version: "1.2.3", Origin: common.RegistryOrigin{Index: "crates.io"}},
		},
		Repo: vcs.ProjectRepo{
			URI: "git://github.com/example/hello;protocol=https;nobranch=1",
			Rev: "abcdef012345",
		},
	}
}

func TestAssemble(t *testing.T) {
	in := testInput(t)

	r, err := Assemble(in, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if r.Summary != "Says hello \\\nto everyone" {
		t.Errorf("unexpected summary %q", r.Summary)
	}
	if r.Homepage != "https://github.com/example/hello" {
		t.Errorf("unexpected homepage %q", r.Homepage)
	}
	if r.License != "MIT | Apache-2.0" {
		t.Errorf("unexpected license %q", r.License)
	}

	expectedLics := []string{
		"    file://crates/hello/LICENSE-MIT;md5=5d41402abc4b2a76b9719d911017c592 \\\n",
		"    file://Apache-2.0;md5=generateme \\\n",
	}
	// The components are not trimmed before the lookup.
	in.Metadata.License = "MIT/Apache-2.0"
	r, err = Assemble(in, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !slices.Equal(r.LicFiles, expectedLics) {
		t.Errorf("expected %q, got %q", expectedLics, r.LicFiles)
	}

	if r.PVAppend != `PV:append = ".AUTOINC+abcdef0123"` {
		t.Errorf("unexpected version pin %q", r.PVAppend)
	}
	if r.IncludePath != "hello_0.1.0.inc" {
		t.Errorf("unexpected include path %s", r.IncludePath)
	}
	if len(r.SrcURIs) != 1 {
		t.Errorf("expected only foo to be fetched, got %q", r.SrcURIs)
	}
}

func TestAssembleVersionPin(t *testing.T) {
	in := testInput(t)

	r, err := Assemble(in, Options{LegacyOverrides: true})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r.PVAppend != `PV_append = ".AUTOINC+abcdef0123"` {
		t.Errorf("unexpected legacy version pin %q", r.PVAppend)
	}

	in.Repo.Tag = true
	if r, err = Assemble(in, Options{}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r.PVAppend != "" {
		t.Errorf("expected no version pin for a tag, got %q", r.PVAppend)
	}

	in.Repo = vcs.ProjectRepo{}
	if r, err = Assemble(in, Options{}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r.PVAppend != "" {
		t.Errorf("expected no version pin without a repository, got %q", r.PVAppend)
	}
}

func TestAssembleFallbacks(t *testing.T) {
	in := testInput(t)
	in.Metadata.Description = ""
	in.Metadata.License = ""
	in.Metadata.Homepage = "https://hello.example.com"

	r, err := Assemble(in, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r.Summary != "hello" {
		t.Errorf("expected the name as summary, got %q", r.Summary)
	}
	if r.Homepage != "https://hello.example.com" {
		t.Errorf("expected homepage to win over repository, got %q", r.Homepage)
	}
	if r.License != "CLOSED" || len(r.LicFiles) != 0 {
		t.Errorf("expected a CLOSED license without files, got %q %q", r.License, r.LicFiles)
	}

	in.Metadata.LicenseFile = "COPYING"
	if r, err = Assemble(in, Options{}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if r.License != "COPYING" {
		t.Errorf("expected the license file as license, got %q", r.License)
	}

	in.Metadata.Homepage = ""
	in.Metadata.Repository = ""
	if _, err = Assemble(in, Options{}); !errors.Is(err, ErrNoHomepage) {
		t.Errorf("expected ErrNoHomepage, got %v", err)
	}
}

func TestWrite(t *testing.T) {
	r, err := Assemble(testInput(t), Options{GeneratorVersion: "v0.0.0-test"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	tmpls, err := LoadTemplates(config.TemplateConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	dir := t.TempDir()
	paths, err := r.Write(dir, tmpls)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := []string{filepath.Join(dir, "hello_0.1.0.inc"), filepath.Join(dir, "hello_0.1.0.bb")}
	if !slices.Equal(paths, expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}

	inc, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(inc), "SRC_URI += \" \\\n    crate://crates.io/foo/1.2.3 \\\n\"") {
		t.Errorf("unexpected include file:\n%s", inc)
	}

	bb, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"# Auto-Generated by bitbaker v0.0.0-test",
		"require hello_0.1.0.inc",
		"SRCREV = \"abcdef012345\"",
		"CARGO_SRC_DIR = \"crates/hello\"",
		"PV:append = \".AUTOINC+abcdef0123\"",
		"LICENSE = \"MIT | Apache-2.0\"",
	} {
		if !strings.Contains(string(bb), line) {
			t.Errorf("expected %q in the recipe:\n%s", line, bb)
		}
	}
}

func TestWriteOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "custom.tmpl")
	if err := os.WriteFile(override, []byte("SUMMARY = \"{{.Summary}}\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tmpls, err := LoadTemplates(config.TemplateConfig{Recipe: override})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	r := &Recipe{Name: "x", Version: "1.0.0", Summary: "custom", IncludePath: "x_1.0.0.inc"}
	paths, err := r.Write(dir, tmpls)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	bb, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(bb) != "SUMMARY = \"custom\"\n" {
		t.Errorf("unexpected recipe %q", bb)
	}

	if _, err := LoadTemplates(config.TemplateConfig{Include: filepath.Join(dir, "missing.tmpl")}); err == nil {
		t.Error("expected an error for a missing template")
	}
}
