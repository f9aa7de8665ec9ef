package droppings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLeinParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Descriptor
		wantErr string
	}{
		{
			name:    "group and artifact",
			content: `(defproject my-group/my-artifact "2.0.0" :dependencies [[other-group/other-art "1.0"]])`,
			want: &Descriptor{
				GroupID:      "my-group",
				ArtifactID:   "my-artifact",
				Version:      "2.0.0",
				Dependencies: []Dependency{{GroupID: "other-group", ArtifactID: "other-art", Version: "1.0"}},
			},
		},
		{
			name: "plugins appended and options ignored",
			content: `; a comment
(defproject compojure "1.1.5"
  :description "A concise routing library"
  :dependencies [[org.clojure/clojure "1.5.1"]
                 [ring/ring-core "1.1.8" :exclusions [commons-codec]]]
  :plugins [[lein-ring "0.8.3"]]
  :profiles {:dev {:dependencies [[ring-mock "0.1.3"]]}})`,
			want: &Descriptor{
				GroupID:    "compojure",
				ArtifactID: "compojure",
				Version:    "1.1.5",
				Dependencies: []Dependency{
					{GroupID: "org.clojure", ArtifactID: "clojure", Version: "1.5.1"},
					{GroupID: "ring", ArtifactID: "ring-core", Version: "1.1.8"},
					{GroupID: "lein-ring", ArtifactID: "lein-ring", Version: "0.8.3"},
				},
			},
		},
		{
			name:    "empty dependencies",
			content: `(defproject leaf "0.1.0" :dependencies [])`,
			want: &Descriptor{
				GroupID:      "leaf",
				ArtifactID:   "leaf",
				Version:      "0.1.0",
				Dependencies: []Dependency{},
			},
		},
		{
			name:    "missing dependencies",
			content: `(defproject leaf "0.1.0" :plugins [[lein-ring "0.8.3"]])`,
			wantErr: "missing :dependencies",
		},
		{
			name:    "wrong marker",
			content: `(defmodule leaf "0.1.0" :dependencies [])`,
			wantErr: "not a defproject",
		},
		{
			name:    "not a list",
			content: `[defproject leaf "0.1.0"]`,
			wantErr: "",
		},
		{
			name:    "coordinate not a symbol",
			content: `(defproject "leaf" "0.1.0" :dependencies [])`,
			wantErr: "not a symbol",
		},
		{
			name:    "dependency name not a symbol",
			content: `(defproject leaf "0.1.0" :dependencies [["ring" "1.0"]])`,
			wantErr: "not a symbol",
		},
		{
			name:    "dependency without version",
			content: `(defproject leaf "0.1.0" :dependencies [[ring]])`,
			wantErr: "not a [name version] vector",
		},
		{
			name:    "unbalanced",
			content: `(defproject leaf "0.1.0" :dependencies [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leinParser{}.Parse([]byte(tt.content))
			if tt.want == nil {
				if err == nil {
					t.Fatalf("Parse() = %+v, want error", got)
				}
				if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Parse() error = %q, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

const pomTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <modelVersion>4.0.0</modelVersion>
%s
</project>
`

func pom(body string) string {
	return strings.Replace(pomTemplate, "%s", body, 1)
}

func TestMavenParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Descriptor
		wantErr string
	}{
		{
			name: "property substitution",
			content: pom(`
  <groupId>org.example</groupId>
  <artifactId>service</artifactId>
  <version>1.2.0</version>
  <properties>
    <ver>3.0</ver>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.lib</groupId>
      <artifactId>lib</artifactId>
      <version>${ver}</version>
    </dependency>
    <dependency>
      <groupId>org.other</groupId>
      <artifactId>other</artifactId>
      <version>${missing}</version>
      <scope>test</scope>
    </dependency>
  </dependencies>`),
			want: &Descriptor{
				GroupID:    "org.example",
				ArtifactID: "service",
				Version:    "1.2.0",
				Dependencies: []Dependency{
					{GroupID: "org.lib", ArtifactID: "lib", Version: "3.0"},
					{GroupID: "org.other", ArtifactID: "other", Version: "${missing}"},
				},
			},
		},
		{
			name: "self reference and parent",
			content: pom(`
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>${project.version}</version>
  </parent>
  <groupId>org.example</groupId>
  <artifactId>module</artifactId>
  <version>
    5.1
  </version>
  <dependencies>
    <dependency>
      <groupId>${project.groupId}</groupId>
      <artifactId>sibling</artifactId>
      <version>${project.version}</version>
    </dependency>
  </dependencies>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>ignored</groupId>
        <artifactId>ignored</artifactId>
        <version>0</version>
      </dependency>
    </dependencies>
  </dependencyManagement>`),
			want: &Descriptor{
				GroupID:    "org.example",
				ArtifactID: "module",
				Version:    "5.1",
				Dependencies: []Dependency{
					{GroupID: "org.example", ArtifactID: "sibling", Version: "5.1"},
					{GroupID: "org.example", ArtifactID: "parent", Version: "5.1"},
				},
			},
		},
		{
			name: "no namespace and empty dependencies",
			content: `<project>
  <groupId>g</groupId><artifactId>a</artifactId><version>1</version>
  <dependencies/>
</project>`,
			want: &Descriptor{GroupID: "g", ArtifactID: "a", Version: "1", Dependencies: []Dependency{}},
		},
		{
			name: "missing dependencies",
			content: pom(`
  <groupId>g</groupId><artifactId>a</artifactId><version>1</version>`),
			wantErr: "missing <dependencies>",
		},
		{
			name: "missing version",
			content: pom(`
  <groupId>g</groupId><artifactId>a</artifactId>
  <dependencies/>`),
			wantErr: "missing <version>",
		},
		{
			name: "dependency missing artifact",
			content: pom(`
  <groupId>g</groupId><artifactId>a</artifactId><version>1</version>
  <dependencies><dependency><groupId>x</groupId><version>1</version></dependency></dependencies>`),
			wantErr: "dependency 0: missing <artifactId>",
		},
		{
			name:    "wrong root",
			content: `<settings><groupId>g</groupId></settings>`,
		},
		{
			name:    "malformed",
			content: `<project><groupId>g</project>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mavenParser{}.Parse([]byte(tt.content))
			if tt.want == nil {
				if err == nil {
					t.Fatalf("Parse() = %+v, want error", got)
				}
				if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Parse() error = %q, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBazelParse(t *testing.T) {
	content := `module(
    name = "core",
    version = "1.4.0",
)

bazel_dep(name = "rules_go", version = "0.50.1")
bazel_dep(name = "overridden")
bazel_dep(name = "util", version = "2.0", dev_dependency = True)

go_deps = use_extension("@gazelle//:extensions.bzl", "go_deps")
`
	got, err := bazelParser{}.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := &Descriptor{
		GroupID:    "core",
		ArtifactID: "core",
		Version:    "1.4.0",
		Dependencies: []Dependency{
			{GroupID: "rules_go", ArtifactID: "rules_go", Version: "0.50.1"},
			{GroupID: "util", ArtifactID: "util", Version: "2.0"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	for name, content := range map[string]string{
		"no module":  `bazel_dep(name = "x", version = "1")`,
		"no version": `module(name = "core")`,
		"syntax":     `module(name = `,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := (bazelParser{}).Parse([]byte(content)); err == nil {
				t.Error("Parse() succeeded, want error")
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  DescriptorFormat
	}{
		{"none", nil, FormatNone},
		{"leiningen", []string{"project.clj"}, FormatLeiningen},
		{"maven", []string{"pom.xml"}, FormatMaven},
		{"bazel", []string{"MODULE.bazel"}, FormatBazel},
		{"leiningen wins", []string{"pom.xml", "project.clj", "MODULE.bazel"}, FormatLeiningen},
		{"maven before bazel", []string{"MODULE.bazel", "pom.xml"}, FormatMaven},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, dir, f, "")
			}
			got, err := DetectFormat(dir)
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectFormatIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "project.clj"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "pom.xml", "")
	got, err := DetectFormat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != FormatMaven {
		t.Errorf("DetectFormat() = %q, want %q", got, FormatMaven)
	}
}

func TestParserFor(t *testing.T) {
	for _, f := range []DescriptorFormat{FormatLeiningen, FormatMaven, FormatBazel} {
		p := ParserFor(f)
		if p == nil || p.Format() != f {
			t.Errorf("ParserFor(%q) = %v", f, p)
		}
	}
	if p := ParserFor(FormatNone); p != nil {
		t.Errorf("ParserFor(FormatNone) = %v, want nil", p)
	}
}

func TestParseProject(t *testing.T) {
	build := []Command{{"lein", "install"}}

	t.Run("descriptor", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "project.clj", `(defproject g/a "1.0" :dependencies [[x/y "2"]])`)
		spec := ProjectSpec{Name: "a", ValidateVersion: true, Build: build, ResolveDeps: true}

		got, err := ParseProject(dir, spec)
		if err != nil {
			t.Fatalf("ParseProject() error = %v", err)
		}
		want := &ProjectData{
			GroupID:         "g",
			ArtifactID:      "a",
			Version:         "1.0",
			Dependencies:    []Dependency{{GroupID: "x", ArtifactID: "y", Version: "2"}},
			ValidateVersion: true,
			Build:           build,
			ResolveDeps:     true,
			Format:          FormatLeiningen,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseProject() mismatch (-want +got):\n%s", diff)
		}

		again, err := ParseProject(dir, spec)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(got, again); diff != "" {
			t.Errorf("second parse differs (-first +second):\n%s", diff)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		got, err := ParseProject(t.TempDir(), ProjectSpec{Name: "scripts", Build: build})
		if err != nil {
			t.Fatalf("ParseProject() error = %v", err)
		}
		want := &ProjectData{
			GroupID:      "scripts",
			ArtifactID:   "scripts",
			Dependencies: []Dependency{},
			Build:        build,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseProject() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("descriptor error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "pom.xml", pom(`<groupId>g</groupId>`))
		_, err := ParseProject(dir, ProjectSpec{Name: "a"})
		if !errors.Is(err, ErrDescriptorFormat) {
			t.Fatalf("ParseProject() error = %v, want ErrDescriptorFormat", err)
		}
		var derr *DescriptorError
		if !errors.As(err, &derr) {
			t.Fatalf("error %T is not a *DescriptorError", err)
		}
		if derr.Format != FormatMaven || derr.Path != filepath.Join(dir, "pom.xml") {
			t.Errorf("DescriptorError = %+v", derr)
		}
	})
}
