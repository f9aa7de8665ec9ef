package e2e

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	droppings "github.com/albertocavalcante/go-droppings"
	"github.com/albertocavalcante/go-droppings/config"
	"github.com/albertocavalcante/go-droppings/vcs"
)

// requireTools skips unless git and sh are installed, and isolates git from
// the user's configuration.
func requireTools(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping end-to-end test in short mode")
	}
	for _, tool := range []string{"git", "sh"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "e2e")
	t.Setenv("GIT_AUTHOR_EMAIL", "e2e@localhost")
	t.Setenv("GIT_COMMITTER_NAME", "e2e")
	t.Setenv("GIT_COMMITTER_EMAIL", "e2e@localhost")
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

// createRemote publishes files as the master branch of a new bare
// repository, with develop one empty commit ahead.
func createRemote(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	seed := filepath.Join(root, "seed-"+name)
	bare := filepath.Join(root, name+".git")

	gitRun(t, root, "init", seed)
	gitRun(t, seed, "checkout", "-b", "master")
	for path, content := range files {
		if err := os.WriteFile(filepath.Join(seed, path), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
		gitRun(t, seed, "add", path)
	}
	gitRun(t, seed, "commit", "-m", "initial")
	gitRun(t, seed, "checkout", "-b", "develop")
	gitRun(t, seed, "commit", "--allow-empty", "-m", "release prep")

	gitRun(t, root, "init", "--bare", bare)
	gitRun(t, bare, "symbolic-ref", "HEAD", "refs/heads/master")
	gitRun(t, seed, "push", bare, "master", "develop")
	return bare
}

func writeConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repos.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func repositories(cfg *config.Config) []vcs.Repository {
	var repos []vcs.Repository
	for _, p := range cfg.Projects {
		r := vcs.Repository{Name: p.Name, Refspec: p.Refspec}
		if p.Merge != nil {
			r.MergeFrom, r.MergeTo = p.Merge.From, p.Merge.To
		}
		repos = append(repos, r)
	}
	return repos
}

// TestSyncAndBuild clones three projects in the three descriptor formats,
// merges a release branch and builds them in dependency order.
func TestSyncAndBuild(t *testing.T) {
	requireTools(t)
	remotes := t.TempDir()
	ws := t.TempDir()

	core := createRemote(t, remotes, "core", map[string]string{
		"MODULE.bazel": `module(name = "core", version = "3.1.0")`,
	})
	lib := createRemote(t, remotes, "lib", map[string]string{
		"project.clj": `(defproject org.example/lib "0.4.0"
  :dependencies [[core "3.1.0"] [org.clojure/clojure "1.11.1"]])`,
	})
	svc := createRemote(t, remotes, "svc", map[string]string{
		"pom.xml": `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>org.example</groupId>
  <artifactId>svc</artifactId>
  <version>1.0.0</version>
  <properties><lib.version>0.4.0</lib.version></properties>
  <dependencies>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>lib</artifactId>
      <version>${lib.version}</version>
    </dependency>
  </dependencies>
</project>`,
	})

	build := `[sh, -c, "ls ../*.done 2>/dev/null | wc -l | tr -d ' ' > order.txt && touch ../$DROPPINGS_PROJECT.done"]`
	cfg := writeConfig(t, `workspace: `+ws+`
max_concurrency: 2
build_timeout: 1m
projects:
  - name: svc
    refspec: `+svc+`
    merge: {from: develop, to: master}
    build: [`+build+`]
  - name: lib
    refspec: `+lib+`
    validate_version: true
    build: [`+build+`]
  - name: core
    refspec: `+core+`
    validate_version: true
    build: [`+build+`]
`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := vcs.Sync(ctx, cfg.WorkspaceDir(), repositories(cfg), vcs.SyncOptions{Merge: true, Tag: "drop-1"}); err != nil {
		t.Fatalf("vcs.Sync: %v", err)
	}

	result, err := droppings.Build(ctx, cfg.WorkspaceDir(), cfg.ProjectSpecs(), cfg.Options()...)
	if err != nil {
		t.Fatalf("droppings.Build: %v", err)
	}

	var got [][]string
	for _, w := range result.Waves {
		got = append(got, []string(w))
	}
	want := [][]string{{"core"}, {"lib"}, {"svc"}}
	if len(got) != len(want) {
		t.Fatalf("waves = %v, want %v", got, want)
	}
	for i := range want {
		if strings.Join(got[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("wave %d = %v, want %v", i, got[i], want[i])
		}
	}

	for name, seen := range map[string]string{"core": "0", "lib": "1", "svc": "2"} {
		data, err := os.ReadFile(filepath.Join(ws, name, "order.txt"))
		if err != nil {
			t.Fatalf("%s did not build: %v", name, err)
		}
		if strings.TrimSpace(string(data)) != seen {
			t.Errorf("%s saw %s finished projects, want %s", name, data, seen)
		}
	}
}

// TestVersionMismatchStopsRun checks that nothing builds when a project
// requests a version its sibling does not provide.
func TestVersionMismatchStopsRun(t *testing.T) {
	requireTools(t)
	remotes := t.TempDir()
	ws := t.TempDir()

	core := createRemote(t, remotes, "core", map[string]string{
		"project.clj": `(defproject org/core "2.0.0" :dependencies [])`,
	})
	app := createRemote(t, remotes, "app", map[string]string{
		"project.clj": `(defproject org/app "1.0.0" :dependencies [[org/core "1.9.0"]])`,
	})
	cfg := writeConfig(t, `workspace: `+ws+`
projects:
  - {name: core, refspec: `+core+`, validate_version: true, build: [[touch, built]]}
  - {name: app, refspec: `+app+`, build: [[touch, built]]}
`)

	ctx := context.Background()
	if err := vcs.Sync(ctx, ws, repositories(cfg), vcs.SyncOptions{}); err != nil {
		t.Fatalf("vcs.Sync: %v", err)
	}
	_, err := droppings.Build(ctx, ws, cfg.ProjectSpecs())
	if !errors.Is(err, droppings.ErrDependencyMismatch) {
		t.Fatalf("Build error = %v, want ErrDependencyMismatch", err)
	}
	if _, err := os.Stat(filepath.Join(ws, "core", "built")); !os.IsNotExist(err) {
		t.Error("core was built despite the mismatch")
	}
}
