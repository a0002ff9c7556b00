package main

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/sol/cache"
	"github.com/chazu/sol/manifest"
	"github.com/chazu/sol/pkg/ast"
	"github.com/chazu/sol/vm"
)

const helloProgram = `<program language="SOL25">
  <class name="Main" parent="Object">
    <method selector="run">
      <block arity="0">
        <assign order="1">
          <var name="x"/>
          <expr>
            <send selector="print">
              <expr><literal class="String" value="hello"/></expr>
            </send>
          </expr>
        </assign>
      </block>
    </method>
  </class>
</program>`

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m := manifest.Default()
	m.Dir = t.TempDir()
	return m
}

func TestParseEntry(t *testing.T) {
	m := testManifest(t)
	tests := []struct {
		entry         string
		class, method string
	}{
		{"", "Main", "run"},
		{"App", "App", "run"},
		{"App.start", "App", "start"},
		{".start", "Main", "start"},
		{"App.", "App", "run"},
	}
	for _, tt := range tests {
		c, s, err := parseEntry(tt.entry, m)
		if err != nil {
			t.Errorf("parseEntry(%q): %v", tt.entry, err)
			continue
		}
		if c != tt.class || s != tt.method {
			t.Errorf("parseEntry(%q) = %s.%s, want %s.%s", tt.entry, c, s, tt.class, tt.method)
		}
	}
	if _, _, err := parseEntry("A.b.c", m); err == nil {
		t.Error("parseEntry(A.b.c) should fail")
	}
}

func TestLoadProgramFillsCache(t *testing.T) {
	m := testManifest(t)
	src := filepath.Join(m.Dir, "main.xml")
	if err := os.WriteFile(src, []byte(helloProgram), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := loadProgram(src, m, false)
	if err != nil {
		t.Fatalf("loadProgram: %v", err)
	}

	store, err := cache.Open(m.CachePath())
	if err != nil {
		t.Fatal(err)
	}
	cached, err := store.Get(cache.Digest([]byte(helloProgram)))
	store.Close()
	if err != nil {
		t.Fatalf("program was not cached: %v", err)
	}
	if diff := cmp.Diff(first, cached); diff != "" {
		t.Errorf("cached program mismatch (-want +got):\n%s", diff)
	}

	second, err := loadProgram(src, m, false)
	if err != nil {
		t.Fatalf("loadProgram (cached): %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProgramNoCache(t *testing.T) {
	m := testManifest(t)
	src := filepath.Join(m.Dir, "main.xml")
	if err := os.WriteFile(src, []byte(helloProgram), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadProgram(src, m, true); err != nil {
		t.Fatalf("loadProgram: %v", err)
	}
	if _, err := os.Stat(m.CachePath()); !os.IsNotExist(err) {
		t.Errorf("cache database created with -no-cache (stat err: %v)", err)
	}
}

func TestCompiledImageRoundTrip(t *testing.T) {
	m := testManifest(t)
	src := filepath.Join(m.Dir, "main.xml")
	if err := os.WriteFile(src, []byte(helloProgram), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := loadProgram(src, m, true)
	if err != nil {
		t.Fatal(err)
	}

	image := filepath.Join(m.Dir, "main"+imageExt)
	if err := writeImage(image, p); err != nil {
		t.Fatalf("writeImage: %v", err)
	}
	got, err := loadProgram(image, m, false)
	if err != nil {
		t.Fatalf("loadProgram(image): %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProgramMalformed(t *testing.T) {
	m := testManifest(t)
	src := filepath.Join(m.Dir, "bad.xml")
	if err := os.WriteFile(src, []byte("<program language=\"SOL25\"><class/></program>"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := loadProgram(src, m, false)
	if got := vm.StatusOf(err); got != vm.StatusMalformed {
		t.Errorf("status = %d, want %d", got, vm.StatusMalformed)
	}
}

func TestOpenCachePrunesOldImages(t *testing.T) {
	m := testManifest(t)
	m.Cache.MaxAge = "1h"

	store, err := openCache(m)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	p := &ast.Program{Language: ast.Language}
	if err := store.Put("old", p); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("fresh", p); err != nil {
		t.Fatal(err)
	}
	store.Close()

	db, err := sql.Open("sqlite", m.CachePath())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE images SET created_at = 0 WHERE digest = 'old'"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	store, err = openCache(m)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	defer store.Close()
	if _, err := store.Get("old"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get(old) err = %v, want ErrNotFound", err)
	}
	if _, err := store.Get("fresh"); err != nil {
		t.Errorf("Get(fresh): %v", err)
	}
}

func TestOpenCacheKeepsImagesWithoutMaxAge(t *testing.T) {
	m := testManifest(t)
	m.Cache.MaxAge = "0"

	store, err := openCache(m)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	if err := store.Put("old", &ast.Program{Language: ast.Language}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	db, err := sql.Open("sqlite", m.CachePath())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE images SET created_at = 0"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	store, err = openCache(m)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	defer store.Close()
	if _, err := store.Get("old"); err != nil {
		t.Errorf("Get(old): %v", err)
	}
}
