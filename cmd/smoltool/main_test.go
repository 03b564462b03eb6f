package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/formats"
	"github.com/Faultbox/smolview/pkg/molecule"
)

const waterXYZ = "3\nwater\nO 0.5 0.5 0.5\nH 0.6 0.55 0.5\nH 0.4 0.55 0.5\n"

// run executes smoltool with an isolated config file and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runIn(t, "", args...)
}

func runIn(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "smolview.yaml")
	if err := os.WriteFile(cfgPath, []byte("logging:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info", writeFile(t, "water.xyz", waterXYZ))
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{
		"Description: water",
		"Formula:     H2O",
		"Atoms:       3",
		"Coords:      direct",
		"Volume:      1.0000",
		"#ff0d0d",
		"total",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInfo_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"info", filepath.Join(t.TempDir(), "nope.xyz")}},
		{"unknown extension", []string{"info", writeFile(t, "water.txt", waterXYZ)}},
		{"bad format flag", []string{"info", "--format", "pdb", writeFile(t, "water.xyz", waterXYZ)}},
		{"count mismatch", []string{"info", writeFile(t, "bad.xyz", "5\nx\nH 0 0 0\n")}},
		{"no args", []string{"info"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProject(t *testing.T) {
	out, err := run(t, "project", writeFile(t, "water.xyz", waterXYZ))
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d:\n%s", len(lines), out)
	}
	// O sits in the middle of the range on every axis but y
	if !strings.Contains(lines[1], "0.0000") {
		t.Errorf("expected a centered coordinate for O, got %q", lines[1])
	}
}

func TestProject_JSON(t *testing.T) {
	out, err := run(t, "project", "--json", writeFile(t, "water.xyz", waterXYZ))
	if err != nil {
		t.Fatalf("project --json failed: %v", err)
	}
	var s scene.Scene
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("output is not a scene: %v", err)
	}
	if len(s.Spheres) != 3 || len(s.CellEdges) != 12 || len(s.Arrows) != 3 {
		t.Errorf("unexpected scene counts: %d spheres, %d edges, %d arrows", len(s.Spheres), len(s.CellEdges), len(s.Arrows))
	}
	if s.Formula != "H2O" {
		t.Errorf("formula = %q", s.Formula)
	}
}

func TestConvert(t *testing.T) {
	in := writeFile(t, "water.xyz", waterXYZ)

	out, err := run(t, "convert", in, "--pos-scale", "2")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	m, err := formats.ParseSmol([]byte(out))
	if err != nil {
		t.Fatalf("output is not smol: %v\n%s", err, out)
	}
	if m.CoordType != molecule.CoordCartesian || m.PosScale != 2 {
		t.Errorf("unexpected coord type %s / scale %g", m.CoordType, m.PosScale)
	}
	if len(m.Bonds) != 2 {
		t.Errorf("expected 2 inferred bonds, got %v", m.Bonds)
	}
	for _, b := range m.Bonds {
		if b[0] != 0 && b[1] != 0 {
			t.Errorf("bond %v should involve oxygen", b)
		}
	}
	if len(m.Elements) != 2 {
		t.Errorf("element map should only hold O and H, got %d entries", len(m.Elements))
	}

	path := filepath.Join(t.TempDir(), "water.smol")
	if _, err := run(t, "convert", in, path); err != nil {
		t.Fatalf("convert to file failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != out {
		t.Error("file output differs from stdout output")
	}
}

func TestConvert_Flags(t *testing.T) {
	in := writeFile(t, "water.xyz", waterXYZ)
	if _, err := run(t, "convert", in, "--distance", "surface"); err == nil {
		t.Error("expected error for unknown distance mode")
	}
	if _, err := run(t, "convert", in, "--pos-scale", "0"); err == nil {
		t.Error("expected error for zero pos scale")
	}
}

func TestConvert_ToXYZ(t *testing.T) {
	cml := `<molecule id="water"><atomArray>
<atom id="a1" elementType="O" x3="0.5" y3="0.5" z3="0.5"/>
<atom id="a2" elementType="H" x3="0.6" y3="0.55" z3="0.5"/>
<atom id="a3" elementType="H" x3="0.4" y3="0.55" z3="0.5"/>
</atomArray></molecule>`

	out, err := run(t, "convert", "--to", "xyz", writeFile(t, "water.cml", cml))
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if out != waterXYZ {
		t.Errorf("convert --to xyz = %q, want %q", out, waterXYZ)
	}

	if _, err := run(t, "convert", "--to", "pdb", writeFile(t, "water.cml", cml)); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestStdin(t *testing.T) {
	out, err := runIn(t, waterXYZ, "--format", "xyz", "info", "-")
	if err != nil {
		t.Fatalf("info from stdin failed: %v", err)
	}
	if !strings.Contains(out, "H2O") {
		t.Errorf("expected formula in output:\n%s", out)
	}

	out, err = runIn(t, waterXYZ, "--format", "xyz", "convert", "-", "--to", "xyz")
	if err != nil {
		t.Fatalf("convert from stdin failed: %v", err)
	}
	if out != waterXYZ {
		t.Errorf("convert from stdin = %q", out)
	}

	if _, err := runIn(t, waterXYZ, "info", "-"); err == nil {
		t.Error("stdin without --format should fail")
	}
}

func TestExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "water.glb")
	if _, err := run(t, "export", "--cylinders", writeFile(t, "water.xyz", waterXYZ), out); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[:4]) != "glTF" {
		t.Errorf("expected binary glTF header, got %q", data[:min(4, len(data))])
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "smolview.yaml")

	out, err := run(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("expected path on stdout, got %q", out)
	}

	if _, err := run(t, "--config", path, "info", writeFile(t, "water.xyz", waterXYZ)); err != nil {
		t.Errorf("written config should load: %v", err)
	}

	if _, err := run(t, "config", "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := run(t, "config", "init", "--force", path); err != nil {
		t.Errorf("--force should overwrite: %v", err)
	}
}

func TestElements(t *testing.T) {
	out, err := run(t, "elements", "o", "SI")
	if err != nil {
		t.Fatalf("elements failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "Oxygen") || !strings.Contains(lines[1], "#ff0d0d") || !strings.Contains(lines[1], "element.O.png") {
		t.Errorf("unexpected oxygen row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "14") {
		t.Errorf("expected silicon (Z=14), got %q", lines[2])
	}

	all, err := run(t, "elements")
	if err != nil {
		t.Fatalf("elements failed: %v", err)
	}
	if n := strings.Count(all, "\n"); n < 100 {
		t.Errorf("expected the full table, got %d lines", n)
	}

	if _, err := run(t, "elements", "Qq"); err == nil {
		t.Error("expected error for an unknown symbol")
	}
}
