package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xsim/internal/history"
	xsimimage "xsim/internal/image"
	"xsim/internal/model"
	"xsim/internal/prefs"
	"xsim/pkg/geometry"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	if err := xsimimage.SavePNG(path, img); err != nil {
		t.Fatal(err)
	}
}

func TestParseRect(t *testing.T) {
	r, err := parseRect(" 1, 2.5,30,4 ")
	if err != nil {
		t.Fatalf("parseRect() error = %v", err)
	}
	if r != (geometry.Rect{X: 1, Y: 2.5, W: 30, H: 4}) {
		t.Errorf("rect = %+v", r)
	}
	for _, bad := range []string{"", "1,2,3", "1,2,3,x"} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q) accepted", bad)
		}
	}
}

func TestFilterCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writePNG(t, in, 4, 4, color.RGBA{0, 100, 255, 255})

	if _, err := run(t, "filter", "--in", in, "--out", out, "--filter", "neg"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	img, err := xsimimage.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 255 || g>>8 != 155 || b>>8 != 0 {
		t.Errorf("pixel = %d,%d,%d, want negative", r>>8, g>>8, b>>8)
	}

	if _, err := run(t, "filter", "--in", in, "--out", out, "--filter", "sepia"); err == nil {
		t.Error("unknown filter accepted")
	}
}

func TestComposeShared(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	item := filepath.Join(dir, "item.png")
	writePNG(t, bg, 60, 60, color.RGBA{200, 200, 200, 255})
	writePNG(t, item, 10, 10, color.RGBA{100, 100, 100, 255})
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "compose", "--top-bg", bg, "--side-bg", bg, "--item", item,
		"--x", "5", "--y", "5", "--z", "30", "--w", "10", "--h", "10", "--normal", "--preview", "--out", outDir)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for _, name := range []string{"top.png", "side.png", "top_preview.png", "side_preview.png", "itempos.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "itempos.json"))
	if err != nil {
		t.Fatal(err)
	}
	pos, err := model.ParsePosition(data)
	if err != nil {
		t.Fatal(err)
	}
	if pos.Z == nil || *pos.Z != 30 || pos.W != 10 {
		t.Errorf("position = %+v", pos)
	}

	side, err := xsimimage.Load(filepath.Join(outDir, "side.png"))
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := side.At(8, 33).RGBA(); r>>8 != 100 {
		t.Errorf("side item pixel = %d", r>>8)
	}
}

func TestComposePreexistingNeedsRects(t *testing.T) {
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	writePNG(t, bg, 10, 10, color.White)

	_, err := run(t, "compose", "--preexisting", "--top-bg", bg, "--side-bg", bg, "--top-rect", "1,1,2,2", "--out", dir)
	if err == nil || !strings.Contains(err.Error(), "--side-rect") {
		t.Errorf("error = %v, want --side-rect complaint", err)
	}

	_, err = run(t, "compose", "--preexisting", "--top-bg", bg, "--side-bg", bg,
		"--top-rect", "1,1,2,2", "--side-rect", "3,3,2,2", "--out", dir)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "itempos.json"))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["side"]; !ok {
		t.Errorf("independent position not recorded: %s", data)
	}
}

func TestLoginAndSummary(t *testing.T) {
	dir := t.TempDir()
	prefsPath := filepath.Join(dir, "prefs.json")
	dataDir := filepath.Join(dir, "data")

	out, err := run(t, "login", "--prefs", prefsPath, "--token", "secret-token", "--user", "12")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if strings.Contains(out, "secret-token") {
		t.Error("token written to the log")
	}
	p := prefs.LoadFrom(prefsPath)
	if p.Token() != "secret-token" || p.UserID() != 12 {
		t.Fatalf("cached credentials = %q, %d", p.Token(), p.UserID())
	}

	if _, err := run(t, "login", "--prefs", prefsPath); err == nil {
		t.Error("login without flags accepted")
	}

	sum := model.Summary{
		Score: 4, Hits: 4, FalseAlarms: 1, Efficiency: 80, Credit: 16, Area: 1,
		CategoryStats: map[int]model.CategoryStat{1: {Hits: 4, Total: 5}},
		FinishedAt:    time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
	}
	p.SetLastSummary(sum)
	if err := p.Save(); err != nil {
		t.Fatal(err)
	}
	store, err := history.Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(context.Background(), sum); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out, err = run(t, "summary", "--prefs", prefsPath, "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"Screening Session Summary", "80.0%", "History", "1 sessions"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "login", "--prefs", prefsPath, "--clear"); err != nil {
		t.Fatal(err)
	}
	if p := prefs.LoadFrom(prefsPath); p.Token() != "" || p.UserID() != 0 {
		t.Error("credentials not cleared")
	}
}
