package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"xsim/internal/api"
	xsimimage "xsim/internal/image"
	"xsim/internal/model"
	"xsim/pkg/geometry"

	"github.com/spf13/cobra"
)

type composeOptions struct {
	topBG, sideBG     string
	topItem, sideItem string
	x, y, z, w, h     float64
	threshold         float64
	opacity           float64
	normalBlend       bool

	preexisting bool
	topRect     string
	sideRect    string

	out     string
	preview bool

	upload      bool
	itemImageID int
	area        int
	category    int
	examType    string
}

func newComposeCmd(opts *globalOptions) *cobra.Command {
	o := &composeOptions{}

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Author a bag: composite an item onto top and side backgrounds",
		Long: `compose builds the top and side images of a training bag.

By default the item image is masked (pixels brighter than --threshold drop
out) and multiplied onto each background at a shared rectangle: (x, y) on
the top view and (x, z) on the side view.

With --preexisting the inputs are already composited; they are fitted to the
800x600 authoring canvas and one rectangle per view is recorded.`,
		Example: `  xsim compose --top-bg bag_top.png --side-bg bag_side.png \
    --item knife.png --x 320 --y 140 --z 260 --w 90 --h 40 --out build/

  xsim compose --preexisting --top-bg top.jpg --side-bg side.jpg \
    --top-rect 120,80,60,30 --side-rect 118,300,62,28 --preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			authored, err := o.author()
			if err != nil {
				return err
			}
			if err := o.write(cmd, authored); err != nil {
				return err
			}
			if !o.upload {
				return nil
			}

			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			client := opts.client(cfg, opts.prefs(), logger)
			code, err := o.submit(cmd, client, authored)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", code)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.topBG, "top-bg", "", "top view background image")
	f.StringVar(&o.sideBG, "side-bg", "", "side view background image")
	f.StringVar(&o.topItem, "item", "", "item image for the top view")
	f.StringVar(&o.sideItem, "side-item", "", "item image for the side view (default: --item)")
	f.Float64Var(&o.x, "x", 0, "item left edge")
	f.Float64Var(&o.y, "y", 0, "item top edge on the top view")
	f.Float64Var(&o.z, "z", -1, "item top edge on the side view (default: --y)")
	f.Float64Var(&o.w, "w", 0, "item width")
	f.Float64Var(&o.h, "h", 0, "item height")
	f.Float64Var(&o.threshold, "threshold", xsimimage.DefaultOptions().Threshold, "luma above which item pixels become transparent")
	f.Float64Var(&o.opacity, "opacity", 1, "item opacity 0..1")
	f.BoolVar(&o.normalBlend, "normal", false, "paint the item over the background instead of multiplying")
	f.BoolVar(&o.preexisting, "preexisting", false, "inputs are finished views; record rectangles only")
	f.StringVar(&o.topRect, "top-rect", "", "threat box on the top view as x,y,w,h")
	f.StringVar(&o.sideRect, "side-rect", "", "threat box on the side view as x,y,w,h")
	f.StringVar(&o.out, "out", ".", "output directory")
	f.BoolVar(&o.preview, "preview", false, "also write previews with the threat boxes outlined")
	f.BoolVar(&o.upload, "upload", false, "submit the bag to the registry")
	f.IntVar(&o.itemImageID, "item-image-id", 0, "registry item image id (upload)")
	f.IntVar(&o.area, "area", 1, "screening area id (upload)")
	f.IntVar(&o.category, "category", model.ClearCategoryID, "threat category id (upload)")
	f.StringVar(&o.examType, "exam-type", "CBT", "exam type code (upload)")
	return cmd
}

func (o *composeOptions) author() (xsimimage.Authored, error) {
	if o.preexisting {
		top, err := loadRequired(o.topBG, "--top-bg")
		if err != nil {
			return xsimimage.Authored{}, err
		}
		side, err := loadRequired(o.sideBG, "--side-bg")
		if err != nil {
			return xsimimage.Authored{}, err
		}
		tr, err := parseRect(o.topRect)
		if err != nil {
			return xsimimage.Authored{}, fmt.Errorf("--top-rect: %w", err)
		}
		sr, err := parseRect(o.sideRect)
		if err != nil {
			return xsimimage.Authored{}, fmt.Errorf("--side-rect: %w", err)
		}
		return xsimimage.AuthorPreexisting(top, side, tr, sr)
	}

	topBG, err := loadOptional(o.topBG)
	if err != nil {
		return xsimimage.Authored{}, err
	}
	sideBG, err := loadOptional(o.sideBG)
	if err != nil {
		return xsimimage.Authored{}, err
	}
	item, err := loadRequired(o.topItem, "--item")
	if err != nil {
		return xsimimage.Authored{}, err
	}
	sideItem, err := loadOptional(o.sideItem)
	if err != nil {
		return xsimimage.Authored{}, err
	}

	pos := model.ItemPosition{X: o.x, Y: o.y, W: o.w, H: o.h}
	if o.z >= 0 {
		z := o.z
		pos.Z = &z
	}
	opts := xsimimage.Options{Threshold: o.threshold, Opacity: o.opacity, Multiply: !o.normalBlend}
	return xsimimage.AuthorShared(topBG, sideBG, item, sideItem, pos, opts)
}

func (o *composeOptions) write(cmd *cobra.Command, a xsimimage.Authored) error {
	if err := os.MkdirAll(o.out, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	files := map[string]image.Image{"top.png": a.Top, "side.png": a.Side}
	if o.preview {
		pt, ps := a.Preview()
		files["top_preview.png"] = pt
		files["side_preview.png"] = ps
	}
	for name, img := range files {
		if err := xsimimage.SavePNG(filepath.Join(o.out, name), img); err != nil {
			return err
		}
	}

	pos, err := json.MarshalIndent(a.Position, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode item position: %w", err)
	}
	posPath := filepath.Join(o.out, "itempos.json")
	if err := os.WriteFile(posPath, append(pos, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", posPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", o.out)
	return nil
}

func (o *composeOptions) submit(cmd *cobra.Command, client *api.Client, a xsimimage.Authored) (string, error) {
	if o.itemImageID <= 0 {
		return "", fmt.Errorf("--item-image-id is required for upload")
	}
	var top, side bytes.Buffer
	if err := xsimimage.EncodePNG(&top, a.Top); err != nil {
		return "", err
	}
	if err := xsimimage.EncodePNG(&side, a.Side); err != nil {
		return "", err
	}

	ctx := cmd.Context()
	next, err := client.NextCode(ctx, o.area, o.itemImageID)
	if err != nil {
		return "", fmt.Errorf("failed to get next registry number: %w", err)
	}
	code := api.RegistryCode(time.Now().Year(), o.examType, o.area, o.category, next)

	err = client.UploadBaggage(ctx, api.Upload{
		Top:         top.Bytes(),
		Side:        side.Bytes(),
		ItemImageID: o.itemImageID,
		AreaID:      o.area,
		CategoryID:  o.category,
		ExamType:    o.examType,
		Code:        code,
		Position:    a.Position,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", code, err)
	}
	return code, nil
}

func loadRequired(path, flag string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%s is required", flag)
	}
	return xsimimage.Load(path)
}

func loadOptional(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	return xsimimage.Load(path)
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("want x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid number %q: %w", p, err)
		}
		v[i] = f
	}
	return geometry.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
