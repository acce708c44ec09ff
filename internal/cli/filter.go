package cli

import (
	"fmt"

	"xsim/internal/filter"
	xsimimage "xsim/internal/image"

	"github.com/spf13/cobra"
)

func newFilterCmd() *cobra.Command {
	var (
		in, out, name, enhance string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Apply a screening filter to an image file",
		Example: `  xsim filter --in bag.png --out bag_neg.png --filter NEG
  xsim filter --in bag.png --out bag_sen.png --filter SEN --enhance threshold`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := filter.ParseKind(name)
			if err != nil {
				return err
			}
			mode, err := filter.ParseEnhanceMode(enhance)
			if err != nil {
				return err
			}
			src, err := xsimimage.Load(in)
			if err != nil {
				return err
			}

			img := xsimimage.ToRGBA(src)
			filter.Apply(kind, img, filter.Options{Enhance: mode})
			if err := xsimimage.SavePNG(out, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", in, out, kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input image")
	cmd.Flags().StringVar(&out, "out", "", "output PNG")
	cmd.Flags().StringVar(&name, "filter", "NEG", "filter: B&W, NEG, O2, OS, HI, SEN, or Normal")
	cmd.Flags().StringVar(&enhance, "enhance", filter.EnhanceSobel.String(), "super-enhance mode: sobel or threshold")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
