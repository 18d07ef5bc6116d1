package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	watermark "github.com/gcslaoli/photo-watermark-go"
)

// go run ./cmd/marcadagua
// go run ./cmd/marcadagua -opacity 0.5 -scale 0.25
// go run ./cmd/marcadagua -in photos -out marked -logo logo.png -interp lanczos3

func main() {
	b := watermark.DefaultBatch()

	input := flag.String("in", b.InputDir, "Directory with the images to watermark (cr2/png/jpg/jpeg)")
	output := flag.String("out", b.OutputDir, "Directory for the watermarked PNG files")
	logo := flag.String("logo", b.LogoPath, "Path to the watermark logo image")
	suffix := flag.String("suffix", b.Suffix, "Suffix appended to output file names")
	opacity := flag.Float64("opacity", b.Options.Opacity, "Logo opacity in [0, 1]")
	scale := flag.Float64("scale", b.Options.Scale, "Logo width as a fraction of the image width, in (0, 1]")
	interp := flag.String("interp", b.Options.Interpolation.String(), "Logo resampling: bilinear, nearest, catmullrom, lanczos3")
	dcraw := flag.String("dcraw", "dcraw", "dcraw executable used for raw files")
	flag.Parse()

	mode, err := watermark.ParseInterpolation(*interp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse flags: %v\n", err)
		os.Exit(2)
	}

	b.InputDir = *input
	b.OutputDir = *output
	b.LogoPath = *logo
	b.Suffix = *suffix
	b.Options.Opacity = *opacity
	b.Options.Scale = *scale
	b.Options.Interpolation = mode
	b.Raw = watermark.DcrawDecoder{Binary: *dcraw}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := b.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "watermark batch: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n[+] Processing finished: %d written, %d skipped.\n", len(rep.Written), len(rep.Skipped))
}
