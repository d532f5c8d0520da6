// Command grayscale converts a JPEG or PNG image to 8-bit grayscale PNG.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Spor195/tablerointraoperatorio/internal/grayscale"
)

func main() {
	in := flag.String("in", "", "input image (jpeg or png)")
	out := flag.String("out", "", "output png path (default: <input>_gray.png)")
	width := flag.Int("width", 0, "output width in pixels, 0 keeps the source size")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: grayscale -in input.jpg [-out output.png] [-width 800]")
		os.Exit(2)
	}
	if *width < 0 {
		fmt.Fprintln(os.Stderr, "grayscale: width must not be negative")
		os.Exit(2)
	}

	target := *out
	if target == "" {
		base := strings.TrimSuffix(*in, filepath.Ext(*in))
		target = base + "_gray.png"
	}

	if err := run(*in, target, *width); err != nil {
		fmt.Fprintf(os.Stderr, "grayscale: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", target)
}

func run(in, out string, width int) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := grayscale.Convert(src, grayscale.Options{Width: width})
	if err != nil {
		return err
	}

	dst, err := os.Create(out)
	if err != nil {
		return err
	}

	if err := grayscale.EncodePNG(dst, img); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
