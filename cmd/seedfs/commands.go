package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/absfs/seedfs"
	"github.com/absfs/seedfs/seedpack"
)

func runCompress(a *app, args []string) error {
	var in, out string
	fs := newFlagSet("compress", "-i in -o out")
	fs.StringVarP(&in, "input", "i", "", "file to compress (- for stdin)")
	fs.StringVarP(&out, "output", "o", "", "container to write (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.readInput(in)
	if err != nil {
		return err
	}
	c, err := a.compressor.Compress(data)
	if err != nil {
		return err
	}
	wire, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	if err := a.writeOutput(out, wire); err != nil {
		return err
	}
	a.logger.Info("compressed",
		zap.Stringer("kind", c.Kind()),
		zap.Int("size", len(data)),
		zap.Int("container", len(wire)),
		zap.Float64("ratio", seedpack.CompressionRatio(len(data), len(wire))))
	return nil
}

func runDecompress(a *app, args []string) error {
	var in, out string
	fs := newFlagSet("decompress", "-i in -o out")
	fs.StringVarP(&in, "input", "i", "", "container to read (- for stdin)")
	fs.StringVarP(&out, "output", "o", "", "file to write (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wire, err := a.readInput(in)
	if err != nil {
		return err
	}
	data, err := a.decompressor.DecompressBytes(wire)
	if err != nil {
		return err
	}
	return a.writeOutput(out, data)
}

func runInspect(a *app, args []string) error {
	var in string
	fs := newFlagSet("inspect", "-i container")
	fs.StringVarP(&in, "input", "i", "", "container to describe (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	wire, err := a.readInput(in)
	if err != nil {
		return err
	}
	c, err := seedpack.UnmarshalContainer(wire)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "kind:\t%s\n", c.Kind())
	fmt.Fprintf(w, "seed:\t%s\n", describeSeed(c.Seed))
	fmt.Fprintf(w, "original size:\t%d\n", c.OriginalSize)
	fmt.Fprintf(w, "container size:\t%d\n", len(wire))
	fmt.Fprintf(w, "ratio:\t%.1f:1\n", c.Ratio())
	fmt.Fprintf(w, "digest:\t%s\n", c.Digest)
	return w.Flush()
}

func runAnalyze(a *app, args []string) error {
	var in string
	fs := newFlagSet("analyze", "-i in")
	fs.StringVarP(&in, "input", "i", "", "file to analyze (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.readInput(in)
	if err != nil {
		return err
	}
	r, err := a.compressor.Analyze(data)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "size:\t%d\n", r.Size)
	fmt.Fprintf(w, "entropy:\t%.3f bits/byte (normalized %.3f)\n", r.Entropy, r.NormalizedEntropy)
	fmt.Fprintf(w, "dictionary ratio:\t%.3f\n", r.DictionaryRatio)
	fmt.Fprintf(w, "potential:\t%s\n", r.Potential)
	fmt.Fprintf(w, "selected:\t%s (%.1f:1)\n", r.Selected, r.Ratio)
	if r.Selected == seedpack.KindRaw && r.Size > 0 {
		fmt.Fprintln(w, "note:\traw seeds are stored hex encoded, about twice the input size")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "KIND\tSIZE\tRATIO\tVERIFIED")
	for _, cand := range r.Candidates {
		verified := "yes"
		if !cand.Verified {
			verified = "no"
			if cand.Err != nil {
				verified = "no: " + cand.Err.Error()
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f:1\t%s\n", cand.Kind(), cand.Size(), cand.Ratio(), verified)
	}
	return w.Flush()
}

func runScale(a *app, args []string) error {
	var maxDepth int
	fs := newFlagSet("scale", "[--max-depth n]")
	fs.IntVar(&maxDepth, "max-depth", 9, "deepest Koch iteration to compress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if maxDepth < 1 || maxDepth > a.config.Compressor.MaxLSystemDepth {
		return fmt.Errorf("--max-depth must be in [1, %d]", a.config.Compressor.MaxLSystemDepth)
	}

	var koch seedpack.LSystem
	for _, l := range seedpack.Catalog() {
		if l.Name == "koch" {
			koch = l
		}
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Koch n\tSize\tCompressed\tRatio\tKind\t")
	for n := 1; n <= maxDepth; n++ {
		data, err := koch.Expand(n, seedpack.MaxInputSize)
		if err != nil {
			return err
		}
		if err := scaleRow(a, w, fmt.Sprint(n), data); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "\t\t\t\t\t")
	fmt.Fprintln(w, "Pattern count\tSize\tCompressed\tRatio\tKind\t")
	pattern := []byte("The quick brown fox jumps over the lazy dog. ")
	for _, count := range []int{10, 100, 1000, 10000, 100000} {
		if err := scaleRow(a, w, fmt.Sprint(count), bytes.Repeat(pattern, count)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func scaleRow(a *app, w io.Writer, label string, data []byte) error {
	wire, err := a.compressor.CompressBytes(data)
	if err != nil {
		return err
	}
	c, err := seedpack.UnmarshalContainer(wire)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%d\t%d\t%.1f:1\t%s\t\n",
		label, len(data), len(wire), seedpack.CompressionRatio(len(data), len(wire)), c.Kind())
	return err
}

func runPut(a *app, args []string) error {
	var root, in string
	fs := newFlagSet("put", "--root dir name -i in")
	fs.StringVar(&root, "root", "", "storage directory")
	fs.StringVarP(&in, "input", "i", "", "file to store (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("put takes exactly one name")
	}

	sfs, err := a.storage(root)
	if err != nil {
		return err
	}
	data, err := a.readInput(in)
	if err != nil {
		return err
	}
	return sfs.WriteFile(fs.Arg(0), data, 0o644)
}

func runGet(a *app, args []string) error {
	var root, out string
	fs := newFlagSet("get", "--root dir name -o out")
	fs.StringVar(&root, "root", "", "storage directory")
	fs.StringVarP(&out, "output", "o", "-", "file to write (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("get takes exactly one name")
	}

	sfs, err := a.storage(root)
	if err != nil {
		return err
	}
	data, err := sfs.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	return a.writeOutput(out, data)
}

func runList(a *app, args []string) error {
	var root string
	fs := newFlagSet("ls", "--root dir [path]")
	fs.StringVar(&root, "root", "", "storage directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	sfs, err := a.storage(root)
	if err != nil {
		return err
	}
	entries, err := sfs.ReadDir(dir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	files := 0
	for _, e := range entries {
		name := strings.TrimPrefix(dir+"/"+e.Name(), "./")
		if e.IsDir() {
			fmt.Fprintf(w, "%s/\t-\tdir\n", e.Name())
			continue
		}
		files++
		info, err := sfs.Stat(name)
		if err != nil {
			return err
		}
		kind := "stored as-is"
		if c, err := sfs.Inspect(name); err == nil {
			kind = c.Kind().String()
		} else if !errors.Is(err, seedfs.ErrNotContainer) {
			kind = "unreadable"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name(), info.Size(), kind)
	}
	fmt.Fprintf(w, "%s\n", plural(files, "file"))
	return w.Flush()
}

// describeSeed summarizes a seed on one line. Byte fields are reported by
// length.
func describeSeed(seed seedpack.Seed) string {
	switch s := seed.(type) {
	case seedpack.RepeatedPatternSeed:
		return fmt.Sprintf("pattern %q x %d", truncate(s.Pattern, 32), s.Count)
	case seedpack.ArithmeticSeed:
		return fmt.Sprintf("start %d step %d count %d", s.Start, s.Step, s.Count)
	case seedpack.GeometricSeed:
		return fmt.Sprintf("start %d ratio %d/%d count %d", s.Start, s.Ratio.Num, s.Ratio.Den, s.Count)
	case seedpack.FibonacciSeed:
		return fmt.Sprintf("a %d b %d count %d", s.A, s.B, s.Count)
	case seedpack.PowerSeed:
		return fmt.Sprintf("base %d count %d", s.Base, s.Count)
	case seedpack.PrimeSeed:
		return fmt.Sprintf("first %d primes", s.Count)
	case seedpack.LSystemSeed:
		name := s.Name
		if name == "" {
			name = "custom"
		}
		return fmt.Sprintf("%s axiom %q, %s, %d iterations", name, s.Axiom, plural(len(s.Rules), "rule"), s.Iterations)
	case seedpack.DictionarySeed:
		return fmt.Sprintf("%s, %d coded bytes", s.Codec, len(s.Data))
	case seedpack.RawSeed:
		return fmt.Sprintf("%d bytes", len(s.Data))
	}
	return fmt.Sprintf("%v", seed)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
