package watermark

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Default locations, relative to the working directory.
const (
	DefaultInputDir  = "imgs_nao_marcadas"
	DefaultOutputDir = "imgs_marcadas"
	DefaultLogoPath  = "marca_dagua.png"
	DefaultSuffix    = "_marcado"
)

var (
	// ErrLogoUnavailable aborts a batch when the logo cannot be loaded.
	ErrLogoUnavailable = errors.New("logo not available")
	// ErrInputDir aborts a batch when the input directory cannot be listed.
	ErrInputDir = errors.New("input directory not available")
)

var (
	rasterExts = []string{".png", ".jpg", ".jpeg"}
	rawExts    = []string{".cr2"}
)

// IsRaw reports whether name has a camera raw extension.
func IsRaw(name string) bool {
	return hasExt(name, rawExts)
}

// MatchesExtension reports whether name is a raw or raster file the batch
// processes. The comparison ignores case.
func MatchesExtension(name string) bool {
	return hasExt(name, rawExts) || hasExt(name, rasterExts)
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Batch watermarks every matching file of InputDir into OutputDir.
type Batch struct {
	InputDir  string
	OutputDir string
	LogoPath  string
	Suffix    string
	Options   Options
	Raw       RawDecoder
	Logger    *log.Logger
}

// DefaultBatch returns the fixed-directory configuration backed by dcraw.
func DefaultBatch() *Batch {
	return &Batch{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		LogoPath:  DefaultLogoPath,
		Suffix:    DefaultSuffix,
		Options:   DefaultOptions(),
		Raw:       DcrawDecoder{},
		Logger:    log.New(os.Stdout, "", 0),
	}
}

// Report lists what a run did with each file.
type Report struct {
	Found   int
	Written []string
	Skipped []string
}

func (b *Batch) logf(format string, args ...interface{}) {
	if b.Logger != nil {
		b.Logger.Printf(format, args...)
	}
}

// EnsureDirs creates the input and output directories when missing.
func (b *Batch) EnsureDirs() error {
	b.logf("[+] Checking directories...")

	for _, dir := range []string{b.OutputDir, b.InputDir} {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			b.logf(" -> Directory '%s' already exists.", dir)
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		b.logf(" -> Directory '%s' created.", dir)
	}

	return nil
}

// Run executes the batch. Only a missing logo, an unreadable input directory,
// invalid options or ctx cancellation stop it; other failures skip the file.
func (b *Batch) Run(ctx context.Context) (*Report, error) {
	eng, err := NewEngine(b.Options)
	if err != nil {
		b.logf("ERROR: %v. Aborting.", err)
		return nil, err
	}

	if err := b.EnsureDirs(); err != nil {
		b.logf("ERROR: %v. Aborting.", err)
		return nil, err
	}

	b.logf("")
	b.logf("[+] Starting image processing...")

	logo, err := LoadImage(b.LogoPath)
	if err != nil {
		b.logf("ERROR: could not load logo '%s': %v. Aborting.", b.LogoPath, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrLogoUnavailable, b.LogoPath, err)
	}

	entries, err := os.ReadDir(b.InputDir)
	if err != nil {
		b.logf("ERROR: input directory '%s' not found. Aborting.", b.InputDir)
		return nil, fmt.Errorf("%w: %s: %v", ErrInputDir, b.InputDir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && MatchesExtension(e.Name()) {
			names = append(names, e.Name())
		}
	}

	rep := &Report{Found: len(names)}
	if len(names) == 0 {
		b.logf("[!] No images found in '%s'.", b.InputDir)
		return rep, nil
	}

	b.logf("[+] %d images found to process.", len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		b.logf(" -> Processing (%d/%d): %s", i+1, len(names), name)

		out, err := b.processFile(ctx, eng, logo, name)
		if err != nil {
			b.logf("    -> Warning: %v. Skipping.", err)
			rep.Skipped = append(rep.Skipped, name)
			continue
		}

		b.logf("    -> Image saved to: %s", out)
		rep.Written = append(rep.Written, out)
	}

	return rep, nil
}

func (b *Batch) processFile(ctx context.Context, eng *Engine, logo *Pixmap, name string) (string, error) {
	in := filepath.Join(b.InputDir, name)

	var (
		img *Pixmap
		err error
	)
	if IsRaw(name) {
		if b.Raw == nil {
			return "", fmt.Errorf("no raw decoder configured for %s", name)
		}
		img, err = ReadRaw(ctx, b.Raw, in)
	} else {
		img, err = LoadImage(in)
	}
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", name, err)
	}

	marked, err := eng.Apply(img, logo)
	if err != nil {
		return "", fmt.Errorf("could not watermark %s: %w", name, err)
	}

	out := filepath.Join(b.OutputDir, OutputName(name, b.Suffix))
	if err := SavePNG(out, marked); err != nil {
		return "", fmt.Errorf("could not write %s: %w", out, err)
	}

	return out, nil
}
