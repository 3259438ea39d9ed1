// Package render drives batch rasterization: it walks the input (a single
// markup file, a directory tree or a zip archive), renders every document it
// finds and encodes the results into the configured raster format.
package render

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"vgr/archive"
	"vgr/config"
	"vgr/dom"
	"vgr/markup"
	"vgr/state"
)

// job carries the per-document state used for output naming.
type job struct {
	id     string
	src    string
	format config.OutputFmt
	doc    *markup.Document
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Render.Output.Format
	if to := cmd.String("to"); len(to) > 0 {
		if f, ferr := config.ParseOutputFmt(to); ferr != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Error(ferr))
		} else {
			format = f
		}
	}

	if env.Cfg.Render.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Render.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read style css from %q: %w", env.Cfg.Render.StylesheetPath, err)
		}
		env.DefaultStyle = data
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) == 0 {
		cp = env.Cfg.Render.CodePage
	}
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	// destination ending in .zip switches to bundle mode, everything rendered
	// goes into a single archive
	var bnd *bundle
	if strings.EqualFold(filepath.Ext(dst), ".zip") {
		if bnd, err = newBundle(dst); err != nil {
			return err
		}
		defer func() {
			if cerr := bnd.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, bnd, log)
}

// process handles the core batch logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and
// processes accordingly.
func process(ctx context.Context, src, dst string, format config.OutputFmt, bnd *bundle, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, format, bnd, log); err != nil {
				return errors.New("unable to process directory")
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, tail, "", dst, format, bnd, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		isDoc, err := isMarkupFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if isDoc && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				break
			}
			defer file.Close()
			if err := renderDoc(ctx, file, filepath.Base(head), filepath.Dir(head), dst, format, bnd, log); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as vector markup (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks the directory tree in natural order, finding markup files
// and rendering them.
func processDir(ctx context.Context, dir, dst string, format config.OutputFmt, bnd *bundle, log *zap.Logger) error {
	count := 0
	defer func() {
		if count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	var walk func(string) error
	walk = func(d string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := os.ReadDir(d)
		if err != nil {
			log.Warn("Skipping path", zap.String("path", d), zap.Error(err))
			return nil
		}
		// "image2" sorts before "image10"
		sort.Slice(entries, func(i, j int) bool {
			return natural.Less(entries[i].Name(), entries[j].Name())
		})

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(d, e.Name())
			if e.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			if !e.Type().IsRegular() {
				continue
			}

			isArc, err := isArchiveFile(path)
			if err != nil {
				log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
				continue
			}
			if isArc {
				if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, format, bnd, log); err != nil {
					log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				}
				continue
			}

			isDoc, err := isMarkupFile(path)
			if err != nil {
				log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
				continue
			}
			if !isDoc {
				log.Debug("Skipping file, not recognized as markup or archive", zap.String("file", path))
				continue
			}

			count++

			file, err := os.Open(path)
			if err != nil {
				log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
				continue
			}

			src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
			if err := renderDoc(ctx, file, src, filepath.Dir(path), dst, format, bnd, log); err != nil {
				log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			}
			file.Close()
		}
		return nil
	}
	return walk(dir)
}

// processArchive walks all files inside an archive, finds markup documents
// under pathIn and renders them. Image hrefs inside archives are not
// resolvable, archived documents are expected to be self-contained.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, format config.OutputFmt, bnd *bundle, log *zap.Logger) error {
	count := 0
	defer func() {
		if count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	return archive.Walk(path, pathIn, markupExtensions, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			log.Error("Unable to read file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}

		if !sniffMarkup(data[:min(len(data), 1024)]) {
			log.Debug("Skipping file, not recognized as markup", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		env := state.EnvFromContext(ctx)

		pathInArchive := f.FileHeader.Name
		if env.CodePage != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := env.CodePage.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(env.CodePage)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := renderDoc(ctx, bytes.NewReader(data), filepath.Join(pathOut, pathInArchive), "", dst, format, bnd, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
}

// renderDoc renders a single markup document. "src" is the source path
// relative to the input root (used for output naming), "baseDir" resolves
// relative image hrefs and is empty for archive entries.
func renderDoc(ctx context.Context, r io.Reader, src, baseDir, dst string, format config.OutputFmt, bnd *bundle, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	id := uuid.NewString()
	var outputName string

	log.Info("Render starting", zap.String("from", src), zap.String("job_id", id))
	defer func(start time.Time) {
		// NOTE: some of golang graphic processing libraries are not mature
		// enough, if multiple documents are being processed we do not want to stop.
		if r := recover(); r != nil {
			log.Error("Render ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("render panic: %v", r)
		} else {
			log.Info("Render completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("job_id", id))
		}
	}(time.Now())

	data, err := io.ReadAll(selectReader(r, env.CodePage))
	if err != nil {
		return fmt.Errorf("unable to read markup source (%s): %w", src, err)
	}

	parser := markup.NewParser(log)
	parser.BaseDir = baseDir
	parser.DefaultStyle = env.DefaultStyle

	doc, err := parser.Parse(data)
	if err != nil {
		return fmt.Errorf("unable to parse markup source (%s): %w", src, err)
	}

	cnv := doc.NewCanvas()
	if err := doc.Root.Rasterize(dom.NewContext(cnv, log)); err != nil {
		return fmt.Errorf("unable to rasterize (%s): %w", src, err)
	}

	j := &job{id: id, src: src, format: format, doc: doc}
	quality := env.Cfg.Render.Output.JPEGQuality

	if bnd != nil {
		outputName = buildOutputPath(j, src, "", env)
		w, err := bnd.Create(outputName)
		if err != nil {
			return fmt.Errorf("unable to create bundle entry: %w", err)
		}
		return encode(w, cnv.Image(), format, quality)
	}

	outputName = buildOutputPath(j, src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	out, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer out.Close()

	if err := encode(out, cnv.Image(), format, quality); err != nil {
		return fmt.Errorf("unable to encode output: %w", err)
	}

	// Store render result for debugging
	env.Rpt.Store(fmt.Sprintf("result-%s%s", id, format.Ext()), outputName)
	return nil
}
