// Package xmldoc applies the substitution engine to XML files.
//
// It owns everything the engine deliberately does not: parsing and
// serializing documents, evaluating path selectors, splitting files that
// contain several XML documents, annotating processed elements with
// comments, and walking input directories.
package xmldoc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/mtoporowski/stovokor/internal/config"
	"github.com/mtoporowski/stovokor/internal/engine"
)

// Comments injected before processed elements when conf.comments is set.
const (
	commentObfuscated = "Obfuscated"
	commentFailed     = "Cannot obfuscate, leaving unmodified. See logs."
)

// elementNode adapts an etree element to the engine's node contract.
type elementNode struct {
	el *etree.Element
}

func (n elementNode) Text() string { return n.el.Text() }

// ValidateSelectors compiles every path selector of the configuration,
// failing fast before any document is touched.
func ValidateSelectors(cfg *config.Config) error {
	for _, pr := range cfg.Paths {
		if _, err := etree.CompilePath(pr.Selector); err != nil {
			return &config.Error{
				Code:    config.ErrCodeBadSelector,
				Message: fmt.Sprintf("selector %q: %v", pr.Selector, err),
			}
		}
	}
	return nil
}

// ConvertPath converts a file, or every file of a directory, into the given
// output location. An empty output derives "<input>.out.xml" for files and
// "<input>.out" for directories. Files already carrying the ".out.xml"
// suffix are skipped in directory mode so reruns do not re-obfuscate their
// own output.
func ConvertPath(ctx context.Context, input, output string, cfg *config.Config, eng *engine.Engine) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input %s does not exist: %w", input, err)
	}
	if info.IsDir() {
		return convertDir(ctx, input, output, cfg, eng)
	}
	return convertSingle(ctx, input, output, cfg, eng)
}

func convertDir(ctx context.Context, input, output string, cfg *config.Config, eng *engine.Engine) error {
	entries, err := os.ReadDir(input)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasSuffix(entry.Name(), ".out.xml") {
			files = append(files, entry.Name())
		}
	}

	outDir := output
	if outDir == "" {
		abs, err := filepath.Abs(input)
		if err != nil {
			return err
		}
		outDir = abs + ".out"
	} else if info, err := os.Stat(outDir); err == nil && !info.IsDir() {
		return fmt.Errorf("output cannot be a file when input is a directory")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	slog.Info("directory passed as input", "files", len(files), "output", outDir)
	for i, name := range files {
		in := filepath.Join(input, name)
		out := filepath.Join(outDir, name)
		if err := ConvertFile(ctx, in, out, cfg, eng); err != nil {
			return err
		}
		slog.Info("converted file", "done", i+1, "total", len(files))
	}
	return nil
}

func convertSingle(ctx context.Context, input, output string, cfg *config.Config, eng *engine.Engine) error {
	if output == "" {
		output = input + ".out.xml"
	}
	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	if absIn == absOut {
		return fmt.Errorf("output cannot be equal to input")
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return fmt.Errorf("output file %s is an existing directory", output)
	}
	return ConvertFile(ctx, input, output, cfg, eng)
}

// ConvertFile converts one input file into one output file. With
// conf.multiple_xmls_in_file the input is split on XML declarations and each
// document is converted separately; the outputs are concatenated in order.
func ConvertFile(ctx context.Context, input, output string, cfg *config.Config, eng *engine.Engine) error {
	slog.Info(">> converting file", "input", input)

	if cfg.MultipleXMLsInFile {
		content, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("reading %s: %w", input, err)
		}
		chunks := SplitXMLs(content)
		var buf bytes.Buffer
		for i, chunk := range chunks {
			slog.Info("converting XML from file", "index", i+1, "count", len(chunks), "input", input)
			doc := etree.NewDocument()
			if err := doc.ReadFromBytes(chunk); err != nil {
				return fmt.Errorf("parsing XML %d of %s: %w", i+1, input, err)
			}
			if err := convertDocument(ctx, doc, cfg, eng); err != nil {
				return err
			}
			out, err := doc.WriteToBytes()
			if err != nil {
				return fmt.Errorf("serializing XML %d of %s: %w", i+1, input, err)
			}
			buf.Write(out)
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
	} else {
		doc := etree.NewDocument()
		if err := doc.ReadFromFile(input); err != nil {
			return fmt.Errorf("parsing %s: %w", input, err)
		}
		if err := convertDocument(ctx, doc, cfg, eng); err != nil {
			return err
		}
		if err := doc.WriteToFile(output); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
	}

	slog.Info("<< converted file", "input", input, "output", output)
	return nil
}

// convertDocument walks the path rules in declaration order. A node claimed
// by an earlier selector is never offered to a later one.
func convertDocument(ctx context.Context, doc *etree.Document, cfg *config.Config, eng *engine.Engine) error {
	claimed := make(map[*etree.Element]bool)
	for _, pr := range eng.Rules() {
		path, err := etree.CompilePath(pr.Selector)
		if err != nil {
			return fmt.Errorf("selector %q: %w", pr.Selector, err)
		}
		elems := doc.FindElementsPath(path)
		if len(elems) == 0 {
			slog.Debug("no elements found for selector", "selector", pr.Selector)
			continue
		}
		slog.Debug("replacing elements", "selector", pr.Selector, "count", len(elems), "expr", pr.Rule.Expr, "policy", pr.Rule.Policy.String())
		for _, el := range elems {
			if claimed[el] {
				continue
			}
			claimed[el] = true

			res, err := eng.ProcessNode(ctx, elementNode{el}, pr)
			replaced := err == nil && res.Replaced
			if replaced {
				el.SetText(res.NewText)
			}
			if cfg.Comments {
				if replaced {
					insertCommentBefore(el, commentObfuscated)
				} else {
					insertCommentBefore(el, commentFailed)
				}
			}
		}
	}
	return nil
}

// insertCommentBefore places a comment token directly before the element
// inside its parent.
func insertCommentBefore(el *etree.Element, text string) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	idx := el.Index()
	comment := parent.CreateComment(text)
	parent.RemoveChild(comment)
	parent.InsertChildAt(idx, comment)
}
