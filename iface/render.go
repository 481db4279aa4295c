package iface

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/go-stagehand/stagehand"
)

// Header marks rendered interface files as generated output
const Header = `#
# WARNING: This file is auto-generated.
# DO NOT MODIFY THIS FILE DIRECTLY
#
`

const indent = "    "

// fieldLine renders one in/out line with the type column padded to width
func fieldLine(direction string, sig FieldSig, width int) string {
	line := fmt.Sprintf("%s%-3s %-*s %s,", indent, direction, width, sig.Type.TypeName(), sig.Name)
	if sig.Type.Unchecked {
		line += " # unchecked"
	}
	return line
}

// typeWidth computes the width of the type column across every rendered line
// of a descriptor, so that stage and split blocks align identically
func (d *Descriptor) typeWidth() int {
	width := len("comp")
	widen := func(sigs []FieldSig) {
		for _, sig := range sigs {
			if w := len(sig.Type.TypeName()); w > width {
				width = w
			}
		}
	}
	widen(d.Inputs)
	widen(d.Outputs)
	widen(d.ChunkInputs)
	widen(d.renderedChunkOutputs())
	return width
}

// renderUsing renders the using block body, keys padded to a shared width.
// Key order is fixed so rendering is byte-stable.
func renderUsing(hints stagehand.ResourceHints) []string {
	type entry struct {
		key   string
		value string
	}
	entries := []entry{}
	if hints.MemGB != nil {
		entries = append(entries, entry{"mem_gb", fmt.Sprintf("%d", *hints.MemGB)})
	}
	if hints.VMemGB != nil {
		entries = append(entries, entry{"vmem_gb", fmt.Sprintf("%d", *hints.VMemGB)})
	}
	if hints.Threads != nil {
		entries = append(entries, entry{"threads", fmt.Sprintf("%d", *hints.Threads)})
	}
	if hints.Volatile != stagehand.VolatileUnset {
		entries = append(entries, entry{"volatile", string(hints.Volatile)})
	}
	if hints.Disabled != "" {
		// opaque expression, emitted verbatim for the orchestrator to evaluate
		entries = append(entries, entry{"disabled", hints.Disabled})
	}
	width := 0
	for _, e := range entries {
		if len(e.key) > width {
			width = len(e.key)
		}
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s%-*s = %s,", indent, width, e.key, e.value)
	}
	return lines
}

// fileExtensions returns the sorted set of file extensions referenced by this
// descriptor's fields, for the filetype preamble
func (d *Descriptor) fileExtensions() []string {
	seen := map[string]bool{}
	collect := func(sigs []FieldSig) {
		for _, sig := range sigs {
			if sig.Type.FileExt != "" {
				seen[sig.Type.FileExt] = true
			}
		}
	}
	collect(d.Inputs)
	collect(d.Outputs)
	collect(d.ChunkInputs)
	collect(d.ChunkOutputs)
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// renderFiletypePreamble renders the filetype declarations shared by a set of
// descriptors. Returns "" when no field is file-typed.
func renderFiletypePreamble(descs []*Descriptor) string {
	seen := map[string]bool{}
	for _, d := range descs {
		for _, ext := range d.fileExtensions() {
			seen[ext] = true
		}
	}
	if len(seen) == 0 {
		return ""
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	var b strings.Builder
	b.WriteString("\n")
	for _, ext := range exts {
		fmt.Fprintf(&b, "filetype %s;\n", ext)
	}
	b.WriteString("\n")
	return b.String()
}

// Render produces the declarative block for this stage. Rendering is
// deterministic: the same Descriptor always renders to identical bytes.
func (d *Descriptor) Render() string {
	var b strings.Builder
	width := d.typeWidth()

	fmt.Fprintf(&b, "stage %s(\n", d.StageName)
	for _, sig := range d.Inputs {
		b.WriteString(fieldLine("in", sig, width) + "\n")
	}
	for _, sig := range d.Outputs {
		b.WriteString(fieldLine("out", sig, width) + "\n")
	}
	fmt.Fprintf(&b, "%ssrc %-*s \"%s %s\",\n", indent, width, "comp", d.AdapterName, d.StageKey)

	if d.HasChunks {
		b.WriteString(") split (\n")
		for _, sig := range d.ChunkInputs {
			b.WriteString(fieldLine("in", sig, width) + "\n")
		}
		for _, sig := range d.renderedChunkOutputs() {
			b.WriteString(fieldLine("out", sig, width) + "\n")
		}
	}

	if !d.Hints.IsEmpty() {
		b.WriteString(") using (\n")
		for _, line := range renderUsing(d.Hints) {
			b.WriteString(line + "\n")
		}
	}

	retained := []string{}
	for _, sig := range d.Outputs {
		if sig.Retained {
			retained = append(retained, sig.Name)
		}
	}
	if len(retained) > 0 {
		b.WriteString(") retain (\n")
		for _, name := range retained {
			b.WriteString(indent + name + ",\n")
		}
	}

	b.WriteString(")\n")
	return b.String()
}

// RenderAll produces a complete interface file for a set of stages: the
// generated-file header, a merged filetype preamble, and each stage block in
// the order given, separated by blank lines.
func RenderAll(descs []*Descriptor) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString(renderFiletypePreamble(descs))
	for i, d := range descs {
		b.WriteString(d.Render())
		if i < len(descs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Fingerprint produces a stable hash of rendered interface text, useful for
// detecting interface drift across builds without diffing whole files
func Fingerprint(rendered string) uint64 {
	return xxhash.Sum64String(rendered)
}

// WriteInterfaceFile renders a set of descriptors and writes the result to
// the given path, or to stdout if path is empty. An existing file is not
// overwritten unless overwrite is set; directories are always refused.
func WriteInterfaceFile(path string, overwrite bool, descs []*Descriptor) error {
	rendered := RenderAll(descs)
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, rendered)
		return err
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("Path %s is a directory", path)
		}
		if !overwrite {
			return fmt.Errorf("File %s exists and overwrite was not requested", path)
		}
	}
	return ioutil.WriteFile(path, []byte(rendered), 0644)
}
