// The elf_view executable is yet-another-ELF-viewer program joining the likes
// of objdump and readelf, but is probably less complete. It exists primarily
// to facilitate testing of the elf_loader package.
//
// Example usage: ./elf_view --file <elf_file> --sections
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yalue/elf_loader"
	"go.uber.org/zap"
)

type viewOptions struct {
	inputFile    string
	showSections bool
	showSegments bool
	dumpSection  string
	dumpSegment  string
	useMmap      bool
	verbose      bool
}

func printHeader(w io.Writer, f *elf_loader.ELFFile) {
	fmt.Fprintf(w, "%s\n", f)
	fmt.Fprintf(w, "  Identification: %s\n", &f.Ident)
	fmt.Fprintf(w, "  Version: %s\n", f.Version)
	fmt.Fprintf(w, "  Flags: 0x%x\n", f.Flags)
	fmt.Fprintf(w, "  Program headers: %d entries of %d bytes at offset "+
		"0x%x\n", f.ProgramHeaderEntries, f.ProgramHeaderEntrySize,
		f.ProgramHeaderOffset)
	fmt.Fprintf(w, "  Section headers: %d entries of %d bytes at offset "+
		"0x%x, names in section %d\n", f.SectionHeaderEntries,
		f.SectionHeaderEntrySize, f.SectionHeaderOffset, f.SectionNamesTable)
}

func printSections(w io.Writer, f *elf_loader.ELFFile) {
	for i := range f.Sections {
		name := "<null section>"
		if f.Sections[i].HasName {
			name = f.Sections[i].Name
		} else if i != 0 {
			name = "<unnamed>"
		}
		fmt.Fprintf(w, "%d. %s: %s\n", i, name, &(f.Sections[i]))
	}
}

func printSegments(w io.Writer, f *elf_loader.ELFFile) {
	for i := range f.Segments {
		fmt.Fprintf(w, "%d. %s\n", i, &(f.Segments[i]))
	}
}

// Accepts segment types in decimal or with a 0x prefix.
func parseSegmentType(s string) (elf_loader.ProgramHeaderType, error) {
	v, e := strconv.ParseUint(s, 0, 32)
	if e != nil {
		return 0, errors.Wrapf(e, "invalid segment type %q", s)
	}
	return elf_loader.ProgramHeaderType(v), nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func run(cmd *cobra.Command, o *viewOptions) error {
	logger, e := newLogger(o.verbose)
	if e != nil {
		return errors.Wrap(e, "failed creating logger")
	}
	defer logger.Sync()
	options := []elf_loader.Option{elf_loader.WithLogger(logger)}
	if o.useMmap {
		options = append(options, elf_loader.WithMmap())
	}
	f, e := elf_loader.Load(o.inputFile, options...)
	if e != nil {
		return errors.Wrap(e, "failed parsing the input file")
	}
	out := cmd.OutOrStdout()

	// Dumping content suppresses all other output.
	if o.dumpSection != "" {
		content, e := f.ReadSection(o.dumpSection)
		if e != nil {
			return errors.Wrap(e, "failed dumping section contents")
		}
		_, e = out.Write(content)
		return e
	}
	if o.dumpSegment != "" {
		t, e := parseSegmentType(o.dumpSegment)
		if e != nil {
			return e
		}
		content, e := f.ReadSegment(t)
		if e != nil {
			return errors.Wrap(e, "failed dumping segment contents")
		}
		_, e = out.Write(content)
		return e
	}

	fmt.Fprintf(out, "Successfully parsed file %s\n", o.inputFile)
	printHeader(out, f)
	if o.showSections {
		fmt.Fprintln(out, "==== Sections ====")
		printSections(out, f)
	}
	if o.showSegments {
		fmt.Fprintln(out, "==== Segments ====")
		printSegments(out, f)
	}
	return nil
}

func newCommand() *cobra.Command {
	var o viewOptions
	cmd := &cobra.Command{
		Use:          "elf_view",
		Short:        "Print the headers, sections and segments of an ELF file",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &o)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&o.inputFile, "file", "",
		"The path to the input ELF file. This is required.")
	flags.BoolVar(&o.showSections, "sections", false,
		"Print a list of sections in the ELF file if set.")
	flags.BoolVar(&o.showSegments, "segments", false,
		"Print a list of segments (program headers) if set.")
	flags.StringVar(&o.dumpSection, "dump-section", "",
		"If a section name is provided, binary contents of the section will "+
			"be dumped to stdout and other output will be suppressed.")
	flags.StringVar(&o.dumpSegment, "dump-segment", "",
		"If a segment type is provided, binary contents of the first segment "+
			"with that type will be dumped to stdout and other output will be "+
			"suppressed.")
	flags.BoolVar(&o.useMmap, "mmap", false,
		"Memory-map the input file instead of reading it.")
	flags.BoolVar(&o.verbose, "verbose", false,
		"Log each decoding stage to stderr.")
	if e := cmd.MarkFlagRequired("file"); e != nil {
		panic(e)
	}
	return cmd
}

func main() {
	if e := newCommand().Execute(); e != nil {
		os.Exit(1)
	}
}
