package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/benjaminschreck/go-sdt/pkg/sdt"
)

const version = "0.1.0"

// CLI defines the command line interface
var CLI struct {
	Config   string `name:"config" short:"c" help:"Settings file (YAML)" type:"existingfile"`
	LogLevel string `name:"log-level" help:"Override the log level (debug, info, warn, error, off)"`

	Build    BuildCmd    `cmd:"" help:"Build a table with content controls and save it as a DOCX file"`
	Fragment FragmentCmd `cmd:"" help:"Print the markup of a table with content controls"`
	Inspect  InspectCmd  `cmd:"" help:"List the content controls of a DOCX file"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// BuildCmd builds a document holding one table
type BuildCmd struct {
	Spec  string `name:"spec" short:"s" required:"" type:"existingfile" help:"Table specification (YAML)"`
	Out   string `name:"out" short:"o" required:"" type:"path" help:"Output DOCX file"`
	Title string `name:"title" help:"Paragraph written above the table"`
}

func (b *BuildCmd) Run() error {
	fragment, err := buildFragment(b.Spec)
	if err != nil {
		return err
	}

	doc := sdt.NewDocument()
	if b.Title != "" {
		doc.AddParagraph(b.Title)
	}
	doc.AddFragment(fragment)
	if err := doc.SaveFile(b.Out); err != nil {
		return err
	}

	info, err := os.Stat(b.Out)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%s)\n", b.Out, humanize.Bytes(uint64(info.Size())))
	return nil
}

// FragmentCmd prints the serialized table
type FragmentCmd struct {
	Spec string `name:"spec" short:"s" required:"" type:"existingfile" help:"Table specification (YAML)"`
}

func (f *FragmentCmd) Run() error {
	fragment, err := buildFragment(f.Spec)
	if err != nil {
		return err
	}
	fmt.Println(fragment)
	return nil
}

func buildFragment(specPath string) (string, error) {
	spec, err := sdt.LoadTableSpec(specPath)
	if err != nil {
		return "", err
	}
	builder := sdt.NewTableBuilder()
	if _, err := builder.CreateTable(spec); err != nil {
		return "", err
	}
	return builder.SerializeWithSdts()
}

// InspectCmd lists content controls
type InspectCmd struct {
	Path string `arg:"" type:"existingfile" help:"DOCX file"`
}

func (i *InspectCmd) Run() error {
	info, err := os.Stat(i.Path)
	if err != nil {
		return err
	}
	reader, err := sdt.DocxReaderFromFile(i.Path)
	if err != nil {
		return err
	}
	controls, err := reader.SDTs()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s, %d parts, %d content controls\n",
		i.Path, humanize.Bytes(uint64(info.Size())), len(reader.ListParts()), len(controls))
	if len(controls) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tALIAS\tID\tLOCK\tTYPE\tLEVEL\tCONTENT")
	for _, c := range controls {
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			indent(c.Depth), c.Tag, c.Alias, c.ID, c.Lock, c.Type, c.Level, c.Content)
	}
	return w.Flush()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// VersionCmd prints version information
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("go-sdt version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sdt"),
		kong.Description("Content control injection for DOCX tables"),
		kong.UsageOnError(),
	)

	if CLI.Config != "" {
		settings, err := sdt.LoadSettingsFile(CLI.Config)
		ctx.FatalIfErrorf(err)
		sdt.SetGlobalSettings(settings)
	}
	if CLI.LogLevel != "" {
		settings := sdt.GetGlobalSettings()
		settings.LogLevel = CLI.LogLevel
		ctx.FatalIfErrorf(settings.Validate())
		sdt.SetGlobalSettings(settings)
	}

	ctx.FatalIfErrorf(ctx.Run())
}
