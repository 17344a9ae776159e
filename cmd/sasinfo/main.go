// Command sasinfo prints the structural metadata of a SAS7BDAT file: header
// flags, page geometry, and per-page sub-header contents.
package main

import (
	"fmt"
	"sort"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-sas7bdat/sas7bdat"
)

var cli struct {
	Path    string `arg:"" help:"SAS7BDAT file to inspect." type:"existingfile"`
	Pages   bool   `short:"p" help:"Print a summary line per page."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("sasinfo"),
		kong.Description("Inspect the structural layer of a SAS7BDAT file."),
		kong.UsageOnError(),
	)

	logger := zap.NewNop()
	if cli.Verbose {
		var err error
		logger, err = zap.NewDevelopment()
		ctx.FatalIfErrorf(err)
		defer logger.Sync()
	}

	r, err := sas7bdat.Open(cli.Path, sas7bdat.WithLogger(logger))
	ctx.FatalIfErrorf(err)
	defer r.Close()

	h := r.Header()
	fmt.Printf("dataset:       %s\n", h.DatasetName)
	fmt.Printf("file type:     %s\n", h.FileType)
	fmt.Printf("os:            %s\n", h.OS)
	fmt.Printf("encoding:      %s\n", h.Encoding)
	fmt.Printf("word width:    %d\n", h.WordWidth)
	fmt.Printf("byte order:    %v\n", h.ByteOrder)
	fmt.Printf("header length: %d\n", h.HeaderLength)
	fmt.Printf("page length:   %d\n", h.PageLength)
	fmt.Printf("page count:    %d\n", h.PageCount)

	pageNum := 0
	for {
		info, err := r.NextPage()
		ctx.FatalIfErrorf(err)
		if info == nil {
			break
		}
		if cli.Pages {
			fmt.Printf("page %4d: %-4s sub-headers=%d %s\n",
				pageNum, info.Type, info.SubHeaderCount, tallyString(info.SubHeaders))
		}
		pageNum++
	}

	md := r.Metadata()
	fmt.Printf("\nrows:          %d (length %d", md.RowCount, md.RowLength)
	if md.MixPageRowCount > 0 {
		fmt.Printf(", %d on the mix page", md.MixPageRowCount)
	}
	fmt.Printf(")\n")
	fmt.Printf("columns:       %d", md.ColumnCount)
	if md.ColumnCountMismatch {
		fmt.Printf(" (partial counts disagree)")
	}
	fmt.Printf("\n")
	fmt.Printf("pages decoded: %d %s\n", md.Pages, pageTallyString(md.PagesByType))
}

func tallyString(tally map[string]int) string {
	if len(tally) == 0 {
		return ""
	}
	kinds := make([]string, 0, len(tally))
	for kind := range tally {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	s := "["
	for i, kind := range kinds {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s:%d", kind, tally[kind])
	}
	return s + "]"
}

func pageTallyString(tally map[sas7bdat.PageType]int) string {
	types := []sas7bdat.PageType{sas7bdat.PageMeta, sas7bdat.PageAMD, sas7bdat.PageMix, sas7bdat.PageData}
	s := "["
	first := true
	for _, t := range types {
		if tally[t] == 0 {
			continue
		}
		if !first {
			s += " "
		}
		s += fmt.Sprintf("%s:%d", t, tally[t])
		first = false
	}
	return s + "]"
}
